package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/service"
	"github.com/quorumvault/custodian/storage"
)

type Server struct {
	port        int64
	redis       *storage.RedisStorage
	client      *asynq.Client
	inspector   *asynq.Inspector
	sdClient    *statsd.Client
	logger      *logrus.Logger
	custody     *service.Custody
	authService *service.AuthService
	archive     *storage.ArchiveStorage
}

// NewServer returns a new server.
func NewServer(port int64,
	redis *storage.RedisStorage,
	client *asynq.Client,
	inspector *asynq.Inspector,
	sdClient *statsd.Client,
	custody *service.Custody,
	authService *service.AuthService,
	archive *storage.ArchiveStorage) *Server {
	logger := logrus.WithField("service", "api").Logger
	logger.Info("Initializing new server...")

	return &Server{
		port:        port,
		redis:       redis,
		client:      client,
		inspector:   inspector,
		sdClient:    sdClient,
		logger:      logger,
		custody:     custody,
		authService: authService,
		archive:     archive,
	}
}

func (s *Server) StartServer() error {
	e := echo.New()
	e.Logger.SetLevel(log.DEBUG)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2M")) // set maximum allowed size for a request body to 2M
	e.Use(s.statsdMiddleware)
	e.Use(middleware.CORS())
	limiterStore := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{Rate: 5, Burst: 30, ExpiresIn: 5 * time.Minute},
	)
	e.Use(middleware.RateLimiter(limiterStore))
	e.GET("/ping", s.Ping)

	grp := e.Group("/wallet")
	grp.POST("/create", s.CreateWallet)
	grp.GET("/:address", s.GetWallet)
	grp.POST("/:address/deposit", s.Deposit)
	grp.POST("/:address/lock", s.LockBalance)
	grp.POST("/:address/unlock", s.UnlockBalance)
	grp.POST("/:address/token/add", s.AddToken)
	grp.POST("/:address/token/remove", s.RemoveToken)
	grp.GET("/:address/balance", s.GetBalances)
	grp.GET("/:address/tokens", s.GetTokens)
	grp.POST("/:address/transaction", s.CreateTransaction)
	grp.GET("/:address/transactions", s.GetTransactions)
	grp.GET("/:address/transaction/:hash", s.GetTransaction)
	grp.POST("/:address/transaction/:hash/approve", s.ApproveTransaction)
	grp.POST("/:address/transaction/:hash/revoke", s.RevokeTransaction)
	grp.POST("/:address/transaction/:hash/cancel", s.CancelTransaction)
	grp.POST("/:address/transaction/:hash/execute", s.ExecuteTransaction)
	grp.GET("/:address/events", s.GetEvents)

	signerGroup := e.Group("/signer")
	signerGroup.GET("/:address/wallets", s.GetSignerWallets)
	signerGroup.GET("/:address/wallets/count", s.GetSignerWalletCount)
	signerGroup.GET("/:address/wallets/details", s.GetSignerWalletDetails)

	adminGroup := e.Group("/admin")
	adminGroup.Use(s.AuthMiddleware)
	adminGroup.POST("/registry/entry", s.SetRegistryEntry)
	adminGroup.POST("/oracle/register", s.RegisterPrice)
	adminGroup.POST("/statement/:address", s.ArchiveStatement)
	adminGroup.GET("/statement/:name", s.GetStatement)
	adminGroup.GET("/task/:taskId", s.GetTaskStatus)

	return e.Start(fmt.Sprintf(":%d", s.port))
}

func (s *Server) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "Custodian is running")
}
