package main

import (
	"math/big"

	"github.com/DataDog/datadog-go/statsd"
	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/api"
	"github.com/quorumvault/custodian/config"
	"github.com/quorumvault/custodian/internal/assets"
	"github.com/quorumvault/custodian/internal/directory"
	"github.com/quorumvault/custodian/internal/oracle"
	"github.com/quorumvault/custodian/internal/registry"
	"github.com/quorumvault/custodian/service"
	"github.com/quorumvault/custodian/storage"
	"github.com/quorumvault/custodian/storage/postgres"
)

func main() {
	logger := logrus.WithField("service", "custodian").Logger

	cfg, err := config.ReadConfig("config")
	if err != nil {
		logger.Fatal(err)
	}

	sdClient, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		logger.Fatal(err)
	}

	redisStorage, err := storage.NewRedisStorage(cfg)
	if err != nil {
		logger.Fatal(err)
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := asynq.NewClient(redisOpts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Errorf("fail to close asynq client, err: %v", err)
		}
	}()
	inspector := asynq.NewInspector(redisOpts)

	db, err := postgres.NewPostgresBackend(cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("fail to connect to database, err: %v", err)
	}
	defer db.Close()

	var archive *storage.ArchiveStorage
	if cfg.BlockStorage.Bucket != "" {
		archive, err = storage.NewArchiveStorage(cfg)
		if err != nil {
			logger.Fatalf("fail to initialize archive storage, err: %v", err)
		}
	}

	admin := gcommon.HexToAddress(cfg.Custody.Admin)

	backend, gateway, prices, err := buildChainLayer(cfg, admin)
	if err != nil {
		logger.Fatal(err)
	}

	reg := registry.NewAccountRegistry(admin)
	if err := reg.SetEntry(admin, registry.OracleGatewayKey, admin); err != nil {
		logger.Fatalf("fail to seed registry, err: %v", err)
	}

	publisher := service.NewQueuePublisher(client)
	dir := directory.New(reg, backend, gateway, publisher, cfg.Custody.MaxOwnedWallets)

	custody, err := service.NewCustody(dir, reg, prices, admin, redisStorage, db)
	if err != nil {
		logger.Fatalf("fail to initialize custody service, err: %v", err)
	}

	server := api.NewServer(
		cfg.Server.Port,
		redisStorage,
		client,
		inspector,
		sdClient,
		custody,
		service.NewAuthService(cfg.Server.JwtSecret),
		archive,
	)
	if err := server.StartServer(); err != nil {
		logger.Fatalf("fail to start server, err: %v", err)
	}
}

// buildChainLayer selects the asset backend and price gateway. With an RPC
// endpoint configured the wallet settles against the chain and reads
// chainlink feeds; otherwise everything stays in process.
func buildChainLayer(cfg config.Config, admin gcommon.Address) (assets.Backend, oracle.Gateway, service.PriceRegistrar, error) {
	if cfg.Custody.EthRpc == "" {
		gateway := oracle.NewInMemoryGateway(admin)
		return assets.NewBank(), gateway, gateway, nil
	}

	rpcClient, err := ethclient.Dial(cfg.Custody.EthRpc)
	if err != nil {
		return nil, nil, nil, err
	}
	key, err := crypto.HexToECDSA(cfg.Custody.OperatorKey)
	if err != nil {
		return nil, nil, nil, err
	}
	backend, err := assets.NewChainBackend(rpcClient, big.NewInt(cfg.Custody.ChainID), crypto.PubkeyToAddress(key.PublicKey), key)
	if err != nil {
		return nil, nil, nil, err
	}
	gateway, err := oracle.NewFeedGateway(admin, rpcClient)
	if err != nil {
		return nil, nil, nil, err
	}
	// chain mode reads prices from feeds; direct price entries are disabled
	return backend, gateway, nil, nil
}
