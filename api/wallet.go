package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/quorumvault/custodian/internal/types"
)

const (
	defaultPageLimit   = 20
	createRequestDedup = 5 * time.Minute
)

func pageParams(c echo.Context) (int, int) {
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	return offset, limit
}

// CreateWallet provisions a wallet. Repeated submissions with the same name
// and main signer inside the dedup window return the already-created wallet.
func (s *Server) CreateWallet(c echo.Context) error {
	var req types.WalletCreateRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.sdClient.Count("wallet.create", 1, nil, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}

	dedupKey := fmt.Sprintf("wallet-create-%s-%s", req.Name, req.Signers[0])
	if address, err := s.redis.Get(c.Request().Context(), dedupKey); err == nil && address != "" {
		detail, err := s.custody.WalletDetail(c.Request().Context(), address)
		if err == nil {
			return c.JSON(http.StatusOK, detail)
		}
	}

	detail, err := s.custody.CreateWallet(c.Request().Context(), req)
	if err != nil {
		return errJSON(c, err)
	}
	if err := s.redis.Set(c.Request().Context(), dedupKey, detail.Address.Hex(), createRequestDedup); err != nil {
		s.logger.Errorf("fail to set dedup key, err: %v", err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) GetWallet(c echo.Context) error {
	detail, err := s.custody.WalletDetail(c.Request().Context(), c.Param("address"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) Deposit(c echo.Context) error {
	var req types.DepositRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.sdClient.Count("wallet.deposit", 1, nil, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}
	if err := s.custody.Deposit(c.Request().Context(), c.Param("address"), req); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) LockBalance(c echo.Context) error {
	var req types.LockRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.custody.Lock(c.Request().Context(), c.Param("address"), req); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) UnlockBalance(c echo.Context) error {
	var req types.UnlockRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.custody.Unlock(c.Request().Context(), c.Param("address"), req); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) AddToken(c echo.Context) error {
	var req types.TokenRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.custody.AddToken(c.Request().Context(), c.Param("address"), req); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) RemoveToken(c echo.Context) error {
	var req types.TokenRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.custody.RemoveToken(c.Request().Context(), c.Param("address"), req); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// GetBalances reports the wallet's USD accounting snapshot, or a single
// asset's balance when the asset query parameter is set.
func (s *Server) GetBalances(c echo.Context) error {
	ledger, err := s.custody.Wallet(c.Param("address"))
	if err != nil {
		return errJSON(c, err)
	}
	ctx := c.Request().Context()

	if asset := c.QueryParam("asset"); asset != "" {
		assetAddr := gcommon.HexToAddress(asset)
		raw, err := ledger.Balance(ctx, assetAddr)
		if err != nil {
			return errJSON(c, err)
		}
		usd, err := ledger.BalanceInUsd(ctx, assetAddr)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, types.BalanceView{
			Asset:      assetAddr,
			Raw:        raw.String(),
			ValueInUsd: usd.String(),
		})
	}

	total, err := ledger.TotalBalanceInUsd(ctx)
	if err != nil {
		return errJSON(c, err)
	}
	unlocked, err := ledger.UnlockedBalanceInUsd(ctx)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, types.UsdBalances{
		Total:    total.String(),
		Locked:   ledger.LockedBalanceInUsd().String(),
		Unlocked: unlocked.String(),
	})
}

func (s *Server) GetTokens(c echo.Context) error {
	ledger, err := s.custody.Wallet(c.Param("address"))
	if err != nil {
		return errJSON(c, err)
	}
	offset, limit := pageParams(c)
	newestFirst := c.QueryParam("order") == "desc"
	return c.JSON(http.StatusOK, map[string]any{
		"tokens": ledger.Tokens(offset, limit, newestFirst),
		"count":  ledger.TokenCount(),
	})
}

func (s *Server) CreateTransaction(c echo.Context) error {
	var req types.TransactionCreateRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := s.sdClient.Count("transaction.create", 1, nil, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}
	hash, err := s.custody.CreateTransaction(c.Request().Context(), c.Param("address"), req)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"hash": hash.Hex()})
}

func (s *Server) GetTransactions(c echo.Context) error {
	ledger, err := s.custody.Wallet(c.Param("address"))
	if err != nil {
		return errJSON(c, err)
	}
	offset, limit := pageParams(c)
	return c.JSON(http.StatusOK, map[string]any{
		"transactions": ledger.Transactions(offset, limit),
		"count":        ledger.TransactionCount(),
		"last":         ledger.LastTransactionHash(),
	})
}

func (s *Server) GetTransaction(c echo.Context) error {
	ledger, err := s.custody.Wallet(c.Param("address"))
	if err != nil {
		return errJSON(c, err)
	}
	view, err := ledger.Transaction(gcommon.HexToHash(c.Param("hash")))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) ApproveTransaction(c echo.Context) error {
	return s.signTransactionAction(c, s.custody.ApproveTransaction)
}

func (s *Server) RevokeTransaction(c echo.Context) error {
	return s.signTransactionAction(c, s.custody.RevokeTransaction)
}

func (s *Server) CancelTransaction(c echo.Context) error {
	return s.signTransactionAction(c, s.custody.CancelTransaction)
}

func (s *Server) ExecuteTransaction(c echo.Context) error {
	if err := s.sdClient.Count("transaction.execute", 1, nil, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}
	return s.signTransactionAction(c, s.custody.ExecuteTransaction)
}

func (s *Server) signTransactionAction(c echo.Context, action func(ctx context.Context, address, hash string, req types.SignedRequest) error) error {
	var req types.SignedRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if err := req.IsValid(); err != nil {
		return errJSON(c, err)
	}
	if err := action(c.Request().Context(), c.Param("address"), c.Param("hash"), req); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) GetEvents(c echo.Context) error {
	offset, limit := pageParams(c)
	history, err := s.custody.Events(c.Request().Context(), c.Param("address"), offset, limit)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, history)
}
