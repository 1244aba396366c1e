package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/internal/directory"
	"github.com/quorumvault/custodian/internal/registry"
	"github.com/quorumvault/custodian/internal/types"
	"github.com/quorumvault/custodian/internal/wallet"
	"github.com/quorumvault/custodian/storage"
)

const walletDetailCacheTTL = 5 * time.Minute

// PriceRegistrar installs a price entry for an asset. The in-memory oracle
// gateway satisfies it; chain-mode feed registration is configured at boot
// instead.
type PriceRegistrar interface {
	Register(caller, asset gcommon.Address, price *big.Int, decimals uint8) error
}

// Custody is the service layer between the API and the in-memory core. It
// owns the durable wallet records and the read caches; the core owns the
// state machine.
type Custody struct {
	directory *directory.Directory
	registry  *registry.AccountRegistry
	prices    PriceRegistrar
	admin     gcommon.Address
	redis     *storage.RedisStorage
	db        storage.DatabaseStorage
	logger    *logrus.Logger

	// per-wallet operation locks: concurrent mutating requests against the
	// same wallet queue here, so the ledger's reentrancy guard only ever
	// trips on a genuinely nested call
	opMu    sync.Mutex
	opLocks map[gcommon.Address]*sync.Mutex
}

func NewCustody(
	dir *directory.Directory,
	reg *registry.AccountRegistry,
	prices PriceRegistrar,
	admin gcommon.Address,
	redis *storage.RedisStorage,
	db storage.DatabaseStorage,
) (*Custody, error) {
	if dir == nil {
		return nil, fmt.Errorf("wallet directory cannot be nil")
	}
	return &Custody{
		directory: dir,
		registry:  reg,
		prices:    prices,
		admin:     admin,
		redis:     redis,
		db:        db,
		logger:    logrus.WithField("service", "custody").Logger,
		opLocks:   make(map[gcommon.Address]*sync.Mutex),
	}, nil
}

// lockWallet serializes mutating calls against one wallet and returns the
// release function.
func (c *Custody) lockWallet(address gcommon.Address) func() {
	c.opMu.Lock()
	m, ok := c.opLocks[address]
	if !ok {
		m = &sync.Mutex{}
		c.opLocks[address] = m
	}
	c.opMu.Unlock()
	m.Lock()
	return m.Unlock
}

// CreateWallet creates a wallet and records it durably. The in-memory
// directory remains the authority; the database row and cache entry are
// derived records.
func (c *Custody) CreateWallet(ctx context.Context, req types.WalletCreateRequest) (types.WalletDetail, error) {
	address, err := c.directory.CreateWallet(ctx, req.Name, req.SignerAddresses(), req.MinimumApprovals, gcommon.HexToHash(req.PasswordHash))
	if err != nil {
		return types.WalletDetail{}, err
	}
	ledger, err := c.directory.Wallet(address)
	if err != nil {
		return types.WalletDetail{}, err
	}
	detail := ledger.Detail()

	if c.db != nil {
		if err := c.db.InsertWallet(ctx, detail); err != nil {
			c.logger.Errorf("fail to record wallet, err: %v", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.SetWalletDetail(ctx, detail, walletDetailCacheTTL); err != nil {
			c.logger.Errorf("fail to cache wallet detail, err: %v", err)
		}
	}
	return detail, nil
}

// Wallet resolves an address string to its ledger.
func (c *Custody) Wallet(address string) (*wallet.Ledger, error) {
	if !gcommon.IsHexAddress(address) {
		return nil, directory.ErrWalletNotFound
	}
	return c.directory.Wallet(gcommon.HexToAddress(address))
}

// WalletDetail serves the cached detail view when available.
func (c *Custody) WalletDetail(ctx context.Context, address string) (types.WalletDetail, error) {
	if gcommon.IsHexAddress(address) {
		address = gcommon.HexToAddress(address).Hex()
	}
	if c.redis != nil {
		if detail, err := c.redis.GetWalletDetail(ctx, address); err == nil && detail != nil {
			return *detail, nil
		}
	}
	ledger, err := c.Wallet(address)
	if err != nil {
		return types.WalletDetail{}, err
	}
	detail := ledger.Detail()
	if c.redis != nil {
		if err := c.redis.SetWalletDetail(ctx, detail, walletDetailCacheTTL); err != nil {
			c.logger.Errorf("fail to cache wallet detail, err: %v", err)
		}
	}
	return detail, nil
}

func (c *Custody) Deposit(ctx context.Context, address string, req types.DepositRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	var value *big.Int
	if req.Value != "" {
		if value, err = types.ParseAmount(req.Value); err != nil {
			return err
		}
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.Deposit(ctx, req.SignerAddress(), assetAddress(req.Asset), amount, value)
}

func (c *Custody) Lock(ctx context.Context, address string, req types.LockRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	amount, err := lockAmount(req)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.LockBalanceInUsd(ctx, req.SignerAddress(), amount)
}

func (c *Custody) Unlock(ctx context.Context, address string, req types.UnlockRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	amount, err := lockAmount(req.LockRequest)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.UnlockBalanceInUsd(ctx, req.SignerAddress(), amount, req.Password, req.Salt)
}

func (c *Custody) AddToken(ctx context.Context, address string, req types.TokenRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.AddToken(ctx, req.SignerAddress(), gcommon.HexToAddress(req.Asset))
}

func (c *Custody) RemoveToken(ctx context.Context, address string, req types.TokenRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.RemoveToken(ctx, req.SignerAddress(), gcommon.HexToAddress(req.Asset))
}

func (c *Custody) CreateTransaction(ctx context.Context, address string, req types.TransactionCreateRequest) (gcommon.Hash, error) {
	ledger, err := c.Wallet(address)
	if err != nil {
		return gcommon.Hash{}, err
	}
	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		return gcommon.Hash{}, err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.CreateTransaction(ctx, req.SignerAddress(), assetAddress(req.Asset), gcommon.HexToAddress(req.Recipient), amount)
}

func (c *Custody) ApproveTransaction(ctx context.Context, address, hash string, req types.SignedRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.ApproveTransaction(ctx, req.SignerAddress(), gcommon.HexToHash(hash))
}

func (c *Custody) RevokeTransaction(ctx context.Context, address, hash string, req types.SignedRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.RevokeTransaction(ctx, req.SignerAddress(), gcommon.HexToHash(hash))
}

func (c *Custody) CancelTransaction(ctx context.Context, address, hash string, req types.SignedRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.CancelTransaction(ctx, req.SignerAddress(), gcommon.HexToHash(hash))
}

func (c *Custody) ExecuteTransaction(ctx context.Context, address, hash string, req types.SignedRequest) error {
	ledger, err := c.Wallet(address)
	if err != nil {
		return err
	}
	defer c.lockWallet(ledger.Address())()
	return ledger.ExecuteTransaction(ctx, req.SignerAddress(), gcommon.HexToHash(hash))
}

// SignerWallets pages a signer's wallet addresses under scope.
func (c *Custody) SignerWallets(signer string, scope directory.Scope, offset, limit int) ([]gcommon.Address, error) {
	return c.directory.Wallets(gcommon.HexToAddress(signer), scope, offset, limit)
}

func (c *Custody) SignerWalletCount(signer string, scope directory.Scope) (int, error) {
	return c.directory.Count(gcommon.HexToAddress(signer), scope)
}

func (c *Custody) SignerWalletDetails(signer string, offset, limit int) ([]types.WalletDetail, error) {
	return c.directory.WalletDetails(gcommon.HexToAddress(signer), offset, limit)
}

// Events pages a wallet's persisted audit history, newest first.
func (c *Custody) Events(ctx context.Context, address string, offset, limit int) ([]types.Event, error) {
	if c.db == nil {
		return nil, fmt.Errorf("audit history storage is not configured")
	}
	return c.db.GetEventsByWallet(ctx, gcommon.HexToAddress(address), offset, limit)
}

// RegisterPrice installs a price entry on behalf of the configured admin.
func (c *Custody) RegisterPrice(asset, price string, decimals uint8) error {
	if c.prices == nil {
		return fmt.Errorf("price registration is not available in this mode")
	}
	p, err := types.ParseAmount(price)
	if err != nil {
		return err
	}
	return c.prices.Register(c.admin, assetAddress(asset), p, decimals)
}

// SetRegistryEntry installs a name-to-address entry on behalf of the admin.
func (c *Custody) SetRegistryEntry(name, address string) error {
	if c.registry == nil {
		return fmt.Errorf("registry is not available in this mode")
	}
	if !gcommon.IsHexAddress(address) {
		return fmt.Errorf("invalid address: %s", address)
	}
	return c.registry.SetEntry(c.admin, name, gcommon.HexToAddress(address))
}

func lockAmount(req types.LockRequest) (*big.Int, error) {
	if req.Max {
		return wallet.MaxAmount, nil
	}
	return types.ParseAmount(req.Amount)
}

// assetAddress maps an empty asset string to the native sentinel.
func assetAddress(asset string) gcommon.Address {
	if asset == "" {
		return gcommon.Address{}
	}
	return gcommon.HexToAddress(asset)
}
