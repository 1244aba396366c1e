// Package directory creates custody wallets, enforces per-signer creation
// quotas, and indexes wallets by signer.
package directory

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/internal/assets"
	"github.com/quorumvault/custodian/internal/events"
	"github.com/quorumvault/custodian/internal/oracle"
	"github.com/quorumvault/custodian/internal/pagination"
	"github.com/quorumvault/custodian/internal/registry"
	"github.com/quorumvault/custodian/internal/types"
	"github.com/quorumvault/custodian/internal/wallet"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrMaxOwnedWallets = errors.New("signer has reached the maximum owned wallet count")
	ErrUnknownScope    = errors.New("unknown lookup scope")
)

// Scope selects which signer-to-wallet association a lookup walks.
type Scope string

const (
	ScopeOwned      Scope = "owned"
	ScopeAssociated Scope = "associated"
	ScopeAll        Scope = "all"
)

// Directory owns the signer-to-wallet index. Wallets are never destroyed; the
// existence map, not "code at the address", is authoritative.
type Directory struct {
	mu sync.Mutex

	resolver  registry.Resolver
	backend   assets.Backend
	gateway   oracle.Gateway
	publisher events.Publisher

	maxOwned int
	created  uint64

	wallets    map[gcommon.Address]*wallet.Ledger
	owned      map[gcommon.Address][]gcommon.Address
	associated map[gcommon.Address][]gcommon.Address
	all        map[gcommon.Address][]gcommon.Address

	logger *logrus.Entry
}

func New(resolver registry.Resolver, backend assets.Backend, gateway oracle.Gateway, publisher events.Publisher, maxOwned int) *Directory {
	if maxOwned <= 0 {
		maxOwned = 10
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Directory{
		resolver:   resolver,
		backend:    backend,
		gateway:    gateway,
		publisher:  publisher,
		maxOwned:   maxOwned,
		wallets:    make(map[gcommon.Address]*wallet.Ledger),
		owned:      make(map[gcommon.Address][]gcommon.Address),
		associated: make(map[gcommon.Address][]gcommon.Address),
		all:        make(map[gcommon.Address][]gcommon.Address),
		logger:     logrus.WithField("module", "directory"),
	}
}

// CreateWallet instantiates a wallet for signers, the first of which is the
// main signer, and records the signer associations.
func (d *Directory) CreateWallet(ctx context.Context, name string, signers []gcommon.Address, minimumApprovals int, passwordHash gcommon.Hash) (gcommon.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(signers) == 0 {
		return gcommon.Address{}, fmt.Errorf("%w: got 0", wallet.ErrSignerCount)
	}
	if d.resolver != nil {
		if _, err := d.resolver.Resolve(registry.OracleGatewayKey); err != nil {
			return gcommon.Address{}, fmt.Errorf("registry has no oracle gateway entry, err: %w", err)
		}
	}
	main := signers[0]
	if len(d.owned[main]) >= d.maxOwned {
		return gcommon.Address{}, fmt.Errorf("%w: %s owns %d", ErrMaxOwnedWallets, main.Hex(), len(d.owned[main]))
	}

	address := d.walletAddress(name, main)
	ledger, err := wallet.New(wallet.Params{
		Name:             name,
		Address:          address,
		Signers:          signers,
		MinimumApprovals: minimumApprovals,
		PasswordHash:     passwordHash,
	}, d.backend, d.gateway, d.publisher)
	if err != nil {
		return gcommon.Address{}, err
	}

	d.wallets[address] = ledger
	d.created++
	d.owned[main] = append(d.owned[main], address)
	for _, s := range signers {
		d.all[s] = append(d.all[s], address)
		if s != main {
			d.associated[s] = append(d.associated[s], address)
		}
	}

	e := types.NewEvent(types.EventWalletCreated, address, main)
	e.Signers = ledger.Signers()
	if err := d.publisher.Publish(ctx, e); err != nil {
		d.logger.Errorf("fail to publish wallet creation event, err: %v", err)
	}
	d.logger.WithFields(logrus.Fields{
		"wallet":  address.Hex(),
		"name":    name,
		"signers": len(signers),
	}).Info("wallet created")
	return address, nil
}

// Wallet returns the ledger at address or not-found. The zero address is
// never a wallet.
func (d *Directory) Wallet(address gcommon.Address) (*wallet.Ledger, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if address == (gcommon.Address{}) {
		return nil, ErrWalletNotFound
	}
	ledger, ok := d.wallets[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, address.Hex())
	}
	return ledger, nil
}

// Count returns the number of wallets recorded for signer under scope.
func (d *Directory) Count(signer gcommon.Address, scope Scope) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list, err := d.scoped(signer, scope)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Wallets returns an ascending page of wallet addresses for signer under
// scope, in creation order.
func (d *Directory) Wallets(signer gcommon.Address, scope Scope, offset, limit int) ([]gcommon.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list, err := d.scoped(signer, scope)
	if err != nil {
		return nil, err
	}
	return pagination.Slice(list, offset, limit), nil
}

// WalletDetails returns a newest-first page of wallet summaries across all
// of signer's wallets.
func (d *Directory) WalletDetails(signer gcommon.Address, offset, limit int) ([]types.WalletDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	addresses := pagination.SliceDesc(d.all[signer], offset, limit)
	details := make([]types.WalletDetail, 0, len(addresses))
	for _, addr := range addresses {
		details = append(details, d.wallets[addr].Detail())
	}
	return details, nil
}

func (d *Directory) scoped(signer gcommon.Address, scope Scope) ([]gcommon.Address, error) {
	switch scope {
	case ScopeOwned:
		return d.owned[signer], nil
	case ScopeAssociated:
		return d.associated[signer], nil
	case ScopeAll, "":
		return d.all[signer], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
}

// walletAddress derives a deterministic address from the wallet name, the
// main signer, and a creation nonce.
func (d *Directory) walletAddress(name string, main gcommon.Address) gcommon.Address {
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, d.created)
	sum := crypto.Keccak256([]byte(name), main.Bytes(), nonce)
	return gcommon.BytesToAddress(sum[12:])
}
