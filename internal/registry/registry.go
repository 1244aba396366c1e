// Package registry maps well-known contract names to addresses. Components
// receive a Resolver at construction instead of reaching for globals.
package registry

import (
	"errors"
	"fmt"
	"sync"

	gcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quorumvault/custodian/common"
)

var (
	ErrNotOwner      = errors.New("caller is not the registry owner")
	ErrEntryNotFound = errors.New("registry entry not found")
)

// Well-known entry names.
const (
	OracleGatewayKey   = "oracle-gateway"
	WalletDirectoryKey = "wallet-directory"
)

// Resolver looks up a well-known address by name.
type Resolver interface {
	Resolve(name string) (gcommon.Address, error)
}

// AccountRegistry stores name-to-address entries keyed by the keccak hash of the
// name. Writes are owner-gated.
type AccountRegistry struct {
	mu      sync.RWMutex
	owner   gcommon.Address
	entries map[gcommon.Hash]gcommon.Address
}

func NewAccountRegistry(owner gcommon.Address) *AccountRegistry {
	return &AccountRegistry{
		owner:   owner,
		entries: make(map[gcommon.Hash]gcommon.Address),
	}
}

// SetEntry installs or replaces the address recorded under name.
func (r *AccountRegistry) SetEntry(caller gcommon.Address, name string, addr gcommon.Address) error {
	if caller != r.owner {
		return ErrNotOwner
	}
	if name == "" {
		return fmt.Errorf("entry name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[common.NameKey(name)] = addr
	return nil
}

func (r *AccountRegistry) Resolve(name string) (gcommon.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.entries[common.NameKey(name)]
	if !ok {
		return gcommon.Address{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return addr, nil
}
