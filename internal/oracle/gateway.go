// Package oracle provides current asset prices for USD valuation.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	gcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrNotOwner                = errors.New("caller is not the gateway owner")
	ErrFeedNotRegistered       = errors.New("no price feed registered for asset")
	ErrNativeFeedNotRegistered = errors.New("no price feed registered for the native asset")
)

// Gateway answers "what is this asset worth right now". Price returns the
// current price and the feed's decimal precision.
type Gateway interface {
	Price(ctx context.Context, asset gcommon.Address) (*big.Int, uint8, error)
	Registered(ctx context.Context, asset gcommon.Address) bool
}

type priceEntry struct {
	price    *big.Int
	decimals uint8
}

// InMemoryGateway is a price table administered by a single owner. It backs
// local mode and tests; production deployments point at feed contracts via
// FeedGateway instead.
type InMemoryGateway struct {
	mu     sync.RWMutex
	owner  gcommon.Address
	prices map[gcommon.Address]priceEntry
}

func NewInMemoryGateway(owner gcommon.Address) *InMemoryGateway {
	return &InMemoryGateway{
		owner:  owner,
		prices: make(map[gcommon.Address]priceEntry),
	}
}

// Register installs or replaces the price entry for asset. Only the owner may
// call it.
func (g *InMemoryGateway) Register(caller, asset gcommon.Address, price *big.Int, decimals uint8) error {
	if caller != g.owner {
		return ErrNotOwner
	}
	if price == nil || price.Sign() < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prices[asset] = priceEntry{price: new(big.Int).Set(price), decimals: decimals}
	return nil
}

func (g *InMemoryGateway) Price(_ context.Context, asset gcommon.Address) (*big.Int, uint8, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.prices[asset]
	if !ok {
		if asset == (gcommon.Address{}) {
			return nil, 0, ErrNativeFeedNotRegistered
		}
		return nil, 0, fmt.Errorf("%w: %s", ErrFeedNotRegistered, asset.Hex())
	}
	return new(big.Int).Set(entry.price), entry.decimals, nil
}

func (g *InMemoryGateway) Registered(_ context.Context, asset gcommon.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.prices[asset]
	return ok
}
