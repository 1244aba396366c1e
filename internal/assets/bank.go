package assets

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	gcommon "github.com/ethereum/go-ethereum/common"
)

// NativeDecimals is the precision of the native asset.
const NativeDecimals = 18

type tokenMeta struct {
	name     string
	decimals uint8
}

// Bank is an in-memory asset backend for local mode and tests: a map of
// balances per asset plus token metadata. Tokens must be defined before they
// can move; the native asset always exists.
type Bank struct {
	mu       sync.Mutex
	balances map[gcommon.Address]map[gcommon.Address]*big.Int
	tokens   map[gcommon.Address]tokenMeta
}

func NewBank() *Bank {
	return &Bank{
		balances: make(map[gcommon.Address]map[gcommon.Address]*big.Int),
		tokens:   make(map[gcommon.Address]tokenMeta),
	}
}

// DefineToken registers a token's metadata.
func (b *Bank) DefineToken(asset gcommon.Address, name string, decimals uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[asset] = tokenMeta{name: name, decimals: decimals}
}

// Mint credits account with amount of asset out of thin air.
func (b *Bank) Mint(account, asset gcommon.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(account, asset, amount)
}

func (b *Bank) BalanceOf(_ context.Context, account, asset gcommon.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance(account, asset)), nil
}

func (b *Bank) Transfer(_ context.Context, from, to, asset gcommon.Address, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(from, to, asset, amount)
}

func (b *Bank) TransferFrom(_ context.Context, owner, recipient, asset gcommon.Address, amount *big.Int) error {
	if asset == (gcommon.Address{}) {
		return fmt.Errorf("%w: native asset cannot be pulled", ErrTransferFailed)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(owner, recipient, asset, amount)
}

func (b *Bank) Decimals(_ context.Context, asset gcommon.Address) (uint8, error) {
	if asset == (gcommon.Address{}) {
		return NativeDecimals, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	meta, ok := b.tokens[asset]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAsset, asset.Hex())
	}
	return meta.decimals, nil
}

func (b *Bank) Name(_ context.Context, asset gcommon.Address) (string, error) {
	if asset == (gcommon.Address{}) {
		return "Native", nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	meta, ok := b.tokens[asset]
	if !ok {
		return "", nil
	}
	return meta.name, nil
}

func (b *Bank) balance(account, asset gcommon.Address) *big.Int {
	byAccount, ok := b.balances[asset]
	if !ok {
		return new(big.Int)
	}
	bal, ok := byAccount[account]
	if !ok {
		return new(big.Int)
	}
	return bal
}

func (b *Bank) credit(account, asset gcommon.Address, amount *big.Int) {
	byAccount, ok := b.balances[asset]
	if !ok {
		byAccount = make(map[gcommon.Address]*big.Int)
		b.balances[asset] = byAccount
	}
	bal, ok := byAccount[account]
	if !ok {
		bal = new(big.Int)
		byAccount[account] = bal
	}
	bal.Add(bal, amount)
}

func (b *Bank) move(from, to, asset gcommon.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrTransferFailed)
	}
	if asset != (gcommon.Address{}) {
		if _, ok := b.tokens[asset]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAsset, asset.Hex())
		}
	}
	bal := b.balance(from, asset)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s of %s, need %s",
			ErrInsufficientBalance, from.Hex(), bal, asset.Hex(), amount)
	}
	bal.Sub(bal, amount)
	b.credit(to, asset, amount)
	return nil
}
