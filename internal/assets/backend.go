// Package assets abstracts balance reads and transfers for the native asset
// and fungible tokens behind one backend interface.
package assets

import (
	"context"
	"errors"
	"math/big"

	gcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance = errors.New("insufficient asset balance")
	ErrTransferFailed      = errors.New("asset transfer failed")
	ErrUnknownAsset        = errors.New("unknown asset")
)

// Backend moves and reports asset balances. The native asset is addressed by
// the zero sentinel; everything else is a token contract address.
type Backend interface {
	// BalanceOf returns account's raw balance of asset.
	BalanceOf(ctx context.Context, account, asset gcommon.Address) (*big.Int, error)
	// Transfer moves amount of asset from from to to. The caller is expected
	// to control from.
	Transfer(ctx context.Context, from, to, asset gcommon.Address, amount *big.Int) error
	// TransferFrom pulls amount of asset from owner into recipient using a
	// prior allowance. Only valid for non-native assets.
	TransferFrom(ctx context.Context, owner, recipient, asset gcommon.Address, amount *big.Int) error
	// Decimals returns the asset's decimal precision.
	Decimals(ctx context.Context, asset gcommon.Address) (uint8, error)
	// Name returns the asset's display name. Empty for assets that expose no
	// metadata.
	Name(ctx context.Context, asset gcommon.Address) (string, error)
}
