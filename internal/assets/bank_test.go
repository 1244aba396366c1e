package assets

import (
	"context"
	"math/big"
	"testing"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = gcommon.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = gcommon.HexToAddress("0x00000000000000000000000000000000000000b2")
	token = gcommon.HexToAddress("0x1000000000000000000000000000000000000001")
)

func TestBankMintAndBalance(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	b.DefineToken(token, "Test Token", 6)

	b.Mint(alice, token, big.NewInt(100))
	b.Mint(alice, gcommon.Address{}, big.NewInt(50))

	bal, err := b.BalanceOf(ctx, alice, token)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Int64())

	native, err := b.BalanceOf(ctx, alice, gcommon.Address{})
	require.NoError(t, err)
	assert.Equal(t, int64(50), native.Int64())
}

func TestBankTransfer(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	b.DefineToken(token, "Test Token", 6)
	b.Mint(alice, token, big.NewInt(100))

	require.NoError(t, b.Transfer(ctx, alice, bob, token, big.NewInt(40)))

	aliceBal, _ := b.BalanceOf(ctx, alice, token)
	bobBal, _ := b.BalanceOf(ctx, bob, token)
	assert.Equal(t, int64(60), aliceBal.Int64())
	assert.Equal(t, int64(40), bobBal.Int64())

	err := b.Transfer(ctx, alice, bob, token, big.NewInt(1000))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestBankTransferFrom(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	b.DefineToken(token, "Test Token", 6)
	b.Mint(alice, token, big.NewInt(10))

	require.NoError(t, b.TransferFrom(ctx, alice, bob, token, big.NewInt(10)))

	err := b.TransferFrom(ctx, alice, bob, gcommon.Address{}, big.NewInt(1))
	assert.ErrorIs(t, err, ErrTransferFailed)
}

func TestBankMetadata(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	b.DefineToken(token, "Test Token", 6)

	name, err := b.Name(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Test Token", name)

	decimals, err := b.Decimals(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	nativeDecimals, err := b.Decimals(ctx, gcommon.Address{})
	require.NoError(t, err)
	assert.Equal(t, uint8(NativeDecimals), nativeDecimals)

	// undefined tokens expose no name and no decimals
	unknown := gcommon.HexToAddress("0x2000000000000000000000000000000000000002")
	name, err = b.Name(ctx, unknown)
	require.NoError(t, err)
	assert.Empty(t, name)

	_, err = b.Decimals(ctx, unknown)
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestBankRejectsZeroAmount(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	b.DefineToken(token, "Test Token", 6)
	b.Mint(alice, token, big.NewInt(10))

	assert.Error(t, b.Transfer(ctx, alice, bob, token, big.NewInt(0)))
	assert.Error(t, b.Transfer(ctx, alice, bob, token, nil))
}
