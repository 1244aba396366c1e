package oracle

import (
	"context"
	"math/big"
	"testing"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = gcommon.HexToAddress("0x00000000000000000000000000000000000000aa")
	stranger = gcommon.HexToAddress("0x00000000000000000000000000000000000000bb")
	token    = gcommon.HexToAddress("0x1000000000000000000000000000000000000001")
)

func TestInMemoryGatewayRegisterAndPrice(t *testing.T) {
	g := NewInMemoryGateway(owner)

	require.NoError(t, g.Register(owner, token, big.NewInt(200000000), 8))
	assert.True(t, g.Registered(context.Background(), token))

	price, decimals, err := g.Price(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(200000000), price.Int64())
	assert.Equal(t, uint8(8), decimals)
}

func TestInMemoryGatewayOwnerGate(t *testing.T) {
	g := NewInMemoryGateway(owner)
	err := g.Register(stranger, token, big.NewInt(1), 8)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.False(t, g.Registered(context.Background(), token))
}

func TestInMemoryGatewayUnregistered(t *testing.T) {
	g := NewInMemoryGateway(owner)

	_, _, err := g.Price(context.Background(), token)
	assert.ErrorIs(t, err, ErrFeedNotRegistered)

	_, _, err = g.Price(context.Background(), gcommon.Address{})
	assert.ErrorIs(t, err, ErrNativeFeedNotRegistered)
}

func TestInMemoryGatewayPriceIsACopy(t *testing.T) {
	g := NewInMemoryGateway(owner)
	require.NoError(t, g.Register(owner, token, big.NewInt(100), 8))

	price, _, err := g.Price(context.Background(), token)
	require.NoError(t, err)
	price.SetInt64(999)

	again, _, err := g.Price(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Int64())
}
