package valuation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad big int literal %q", s)
	return v
}

func TestValueInUsd(t *testing.T) {
	testCases := []struct {
		name          string
		amount        string
		assetDecimals uint8
		price         string
		priceDecimals uint8
		expected      string
	}{
		{
			// 1 ether at $2,000.00000000
			name:          "one ether",
			amount:        "1000000000000000000",
			assetDecimals: 18,
			price:         "200000000000",
			priceDecimals: 8,
			expected:      "2000000000000000000000",
		},
		{
			// 2.5 units of a 6-decimal token at $1.00
			name:          "six decimal stablecoin",
			amount:        "2500000",
			assetDecimals: 6,
			price:         "100000000",
			priceDecimals: 8,
			expected:      "2500000000000000000",
		},
		{
			name:          "zero amount",
			amount:        "0",
			assetDecimals: 18,
			price:         "200000000000",
			priceDecimals: 8,
			expected:      "0",
		},
		{
			// sub-unit amount keeps full precision through the multiply
			name:          "one wei",
			amount:        "1",
			assetDecimals: 18,
			price:         "200000000000",
			priceDecimals: 8,
			expected:      "2000",
		},
		{
			name:          "zero decimal price feed",
			amount:        "3",
			assetDecimals: 0,
			price:         "7",
			priceDecimals: 0,
			expected:      "21000000000000000000",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValueInUsd(mustBig(t, tc.amount), tc.assetDecimals, mustBig(t, tc.price), tc.priceDecimals)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.String())
		})
	}
}

func TestValueInUsdRejectsBadInput(t *testing.T) {
	_, err := ValueInUsd(nil, 18, big.NewInt(1), 8)
	assert.Error(t, err)

	_, err = ValueInUsd(big.NewInt(1), 18, nil, 8)
	assert.Error(t, err)

	_, err = ValueInUsd(big.NewInt(-1), 18, big.NewInt(1), 8)
	assert.Error(t, err)

	_, err = ValueInUsd(big.NewInt(1), 18, big.NewInt(-1), 8)
	assert.Error(t, err)
}

func TestValueInUsdDoesNotMutateInputs(t *testing.T) {
	amount := big.NewInt(123)
	price := big.NewInt(456)
	_, err := ValueInUsd(amount, 6, price, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(123), amount.Int64())
	assert.Equal(t, int64(456), price.Int64())
}
