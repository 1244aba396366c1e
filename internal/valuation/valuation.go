// Package valuation converts raw asset amounts into USD values normalized to
// 18 decimal places.
package valuation

import (
	"fmt"
	"math/big"
)

// UsdDecimals is the fixed-point precision of every USD value produced here,
// independent of the source asset's or the price feed's own precision.
const UsdDecimals = 18

var usdScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(UsdDecimals), nil)

// ValueInUsd converts amount of an asset with assetDecimals precision, priced
// at price with priceDecimals precision, into an 18-decimal USD value. The
// multiplication happens before the decimal division so no precision is lost
// ahead of the final truncation.
func ValueInUsd(amount *big.Int, assetDecimals uint8, price *big.Int, priceDecimals uint8) (*big.Int, error) {
	if amount == nil || price == nil {
		return nil, fmt.Errorf("amount and price are required")
	}
	if amount.Sign() < 0 || price.Sign() < 0 {
		return nil, fmt.Errorf("amount and price must be non-negative")
	}
	num := new(big.Int).Mul(amount, price)
	num.Mul(num, usdScale)
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(assetDecimals)+int64(priceDecimals)), nil)
	return num.Quo(num, den), nil
}
