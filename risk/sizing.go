package risk

import "github.com/shopspring/decimal"

// Affordable returns the largest whole quantity cash buys at price, or 0
// when price is not positive.
func Affordable(cash, price decimal.Decimal) int64 {
	if !price.IsPositive() || !cash.IsPositive() {
		return 0
	}
	return cash.Div(price).Floor().IntPart()
}
