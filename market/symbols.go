package market

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultUniverse is the instrument set the simulator trades out of the box,
// with the prices each one starts from.
var DefaultUniverse = map[string]decimal.Decimal{
	"AAPL":  decimal.RequireFromString("150.25"),
	"MSFT":  decimal.RequireFromString("305.80"),
	"GOOGL": decimal.RequireFromString("2450.50"),
	"TSLA":  decimal.RequireFromString("185.30"),
	"SPY":   decimal.RequireFromString("425.75"),
}

// Symbols returns the keys of a price map in sorted order.
func Symbols(prices map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(prices))
	for s := range prices {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
