package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

func (s Side) Valid() bool { return s == Buy || s == Sell }

// Trade is one accepted execution. Trades are never modified once appended.
type Trade struct {
	ID       string          `json:"id"`
	Side     Side            `json:"side"`
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Time     time.Time       `json:"time"`

	// RealizedPnL is zero for buys. For sells it is (price - avg cost) * qty
	// against the cost basis held at the time of the sale.
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// Notional is quantity times price.
func (t Trade) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}
