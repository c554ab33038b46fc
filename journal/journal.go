// journal/journal.go
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is the persisted form of one accepted trade.
type TradeRecord struct {
	TradeID     string
	SessionID   string
	Side        string
	Symbol      string
	Quantity    int64
	Price       decimal.Decimal
	RealizedPnL decimal.Decimal
	Time        time.Time
}

// EquitySnapshot is the account valuation after a trade or tick batch.
type EquitySnapshot struct {
	SessionID     string
	Time          time.Time
	Cash          decimal.Decimal
	MarketValue   decimal.Decimal
	Equity        decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
	ReturnPct     decimal.Decimal
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordSession(SessionRun) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordSession(SessionRun) error { return nil }
func (Nop) Close() error { return nil }
