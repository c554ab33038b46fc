package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionRun summarizes one paper trading session from start to reset.
type SessionRun struct {
	RunID   string
	Started time.Time
	Ended   time.Time

	InitialCapital decimal.Decimal
	FinalEquity    decimal.Decimal
	NetPnL         decimal.Decimal
	ReturnPct      decimal.Decimal

	Trades int
	Wins   int
	Losses int

	// Derived by Tally
	WinRate      float64
	ProfitFactor float64
}

// Tally fills the trade statistics from the session's trades. Only sells
// close lots, so only sells count as wins or losses.
func (r *SessionRun) Tally(trades []TradeRecord) {
	r.Trades = len(trades)
	r.Wins, r.Losses = 0, 0

	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, t := range trades {
		switch {
		case t.RealizedPnL.IsPositive():
			r.Wins++
			grossProfit = grossProfit.Add(t.RealizedPnL)
		case t.RealizedPnL.IsNegative():
			r.Losses++
			grossLoss = grossLoss.Add(t.RealizedPnL.Abs())
		}
	}

	r.WinRate = 0
	if closed := r.Wins + r.Losses; closed > 0 {
		r.WinRate = float64(r.Wins) / float64(closed)
	}
	r.ProfitFactor = 0
	if grossLoss.IsPositive() {
		r.ProfitFactor = grossProfit.Div(grossLoss).InexactFloat64()
	}
}
