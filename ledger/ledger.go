// Package ledger is the paper portfolio: cash, open positions, realized P&L
// and the append-only trade log. It does no I/O and takes no locks; the
// session controller serializes every call.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/papertrader/pkg/id"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTrade = errors.New("invalid trade")
	ErrOversell     = errors.New("sell exceeds held quantity")
)

var hundred = decimal.NewFromInt(100)

type Ledger struct {
	initial   decimal.Decimal
	cash      decimal.Decimal
	realized  decimal.Decimal
	positions map[string]*Position
	trades    []Trade
	ids       *id.Generator
}

type Option func(*Ledger)

// WithIDs sets the generator used for trade IDs.
func WithIDs(g *id.Generator) Option {
	return func(l *Ledger) { l.ids = g }
}

func New(initialCapital decimal.Decimal, opts ...Option) *Ledger {
	l := &Ledger{
		initial:   initialCapital,
		cash:      initialCapital,
		positions: make(map[string]*Position),
	}
	for _, o := range opts {
		o(l)
	}
	if l.ids == nil {
		l.ids = id.NewGenerator(nil)
	}
	return l
}

// ApplyPriceTick marks the open position in symbol to price. It reports
// whether a position was revalued; non-positive prices are ignored.
func (l *Ledger) ApplyPriceTick(symbol string, price decimal.Decimal) bool {
	if !price.IsPositive() {
		return false
	}
	p, ok := l.positions[symbol]
	if !ok {
		return false
	}
	p.mark(price)
	return true
}

// ApplyTrade books an execution. Callers are expected to have run the order
// through risk.Gate first; the checks here only keep the books consistent.
func (l *Ledger) ApplyTrade(side Side, symbol string, qty int64, price decimal.Decimal, at time.Time) (Trade, error) {
	if qty <= 0 || !price.IsPositive() || symbol == "" || !side.Valid() {
		return Trade{}, fmt.Errorf("apply trade %s %d %s @ %s: %w", side, qty, symbol, price, ErrInvalidTrade)
	}

	t := Trade{
		ID:          l.ids.New(),
		Side:        side,
		Symbol:      symbol,
		Quantity:    qty,
		Price:       price,
		Time:        at,
		RealizedPnL: decimal.Zero,
	}
	notional := t.Notional()

	switch side {
	case Buy:
		l.cash = l.cash.Sub(notional)
		if p, ok := l.positions[symbol]; ok {
			p.add(qty, price)
		} else {
			p := &Position{Symbol: symbol, Quantity: qty, AvgCost: price}
			p.mark(price)
			l.positions[symbol] = p
		}

	case Sell:
		p, ok := l.positions[symbol]
		if !ok || p.Quantity < qty {
			held := int64(0)
			if ok {
				held = p.Quantity
			}
			return Trade{}, fmt.Errorf("apply trade sell %d %s (held %d): %w", qty, symbol, held, ErrOversell)
		}
		l.cash = l.cash.Add(notional)
		t.RealizedPnL = p.remove(qty, price)
		l.realized = l.realized.Add(t.RealizedPnL)
		if p.Quantity == 0 {
			delete(l.positions, symbol)
		}
	}

	l.trades = append(l.trades, t)
	return t, nil
}

func (l *Ledger) InitialCapital() decimal.Decimal { return l.initial }
func (l *Ledger) Cash() decimal.Decimal { return l.cash }

// RealizedPnL is the sum of realized P&L over every sell so far.
func (l *Ledger) RealizedPnL() decimal.Decimal { return l.realized }

func (l *Ledger) Position(symbol string) (Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Held returns the open quantity in symbol, zero when flat.
func (l *Ledger) Held(symbol string) int64 {
	if p, ok := l.positions[symbol]; ok {
		return p.Quantity
	}
	return 0
}

// Positions returns copies of the open positions sorted by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Trades returns the trade log in execution order.
func (l *Ledger) Trades() []Trade {
	return append([]Trade(nil), l.trades...)
}

// TradesNewestFirst returns the trade log most recent first, the order the
// blotter displays it in.
func (l *Ledger) TradesNewestFirst() []Trade {
	out := make([]Trade, len(l.trades))
	for i, t := range l.trades {
		out[len(l.trades)-1-i] = t
	}
	return out
}

func (l *Ledger) TradeCount() int { return len(l.trades) }

func (l *Ledger) TotalUnrealizedPnL() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.positions {
		sum = sum.Add(p.UnrealizedPnL)
	}
	return sum
}

// MarketValue is the value of all holdings at their last observed prices.
func (l *Ledger) MarketValue() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.positions {
		sum = sum.Add(p.MarketValue())
	}
	return sum
}

// CostBasis is the value of all holdings at average cost.
func (l *Ledger) CostBasis() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.positions {
		sum = sum.Add(p.CostBasis())
	}
	return sum
}

// Equity is cash plus market value.
func (l *Ledger) Equity() decimal.Decimal { return l.cash.Add(l.MarketValue()) }

// TotalReturn is (equity - initial capital) / initial capital as a fraction.
func (l *Ledger) TotalReturn() decimal.Decimal {
	if l.initial.IsZero() {
		return decimal.Zero
	}
	return l.Equity().Sub(l.initial).Div(l.initial)
}

// TotalReturnPct is TotalReturn expressed in percent.
func (l *Ledger) TotalReturnPct() decimal.Decimal { return l.TotalReturn().Mul(hundred) }

// Summary is a point-in-time copy of the ledger for readers outside the lock.
type Summary struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	Cash           decimal.Decimal `json:"cash"`
	MarketValue    decimal.Decimal `json:"market_value"`
	Equity         decimal.Decimal `json:"equity"`
	UnrealizedPnL  decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	TotalReturnPct decimal.Decimal `json:"total_return_pct"`
	TradeCount     int             `json:"trade_count"`
	Positions      []Position      `json:"positions"`
}

func (l *Ledger) Snapshot() Summary {
	return Summary{
		InitialCapital: l.initial,
		Cash:           l.cash,
		MarketValue:    l.MarketValue(),
		Equity:         l.Equity(),
		UnrealizedPnL:  l.TotalUnrealizedPnL(),
		RealizedPnL:    l.realized,
		TotalReturnPct: l.TotalReturnPct(),
		TradeCount:     len(l.trades),
		Positions:      l.Positions(),
	}
}
