// Package risk is the admission check every order passes before it reaches
// the ledger.
package risk

import (
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/ledger"
	"github.com/shopspring/decimal"
)

// Order is a market order intent. Orders always fill at the live quote.
type Order struct {
	Side     ledger.Side `json:"side"`
	Symbol   string      `json:"symbol"`
	Quantity int64       `json:"quantity"`
}

// View is the slice of session state the gate reads.
type View interface {
	Active() bool
	Price(symbol string) (decimal.Decimal, bool)
	Cash() decimal.Decimal
	Held(symbol string) int64
}

type Violation struct {
	Code string
	Msg  string
	err  error
}

// Decision is the gate's verdict. When Allowed, Price is the quote snapshot
// the trade must be booked at.
type Decision struct {
	Allowed   bool
	Violation Violation

	Price    decimal.Decimal
	Notional decimal.Decimal
}

func (d *Decision) reject(err error, msg string) {
	d.Allowed = false
	d.Violation = Violation{Code: Code(err), Msg: msg, err: err}
}

// Err returns nil for an accepted order, otherwise the wrapped sentinel.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%s: %w", d.Violation.Msg, d.Violation.err)
}

// Evaluate checks o against v. The first failing rule decides.
func Evaluate(o Order, v View) Decision {
	d := Decision{}

	if !v.Active() {
		d.reject(ErrSessionNotActive, "orders are accepted only while the session is running")
		return d
	}
	if !o.Side.Valid() {
		d.reject(ErrInvalidOrder, fmt.Sprintf("unknown side %q", o.Side))
		return d
	}
	if o.Quantity <= 0 {
		d.reject(ErrInvalidOrder, fmt.Sprintf("quantity must be positive, got %d", o.Quantity))
		return d
	}
	price, ok := v.Price(o.Symbol)
	if !ok || !price.IsPositive() {
		d.reject(ErrInvalidOrder, fmt.Sprintf("no live price for %q", o.Symbol))
		return d
	}

	d.Price = price
	d.Notional = price.Mul(decimal.NewFromInt(o.Quantity))

	switch o.Side {
	case ledger.Buy:
		if cash := v.Cash(); cash.LessThan(d.Notional) {
			d.reject(ErrInsufficientFunds,
				fmt.Sprintf("buy %d %s costs %s, cash %s covers %d", o.Quantity, o.Symbol,
					d.Notional.StringFixed(2), cash.StringFixed(2), Affordable(cash, price)))
			return d
		}
	case ledger.Sell:
		if held := v.Held(o.Symbol); held < o.Quantity {
			d.reject(ErrInsufficientPosition,
				fmt.Sprintf("sell %d %s, held %d", o.Quantity, o.Symbol, held))
			return d
		}
	}

	d.Allowed = true
	return d
}

// Gate runs Evaluate and books accepted orders on a ledger.
type Gate struct{}

// Execute evaluates o and, when allowed, applies exactly one trade to l at
// the evaluated price. Rejections leave l untouched.
func (Gate) Execute(o Order, v View, l *ledger.Ledger, at time.Time) (ledger.Trade, Decision, error) {
	d := Evaluate(o, v)
	if err := d.Err(); err != nil {
		return ledger.Trade{}, d, err
	}
	t, err := l.ApplyTrade(o.Side, o.Symbol, o.Quantity, d.Price, at)
	return t, d, err
}

// Check is Evaluate reduced to the booking price or the rejection.
func (Gate) Check(o Order, v View) (decimal.Decimal, error) {
	d := Evaluate(o, v)
	if err := d.Err(); err != nil {
		return decimal.Zero, err
	}
	return d.Price, nil
}
