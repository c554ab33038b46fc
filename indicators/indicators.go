// Package indicators computes moving averages over a symbol's price history.
package indicators

import (
	"fmt"

	"github.com/rustyeddy/papertrader/market"
	"github.com/shopspring/decimal"
)

// Indicator consumes prices one at a time.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	Reset()
	Update(price decimal.Decimal)
	Ready() bool

	// Value is zero until Ready.
	Value() decimal.Decimal
}

// SimpleMA is a streaming simple moving average.
type SimpleMA struct {
	period int
	window []decimal.Decimal
}

func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]decimal.Decimal, 0, period),
	}
}

func (m *SimpleMA) Name() string { return fmt.Sprintf("MA(%d)", m.period) }

func (m *SimpleMA) Warmup() int { return m.period }

func (m *SimpleMA) Reset() { m.window = m.window[:0] }

func (m *SimpleMA) Update(price decimal.Decimal) {
	m.window = append(m.window, price)
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool { return m.period > 0 && len(m.window) >= m.period }

func (m *SimpleMA) Value() decimal.Decimal {
	if !m.Ready() {
		return decimal.Zero
	}
	return decimal.Sum(m.window[0], m.window[1:]...).Div(decimal.NewFromInt(int64(len(m.window))))
}

// ExponentialMA is a streaming exponential moving average seeded with the
// simple average of the first period prices.
type ExponentialMA struct {
	period     int
	multiplier decimal.Decimal
	ema        decimal.Decimal
	count      int
	warmupSum  decimal.Decimal
}

func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period + 1))),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

func (e *ExponentialMA) Warmup() int { return e.period }

func (e *ExponentialMA) Reset() {
	e.ema = decimal.Zero
	e.count = 0
	e.warmupSum = decimal.Zero
}

func (e *ExponentialMA) Update(price decimal.Decimal) {
	if e.count < e.period {
		e.warmupSum = e.warmupSum.Add(price)
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum.Div(decimal.NewFromInt(int64(e.period)))
		}
		return
	}
	e.ema = price.Sub(e.ema).Mul(e.multiplier).Add(e.ema)
}

func (e *ExponentialMA) Ready() bool { return e.period > 0 && e.count >= e.period }

func (e *ExponentialMA) Value() decimal.Decimal {
	if !e.Ready() {
		return decimal.Zero
	}
	return e.ema
}

// Reading is one indicator's value over a history.
type Reading struct {
	Name  string          `json:"name"`
	Ready bool            `json:"ready"`
	Value decimal.Decimal `json:"value"`
}

// Compute feeds quotes, oldest first, through each indicator and reports the
// final values. Indicators are reset first.
func Compute(quotes []market.Quote, inds ...Indicator) []Reading {
	out := make([]Reading, 0, len(inds))
	for _, ind := range inds {
		ind.Reset()
		for _, q := range quotes {
			ind.Update(q.Price)
		}
		out = append(out, Reading{Name: ind.Name(), Ready: ind.Ready(), Value: ind.Value().Round(4)})
	}
	return out
}
