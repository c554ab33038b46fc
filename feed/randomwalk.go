package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/papertrader/market"
	"github.com/shopspring/decimal"
)

var (
	// Floor is the lowest price the walk will emit.
	Floor = decimal.RequireFromString("0.01")

	DefaultVolatility = 0.02
)

// RandomWalk moves every symbol by a uniform random fraction in
// [-Volatility, +Volatility] per tick, rounded to cents and clamped at Floor.
type RandomWalk struct {
	mu         sync.Mutex
	start      map[string]decimal.Decimal
	prices     map[string]decimal.Decimal
	symbols    []string
	volatility float64
	seed       int64
	rng        *rand.Rand
}

// NewRandomWalk starts every symbol at its price in start. A zero seed uses
// the current time.
func NewRandomWalk(start map[string]decimal.Decimal, volatility float64, seed int64) *RandomWalk {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &RandomWalk{
		start:      make(map[string]decimal.Decimal, len(start)),
		symbols:    market.Symbols(start),
		volatility: volatility,
		seed:       seed,
	}
	for s, p := range start {
		w.start[s] = p
	}
	w.Reset()
	return w
}

func (w *RandomWalk) Next(ctx context.Context, at time.Time) ([]market.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]market.Quote, 0, len(w.symbols))
	for _, s := range w.symbols {
		change := (w.rng.Float64()*2 - 1) * w.volatility
		p := w.prices[s].Mul(decimal.NewFromFloat(1 + change)).Round(2)
		if p.LessThan(Floor) {
			p = Floor
		}
		w.prices[s] = p
		out = append(out, market.Quote{Symbol: s, Price: p, Time: at})
	}
	return out, nil
}

// Reset puts every symbol back at its starting price and replays the same
// random sequence.
func (w *RandomWalk) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prices = make(map[string]decimal.Decimal, len(w.start))
	for s, p := range w.start {
		w.prices[s] = p
	}
	w.rng = rand.New(rand.NewSource(w.seed))
}

// Prices returns the current walk level of every symbol.
func (w *RandomWalk) Prices() map[string]decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]decimal.Decimal, len(w.prices))
	for s, p := range w.prices {
		out[s] = p
	}
	return out
}
