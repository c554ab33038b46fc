// Package feed produces synthetic price ticks for the simulator. Sources are
// pluggable so the session can be driven by a seeded random walk, a fixed
// script, or a recorded CSV file.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// ErrExhausted is returned by finite sources once every batch was delivered.
var ErrExhausted = errors.New("feed exhausted")

// Source yields one batch of quotes per tick interval. The session calls
// Next with its lock held, so Next must return promptly.
type Source interface {
	Next(ctx context.Context, at time.Time) ([]market.Quote, error)
}

// Resetter is implemented by sources that can rewind to their first tick.
type Resetter interface {
	Reset()
}
