package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// Script replays fixed batches in order, then returns ErrExhausted. Quote
// times are replaced with the tick time when zero.
type Script struct {
	mu      sync.Mutex
	batches [][]market.Quote
	pos     int
}

func NewScript(batches ...[]market.Quote) *Script {
	return &Script{batches: batches}
}

func (s *Script) Next(ctx context.Context, at time.Time) ([]market.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.batches) {
		return nil, ErrExhausted
	}
	batch := make([]market.Quote, len(s.batches[s.pos]))
	copy(batch, s.batches[s.pos])
	s.pos++

	for i := range batch {
		if batch[i].Time.IsZero() {
			batch[i].Time = at
		}
	}
	return batch, nil
}

func (s *Script) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
}

// Remaining is the number of batches not yet delivered.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches) - s.pos
}
