package market

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoQuote is returned when a symbol has never been priced.
var ErrNoQuote = errors.New("quote not found")

// Quote is the latest observed price for one symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

// Valid reports whether q carries a usable price.
func (q Quote) Valid() bool {
	return q.Symbol != "" && q.Price.IsPositive()
}

type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]Quote)}
}

// Set stores q unless its price is not positive.
func (s *QuoteStore) Set(q Quote) bool {
	if !q.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.Symbol] = q
	return true
}

func (s *QuoteStore) Get(symbol string) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	if !ok {
		return Quote{}, ErrNoQuote
	}
	return q, nil
}

// All returns every quote sorted by symbol.
func (s *QuoteStore) All() []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (s *QuoteStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = make(map[string]Quote)
}
