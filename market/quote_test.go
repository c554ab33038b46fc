package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(sym, price string) Quote {
	return Quote{
		Symbol: sym,
		Price:  decimal.RequireFromString(price),
		Time:   time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestQuoteStoreSetGet(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	assert.True(t, s.Set(q("AAPL", "150.25")))

	got, err := s.Get("AAPL")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("150.25")))

	_, err = s.Get("MSFT")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestQuoteStoreRejectsNonPositive(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	require.True(t, s.Set(q("AAPL", "10")))

	assert.False(t, s.Set(q("AAPL", "0")))
	assert.False(t, s.Set(q("AAPL", "-1")))
	assert.False(t, s.Set(q("", "5")))

	got, err := s.Get("AAPL")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(10)))
}

func TestQuoteStoreAllSortedAndClear(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	s.Set(q("TSLA", "185.30"))
	s.Set(q("AAPL", "150.25"))
	s.Set(q("MSFT", "305.80"))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, []string{all[0].Symbol, all[1].Symbol, all[2].Symbol})

	s.Clear()
	assert.Empty(t, s.All())
}

func TestHistoryKeepsMostRecent(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	for _, p := range []string{"1", "2", "3", "4", "5"} {
		h.Add(q("AAPL", p))
	}
	h.Add(q("AAPL", "0"))

	pts := h.Points("AAPL")
	require.Len(t, pts, 3)
	assert.Equal(t, "3", pts[0].Price.String())
	assert.Equal(t, "5", pts[2].Price.String())

	// returned slice is a copy
	pts[0].Price = decimal.NewFromInt(99)
	assert.Equal(t, "3", h.Points("AAPL")[0].Price.String())

	h.Clear()
	assert.Empty(t, h.Points("AAPL"))
}

func TestHistoryDefaultLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultHistoryLimit, NewHistory(0).Limit())
}

func TestSymbolsSorted(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"AAPL", "GOOGL", "MSFT", "SPY", "TSLA"}, Symbols(DefaultUniverse))
}
