package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, got.Equal(d(want)), "want %s got %s %v", want, got, msgAndArgs)
}

func mustTrade(t *testing.T, l *Ledger, side Side, sym string, qty int64, price string) Trade {
	t.Helper()
	tr, err := l.ApplyTrade(side, sym, qty, d(price), t0)
	require.NoError(t, err)
	return tr
}

func TestBuyOpensPosition(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	tr := mustTrade(t, l, Buy, "AAPL", 10, "150")

	assertDec(t, "8500", l.Cash())
	p, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(10), p.Quantity)
	assertDec(t, "150", p.AvgCost)
	assertDec(t, "150", p.LastPrice)
	assertDec(t, "0", p.UnrealizedPnL)

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, Buy, tr.Side)
	assertDec(t, "0", tr.RealizedPnL)
	assert.True(t, tr.Time.Equal(t0))
}

func TestBuyBlendsAverageCost(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 10, "100")
	mustTrade(t, l, Buy, "AAPL", 10, "120")

	p, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(20), p.Quantity)
	assertDec(t, "110", p.AvgCost)
	assertDec(t, "7800", l.Cash())
}

func TestRepeatedPartialBuys(t *testing.T) {
	t.Parallel()

	l := New(d("100000"))
	mustTrade(t, l, Buy, "MSFT", 3, "300")
	mustTrade(t, l, Buy, "MSFT", 1, "304")
	mustTrade(t, l, Buy, "MSFT", 4, "310")

	// (900 + 304 + 1240) / 8
	p, _ := l.Position("MSFT")
	assert.Equal(t, int64(8), p.Quantity)
	assertDec(t, "305.5", p.AvgCost)
}

func TestSellPreservesCostBasis(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 10, "100")
	mustTrade(t, l, Buy, "AAPL", 10, "120")
	before := l.Cash()

	tr := mustTrade(t, l, Sell, "AAPL", 5, "150")

	p, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(15), p.Quantity)
	assertDec(t, "110", p.AvgCost)
	assertDec(t, "750", l.Cash().Sub(before))
	assertDec(t, "200", tr.RealizedPnL)
	assertDec(t, "200", l.RealizedPnL())
}

func TestSellAllRemovesPosition(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "TSLA", 5, "200")
	mustTrade(t, l, Sell, "TSLA", 5, "180")

	_, ok := l.Position("TSLA")
	assert.False(t, ok)
	assert.Empty(t, l.Positions())
	assert.Equal(t, int64(0), l.Held("TSLA"))
	assertDec(t, "-100", l.RealizedPnL())

	mustTrade(t, l, Buy, "TSLA", 2, "175")
	p, ok := l.Position("TSLA")
	require.True(t, ok)
	assert.Equal(t, int64(2), p.Quantity)
	assertDec(t, "175", p.AvgCost)
}

func TestOversellLeavesBooksUntouched(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 5, "100")
	cash := l.Cash()

	_, err := l.ApplyTrade(Sell, "AAPL", 6, d("100"), t0)
	assert.ErrorIs(t, err, ErrOversell)

	_, err = l.ApplyTrade(Sell, "MSFT", 1, d("100"), t0)
	assert.ErrorIs(t, err, ErrOversell)

	assert.True(t, l.Cash().Equal(cash))
	assert.Equal(t, int64(5), l.Held("AAPL"))
	assert.Equal(t, 1, l.TradeCount())
}

func TestInvalidTrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		side  Side
		sym   string
		qty   int64
		price string
	}{
		{"zero qty", Buy, "AAPL", 0, "10"},
		{"negative qty", Buy, "AAPL", -3, "10"},
		{"zero price", Buy, "AAPL", 1, "0"},
		{"negative price", Sell, "AAPL", 1, "-5"},
		{"empty symbol", Buy, "", 1, "10"},
		{"bad side", Side("HOLD"), "AAPL", 1, "10"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := New(d("1000"))
			_, err := l.ApplyTrade(tt.side, tt.sym, tt.qty, d(tt.price), t0)
			assert.ErrorIs(t, err, ErrInvalidTrade)
			assertDec(t, "1000", l.Cash())
			assert.Zero(t, l.TradeCount())
		})
	}
}

func TestApplyPriceTick(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 10, "150")

	assert.True(t, l.ApplyPriceTick("AAPL", d("160")))
	p, _ := l.Position("AAPL")
	assertDec(t, "160", p.LastPrice)
	assertDec(t, "100", p.UnrealizedPnL)
	assertDec(t, "100", l.TotalUnrealizedPnL())

	assert.False(t, l.ApplyPriceTick("MSFT", d("300")))
	assert.False(t, l.ApplyPriceTick("AAPL", d("0")))
	assert.False(t, l.ApplyPriceTick("AAPL", d("-1")))

	p, _ = l.Position("AAPL")
	assertDec(t, "160", p.LastPrice)
}

func TestEndToEndReturn(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 10, "150")
	assertDec(t, "8500", l.Cash())

	l.ApplyPriceTick("AAPL", d("160"))
	assertDec(t, "100", l.TotalUnrealizedPnL())
	assertDec(t, "1", l.TotalReturnPct())

	tr := mustTrade(t, l, Sell, "AAPL", 10, "160")
	assertDec(t, "10100", l.Cash())
	assertDec(t, "100", tr.RealizedPnL)
	assert.Empty(t, l.Positions())
	assertDec(t, "0.01", l.TotalReturn())
	assertDec(t, "1", l.TotalReturnPct())
}

func TestTradeLogOrder(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	a := mustTrade(t, l, Buy, "AAPL", 1, "100")
	b := mustTrade(t, l, Buy, "MSFT", 1, "200")
	c := mustTrade(t, l, Sell, "AAPL", 1, "110")

	ids := func(ts []Trade) []string {
		out := make([]string, len(ts))
		for i, tr := range ts {
			out[i] = tr.ID
		}
		return out
	}
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(l.Trades()))
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(l.TradesNewestFirst()))

	// callers get copies
	log := l.Trades()
	log[0].Quantity = 999
	assert.Equal(t, int64(1), l.Trades()[0].Quantity)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 10, "150")
	mustTrade(t, l, Buy, "MSFT", 2, "300")
	l.ApplyPriceTick("MSFT", d("310"))

	s := l.Snapshot()
	assertDec(t, "10000", s.InitialCapital)
	assertDec(t, "7900", s.Cash)
	assertDec(t, "2120", s.MarketValue)
	assertDec(t, "10020", s.Equity)
	assertDec(t, "20", s.UnrealizedPnL)
	assertDec(t, "0.2", s.TotalReturnPct)
	assert.Equal(t, 2, s.TradeCount)
	require.Len(t, s.Positions, 2)
	assert.Equal(t, "AAPL", s.Positions[0].Symbol)
	assert.Equal(t, "MSFT", s.Positions[1].Symbol)
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	s, err := ParseSide(" buy ")
	require.NoError(t, err)
	assert.Equal(t, Buy, s)

	s, err = ParseSide("SELL")
	require.NoError(t, err)
	assert.Equal(t, Sell, s)

	_, err = ParseSide("short")
	assert.Error(t, err)
}

// cash + cost basis equals initial capital plus realized P&L, up to the
// rounding of each blended average.
func TestAccountingIdentity(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	symbols := []string{"AAPL", "MSFT", "TSLA"}
	l := New(d("1000000"))
	half := decimal.New(5, -AvgCostPlaces-1)
	drift := decimal.Zero

	for i := 0; i < 2000; i++ {
		sym := symbols[rng.Intn(len(symbols))]
		price := decimal.NewFromFloat(50 + rng.Float64()*200).Round(2)

		switch rng.Intn(3) {
		case 0:
			l.ApplyPriceTick(sym, price)
		case 1:
			qty := int64(rng.Intn(20) + 1)
			if l.Cash().GreaterThanOrEqual(price.Mul(decimal.NewFromInt(qty))) {
				drift = drift.Add(half.Mul(decimal.NewFromInt(l.Held(sym) + qty)))
				mustTrade(t, l, Buy, sym, qty, price.String())
			}
		case 2:
			held := l.Held(sym)
			if held > 0 {
				qty := int64(rng.Int63n(held) + 1)
				mustTrade(t, l, Sell, sym, qty, price.String())
			}
		}

		lhs := l.Cash().Add(l.CostBasis())
		rhs := l.InitialCapital().Add(l.RealizedPnL())
		require.Truef(t, lhs.Sub(rhs).Abs().LessThanOrEqual(drift),
			"step %d: off by %s, bound %s", i, lhs.Sub(rhs).Abs(), drift)
		require.False(t, l.Cash().IsNegative(), "step %d", i)
		for _, p := range l.Positions() {
			require.Greater(t, p.Quantity, int64(0))
		}
	}
}

func TestBlendedAverageRounding(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	mustTrade(t, l, Buy, "AAPL", 1, "100")
	mustTrade(t, l, Buy, "AAPL", 2, "101")

	p, ok := l.Position("AAPL")
	require.True(t, ok)
	assertDec(t, "100.6666666666666667", p.AvgCost)
	assertDec(t, "302.0000000000000001", p.CostBasis())

	mustTrade(t, l, Sell, "AAPL", 3, "101")
	assertDec(t, "10001", l.Cash())
	assertDec(t, "0.9999999999999999", l.RealizedPnL())

	// one blend of 3 units: at most 3 × 0.5e-16 between the two sides
	off := l.Cash().Sub(l.InitialCapital().Add(l.RealizedPnL())).Abs()
	assert.True(t, off.LessThanOrEqual(d("0.00000000000000015")), "off by %s", off)
}
