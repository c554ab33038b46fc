package indicators

import (
	"testing"

	"github.com/rustyeddy/papertrader/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quotes(prices ...string) []market.Quote {
	out := make([]market.Quote, len(prices))
	for i, p := range prices {
		out[i] = market.Quote{Symbol: "AAPL", Price: d(p)}
	}
	return out
}

func TestSimpleMA(t *testing.T) {
	t.Parallel()

	m := NewMA(3)
	assert.Equal(t, "MA(3)", m.Name())
	assert.Equal(t, 3, m.Warmup())

	m.Update(d("10"))
	m.Update(d("11"))
	assert.False(t, m.Ready())
	assert.True(t, m.Value().IsZero())

	m.Update(d("12"))
	require.True(t, m.Ready())
	assert.True(t, m.Value().Equal(d("11")))

	m.Update(d("15"))
	assert.True(t, m.Value().Equal(d("12.6666666666666667")), m.Value().String())

	m.Reset()
	assert.False(t, m.Ready())
}

func TestExponentialMA(t *testing.T) {
	t.Parallel()

	e := NewEMA(3)
	for _, p := range []string{"10", "11", "12"} {
		e.Update(d(p))
	}
	require.True(t, e.Ready())
	assert.True(t, e.Value().Equal(d("11")), "seeded with the simple average")

	// multiplier 2/(3+1) = 0.5
	e.Update(d("13"))
	assert.True(t, e.Value().Equal(d("12")))
	e.Update(d("10"))
	assert.True(t, e.Value().Equal(d("11")))
}

func TestCompute(t *testing.T) {
	t.Parallel()

	got := Compute(quotes("10", "11", "12", "13"), NewMA(2), NewEMA(3), NewMA(10))
	require.Len(t, got, 3)

	assert.Equal(t, "MA(2)", got[0].Name)
	assert.True(t, got[0].Ready)
	assert.True(t, got[0].Value.Equal(d("12.5")))

	assert.True(t, got[1].Value.Equal(d("12")))

	assert.False(t, got[2].Ready)
	assert.True(t, got[2].Value.IsZero())
}

func TestZeroPeriodNeverReady(t *testing.T) {
	t.Parallel()

	m := NewMA(0)
	m.Update(d("10"))
	assert.False(t, m.Ready())
}
