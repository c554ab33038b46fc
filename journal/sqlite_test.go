package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleTrade(id string, at time.Time) TradeRecord {
	return TradeRecord{
		TradeID:     id,
		SessionID:   "S1",
		Side:        "SELL",
		Symbol:      "AAPL",
		Quantity:    5,
		Price:       d("150.25"),
		RealizedPnL: d("201.25"),
		Time:        at,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
	assert.True(t, found["sessions"])
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := sampleTrade("T1", at)
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade("T1")
	require.NoError(t, err)

	assert.Equal(t, rec.TradeID, got.TradeID)
	assert.Equal(t, rec.SessionID, got.SessionID)
	assert.Equal(t, rec.Side, got.Side)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Quantity, got.Quantity)
	assert.True(t, rec.Price.Equal(got.Price))
	assert.True(t, rec.RealizedPnL.Equal(got.RealizedPnL))
	assert.True(t, got.Time.Equal(at))

	_, err = j.GetTrade("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteListTrades(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	day := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("A", day.Add(9*time.Hour))))
	require.NoError(t, j.RecordTrade(sampleTrade("B", day.Add(15*time.Hour))))
	other := sampleTrade("C", day.Add(30*time.Hour))
	other.SessionID = "S2"
	require.NoError(t, j.RecordTrade(other))

	recs, err := j.ListTradesBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].TradeID)
	assert.Equal(t, "B", recs[1].TradeID)

	recs, err = j.ListTradesBySession("S2")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "C", recs[0].TradeID)

	recs, err = j.ListTradesBetween(day.Add(48*time.Hour), day.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	rec := EquitySnapshot{
		SessionID:     "S1",
		Time:          ts,
		Cash:          d("8500"),
		MarketValue:   d("1600"),
		Equity:        d("10100"),
		UnrealizedPnL: d("100"),
		RealizedPnL:   d("0"),
		ReturnPct:     d("1"),
	}
	require.NoError(t, j.RecordEquity(rec))

	got, err := j.ListEquityBetween(ts.Add(-time.Minute), ts.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Time.Equal(ts))
	assert.True(t, got[0].Equity.Equal(rec.Equity))
	assert.True(t, got[0].Cash.Equal(rec.Cash))
	assert.True(t, got[0].ReturnPct.Equal(rec.ReturnPct))
}

func TestSQLiteSessionRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	run := SessionRun{
		RunID:          "R1",
		Started:        time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Ended:          time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		InitialCapital: d("10000"),
		FinalEquity:    d("10100"),
		NetPnL:         d("100"),
		ReturnPct:      d("1"),
		Trades:         2,
		Wins:           1,
		WinRate:        1,
	}
	require.NoError(t, j.RecordSession(run))
	// replaced, not duplicated
	require.NoError(t, j.RecordSession(run))

	got, err := j.GetSession("R1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Trades)
	assert.Equal(t, 1, got.Wins)
	assert.True(t, got.FinalEquity.Equal(run.FinalEquity))
	assert.True(t, got.Started.Equal(run.Started))

	_, err = j.GetSession("nope")
	assert.Error(t, err)
}
