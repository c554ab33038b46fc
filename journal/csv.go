package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends trades and equity snapshots to two CSV files. Session
// summaries are not written; use the SQLite journal to keep them.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef io.Closer
}

var (
	tradesHeader = []string{"trade_id", "session_id", "side", "symbol", "quantity", "price", "realized_pnl", "time"}
	equityHeader = []string{"session_id", "time", "cash", "market_value", "equity", "unrealized_pnl", "realized_pnl", "return_pct"}
)

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", tradesPath, err)
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		_ = tf.Close()
		return nil, fmt.Errorf("create %s: %w", equityPath, err)
	}
	return newCSV(tf, ef, tradesPath, equityPath)
}

// newCSV writes both headers. On failure both files are closed.
func newCSV(tf, ef io.WriteCloser, tradesName, equityName string) (*CSVJournal, error) {
	j := &CSVJournal{csv.NewWriter(tf), csv.NewWriter(ef), tf, ef}
	if err := j.write(j.trades, tradesHeader); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("write header %s: %w", tradesName, err)
	}
	if err := j.write(j.equity, equityHeader); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("write header %s: %w", equityName, err)
	}
	return j, nil
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return j.write(j.trades, []string{
		t.TradeID,
		t.SessionID,
		t.Side,
		t.Symbol,
		strconv.FormatInt(t.Quantity, 10),
		t.Price.String(),
		t.RealizedPnL.String(),
		t.Time.UTC().Format(time.RFC3339Nano),
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.SessionID,
		e.Time.UTC().Format(time.RFC3339Nano),
		e.Cash.String(),
		e.MarketValue.String(),
		e.Equity.String(),
		e.UnrealizedPnL.String(),
		e.RealizedPnL.String(),
		e.ReturnPct.String(),
	})
}

func (j *CSVJournal) RecordSession(SessionRun) error { return nil }

// Close flushes and closes both files. Both are closed even when a flush fails.
func (j *CSVJournal) Close() error {
	j.trades.Flush()
	j.equity.Flush()
	return errors.Join(
		j.trades.Error(),
		j.equity.Error(),
		j.tf.Close(),
		j.ef.Close(),
	)
}
