package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, session_id, side, symbol, quantity, price, realized_pnl, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.SessionID, t.Side, t.Symbol, t.Quantity,
		t.Price.String(), t.RealizedPnL.String(), t.Time.UTC(),
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(session_id, time, cash, market_value, equity, unrealized_pnl, realized_pnl, return_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Time.UTC(), e.Cash.String(), e.MarketValue.String(), e.Equity.String(),
		e.UnrealizedPnL.String(), e.RealizedPnL.String(), e.ReturnPct.String(),
	)
	return err
}

func (j *SQLite) RecordSession(r SessionRun) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO sessions
		(run_id, started, ended, initial_capital, final_equity, net_pnl, return_pct,
		 trades, wins, losses, win_rate, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Started.UTC(), r.Ended.UTC(), r.InitialCapital.String(), r.FinalEquity.String(),
		r.NetPnL.String(), r.ReturnPct.String(), r.Trades, r.Wins, r.Losses, r.WinRate, r.ProfitFactor,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
