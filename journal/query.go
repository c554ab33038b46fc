package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const tradeColumns = `trade_id, session_id, side, symbol, quantity, price, realized_pnl, time`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.SessionID,
		&rec.Side,
		&rec.Symbol,
		&rec.Quantity,
		&rec.Price,
		&rec.RealizedPnL,
		&rec.Time,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades executed within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.listTrades(`
		SELECT `+tradeColumns+` FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, trade_id ASC`, start.UTC(), end.UTC())
}

// ListTradesBySession returns a session's trades in execution order.
func (j *SQLite) ListTradesBySession(sessionID string) ([]TradeRecord, error) {
	return j.listTrades(`
		SELECT `+tradeColumns+` FROM trades
		WHERE session_id = ?
		ORDER BY trade_id ASC`, sessionID)
}

func (j *SQLite) listTrades(query string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT session_id, time, cash, market_value, equity, unrealized_pnl, realized_pnl, return_pct
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(
			&e.SessionID,
			&e.Time,
			&e.Cash,
			&e.MarketValue,
			&e.Equity,
			&e.UnrealizedPnL,
			&e.RealizedPnL,
			&e.ReturnPct,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSession returns one recorded session run.
func (j *SQLite) GetSession(runID string) (SessionRun, error) {
	var r SessionRun
	err := j.db.QueryRow(`
		SELECT run_id, started, ended, initial_capital, final_equity, net_pnl, return_pct,
		       trades, wins, losses, win_rate, profit_factor
		FROM sessions WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Started, &r.Ended, &r.InitialCapital, &r.FinalEquity, &r.NetPnL, &r.ReturnPct,
		&r.Trades, &r.Wins, &r.Losses, &r.WinRate, &r.ProfitFactor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRun{}, fmt.Errorf("session %q not found", runID)
		}
		return SessionRun{}, err
	}
	return r, nil
}
