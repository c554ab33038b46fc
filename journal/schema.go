// journal/schema.go
package journal

// Money columns are TEXT so decimals round trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	side TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL,
	realized_pnl TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id);

CREATE TABLE IF NOT EXISTS equity (
	session_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash TEXT NOT NULL,
	market_value TEXT NOT NULL,
	equity TEXT NOT NULL,
	unrealized_pnl TEXT NOT NULL,
	realized_pnl TEXT NOT NULL,
	return_pct TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);

CREATE TABLE IF NOT EXISTS sessions (
	run_id TEXT PRIMARY KEY,
	started DATETIME NOT NULL,
	ended DATETIME NOT NULL,
	initial_capital TEXT NOT NULL,
	final_equity TEXT NOT NULL,
	net_pnl TEXT NOT NULL,
	return_pct TEXT NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL
);
`
