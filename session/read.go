package session

import (
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/shopspring/decimal"
)

// Status is what the API and CLI show for a session.
type Status struct {
	State   State          `json:"state"`
	RunID   string         `json:"run_id,omitempty"`
	Summary ledger.Summary `json:"summary"`
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RunID identifies the current run. Empty while Idle.
func (c *Controller) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

func (c *Controller) InitialCapital() decimal.Decimal { return c.initial }

func (c *Controller) Cash() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Cash()
}

func (c *Controller) Positions() []ledger.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Positions()
}

func (c *Controller) Position(symbol string) (ledger.Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Position(symbol)
}

// Trades returns the trade log in execution order.
func (c *Controller) Trades() []ledger.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Trades()
}

func (c *Controller) TradesNewestFirst() []ledger.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TradesNewestFirst()
}

func (c *Controller) TotalReturnPct() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TotalReturnPct()
}

func (c *Controller) Summary() ledger.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Snapshot()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, RunID: c.runID, Summary: c.ledger.Snapshot()}
}

// Quotes returns the latest quote per symbol, sorted by symbol.
func (c *Controller) Quotes() []market.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotes.All()
}

func (c *Controller) Quote(symbol string) (market.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotes.Get(symbol)
}

// History returns the recent quotes for symbol, oldest first.
func (c *Controller) History(symbol string) []market.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Points(symbol)
}
