// Package session runs one paper trading session: it owns the ledger, the
// live quotes and the price feed loop, and serializes ticks, orders and
// lifecycle changes behind a single lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/pkg/id"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Controller struct {
	mu sync.Mutex

	state   State
	initial decimal.Decimal
	ledger  *ledger.Ledger
	quotes  *market.QuoteStore
	history *market.History
	gate    risk.Gate

	runID   string
	started time.Time

	source       feed.Source
	interval     time.Duration
	journal      journal.Journal
	log          logrus.FieldLogger
	now          func() time.Time
	historyLimit int
	ids          *id.Generator
	listeners    []Listener

	// set while the feed loop runs
	cancel context.CancelFunc
	loops  sync.WaitGroup

	// closed once the feed reports ErrExhausted, renewed by Reset
	feedDone  chan struct{}
	exhausted bool
}

// New returns an Idle session holding initialCapital in cash.
func New(initialCapital decimal.Decimal, opts ...Option) *Controller {
	c := &Controller{
		initial:  initialCapital,
		interval: DefaultInterval,
		journal:  journal.Nop{},
		log:      logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.ids == nil {
		c.ids = id.NewGenerator(c.now)
	}
	c.feedDone = make(chan struct{})
	c.quotes = market.NewQuoteStore()
	c.history = market.NewHistory(c.historyLimit)
	c.ledger = ledger.New(c.initial, ledger.WithIDs(c.ids))
	return c
}

// Subscribe adds a listener for subsequent events.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Start moves Idle or Paused to Running and starts the feed loop. Calling it
// while Running does nothing. The loop stops when ctx is done, the feed is
// exhausted, or the session is paused or reset.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	from := c.state
	if from == Running {
		c.mu.Unlock()
		return
	}
	if from == Idle {
		c.runID = c.ids.New()
		c.started = c.now()
	}
	c.state = Running

	if c.source != nil {
		loopCtx, cancel := context.WithCancel(ctx)
		c.cancel = cancel
		c.loops.Add(1)
		go c.loop(loopCtx)
	}
	listeners := c.listeners
	c.log.WithFields(logrus.Fields{
		"run_id": c.runID,
		"from":   from,
		"cash":   c.ledger.Cash().StringFixed(2),
	}).Info("session started")
	c.mu.Unlock()

	notifyState(listeners, from, Running)
}

// Pause stops the feed and freezes the books; no tick lands after Pause
// returns. It does not wait for the loop goroutine, so a tick listener may
// call it. No-op unless Running.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return
	}
	c.state = Paused
	c.stopLoopLocked()
	listeners := c.listeners
	c.log.WithField("run_id", c.runID).Info("session paused")
	c.mu.Unlock()

	notifyState(listeners, Running, Paused)
}

// Reset discards all session state from any state: cash returns to the
// initial capital, positions, trade log, quotes and history are cleared and
// the feed rewinds. A finished run is summarized to the journal first.
func (c *Controller) Reset() {
	c.mu.Lock()
	from := c.state
	c.stopLoopLocked()
	c.recordRunLocked()

	c.ledger = ledger.New(c.initial, ledger.WithIDs(c.ids))
	c.quotes.Clear()
	c.history.Clear()
	if r, ok := c.source.(feed.Resetter); ok {
		r.Reset()
		if c.exhausted {
			c.feedDone = make(chan struct{})
			c.exhausted = false
		}
	}
	c.state = Idle
	c.runID = ""
	c.started = time.Time{}
	listeners := c.listeners
	c.log.WithField("from", from).Info("session reset")
	c.mu.Unlock()

	if from != Idle {
		notifyState(listeners, from, Idle)
	}
}

// Close stops the feed, waits for the loop goroutine to exit and journals
// the current run without clearing it. Not for use inside a listener.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopLoopLocked()
	c.recordRunLocked()
	c.mu.Unlock()
	c.loops.Wait()
}

// FeedDone is closed when a finite feed has delivered every batch. Reset
// rewinds the feed and hands out a fresh channel.
func (c *Controller) FeedDone() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedDone
}

// Tick applies one price update. Ticks are dropped unless the session is
// Running or when price is not positive; the return value says whether it
// was applied.
func (c *Controller) Tick(symbol string, price decimal.Decimal) bool {
	c.mu.Lock()
	applied := c.applyLocked([]market.Quote{{Symbol: symbol, Price: price, Time: c.now()}})
	listeners := c.listeners
	c.mu.Unlock()

	if len(applied) == 0 {
		return false
	}
	notifyTick(listeners, applied)
	return true
}

// SubmitOrder runs a market order through the gate and books it at the live
// quote. Rejections wrap one of the risk sentinel errors and change nothing.
func (c *Controller) SubmitOrder(ctx context.Context, side ledger.Side, symbol string, qty int64) (ledger.Trade, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Trade{}, err
	}

	c.mu.Lock()
	order := risk.Order{Side: side, Symbol: symbol, Quantity: qty}
	t, dec, err := c.gate.Execute(order, view{c}, c.ledger, c.now())
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"side":   side,
			"symbol": symbol,
			"qty":    qty,
			"code":   dec.Violation.Code,
		}).Info("order rejected")
		c.mu.Unlock()
		return ledger.Trade{}, fmt.Errorf("submit order: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"trade_id": t.ID,
		"side":     t.Side,
		"symbol":   t.Symbol,
		"qty":      t.Quantity,
		"price":    t.Price.StringFixed(2),
		"realized": t.RealizedPnL.StringFixed(2),
	}).Info("order filled")

	if err := c.journal.RecordTrade(tradeRecord(c.runID, t)); err != nil {
		c.log.WithError(err).WithField("trade_id", t.ID).Warn("journal trade")
	}
	c.recordEquityLocked(t.Time)
	listeners := c.listeners
	c.mu.Unlock()

	for _, l := range listeners {
		l.OnTrade(t)
	}
	return t, nil
}

func (c *Controller) loop(ctx context.Context) {
	defer c.loops.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		// a Pause or Reset that won the lock cancelled ctx first
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		quotes, err := c.source.Next(ctx, c.now())
		if err != nil {
			if errors.Is(err, feed.ErrExhausted) {
				if !c.exhausted {
					c.exhausted = true
					close(c.feedDone)
					c.log.WithField("run_id", c.runID).Info("price feed exhausted")
				}
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			c.log.WithError(err).Warn("price feed")
			continue
		}
		applied := c.applyLocked(quotes)
		listeners := c.listeners
		c.mu.Unlock()

		if len(applied) > 0 {
			notifyTick(listeners, applied)
		}
	}
}

func (c *Controller) applyLocked(quotes []market.Quote) []market.Quote {
	if c.state != Running {
		return nil
	}

	applied := make([]market.Quote, 0, len(quotes))
	var last time.Time
	for _, q := range quotes {
		if !c.quotes.Set(q) {
			c.log.WithFields(logrus.Fields{
				"symbol": q.Symbol,
				"price":  q.Price.String(),
			}).Debug("tick ignored")
			continue
		}
		c.history.Add(q)
		c.ledger.ApplyPriceTick(q.Symbol, q.Price)
		applied = append(applied, q)
		if q.Time.After(last) {
			last = q.Time
		}
	}
	if len(applied) > 0 {
		c.recordEquityLocked(last)
	}
	return applied
}

func (c *Controller) stopLoopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) recordEquityLocked(at time.Time) {
	s := c.ledger.Snapshot()
	err := c.journal.RecordEquity(journal.EquitySnapshot{
		SessionID:     c.runID,
		Time:          at,
		Cash:          s.Cash,
		MarketValue:   s.MarketValue,
		Equity:        s.Equity,
		UnrealizedPnL: s.UnrealizedPnL,
		RealizedPnL:   s.RealizedPnL,
		ReturnPct:     s.TotalReturnPct,
	})
	if err != nil {
		c.log.WithError(err).Warn("journal equity")
	}
}

func (c *Controller) recordRunLocked() {
	if c.runID == "" {
		return
	}
	run := c.runSummaryLocked()
	if err := c.journal.RecordSession(run); err != nil {
		c.log.WithError(err).WithField("run_id", run.RunID).Warn("journal session")
	}
}

func (c *Controller) runSummaryLocked() journal.SessionRun {
	s := c.ledger.Snapshot()
	run := journal.SessionRun{
		RunID:          c.runID,
		Started:        c.started,
		Ended:          c.now(),
		InitialCapital: s.InitialCapital,
		FinalEquity:    s.Equity,
		NetPnL:         s.Equity.Sub(s.InitialCapital),
		ReturnPct:      s.TotalReturnPct,
	}
	trades := c.ledger.Trades()
	recs := make([]journal.TradeRecord, len(trades))
	for i, t := range trades {
		recs[i] = tradeRecord(c.runID, t)
	}
	run.Tally(recs)
	return run
}

func tradeRecord(runID string, t ledger.Trade) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:     t.ID,
		SessionID:   runID,
		Side:        string(t.Side),
		Symbol:      t.Symbol,
		Quantity:    t.Quantity,
		Price:       t.Price,
		RealizedPnL: t.RealizedPnL,
		Time:        t.Time,
	}
}

func notifyState(ls []Listener, from, to State) {
	for _, l := range ls {
		l.OnStateChange(from, to)
	}
}

func notifyTick(ls []Listener, q []market.Quote) {
	for _, l := range ls {
		l.OnTick(q)
	}
}

// view exposes session state to the gate. Only used with c.mu held.
type view struct{ c *Controller }

func (v view) Active() bool { return v.c.state == Running }

func (v view) Price(symbol string) (decimal.Decimal, bool) {
	q, err := v.c.quotes.Get(symbol)
	if err != nil {
		return decimal.Zero, false
	}
	return q.Price, true
}

func (v view) Cash() decimal.Decimal { return v.c.ledger.Cash() }

func (v view) Held(symbol string) int64 { return v.c.ledger.Held(symbol) }
