package session

import (
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
)

// Listener observes the session. Callbacks run after the session lock is
// released, on the goroutine that caused the event, so they may call back
// into the Controller. Close is the exception: it waits for the feed loop.
type Listener interface {
	OnTick(quotes []market.Quote)
	OnTrade(t ledger.Trade)
	OnStateChange(from, to State)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Tick  func([]market.Quote)
	Trade func(ledger.Trade)
	State func(from, to State)
}

func (f ListenerFuncs) OnTick(q []market.Quote) {
	if f.Tick != nil {
		f.Tick(q)
	}
}

func (f ListenerFuncs) OnTrade(t ledger.Trade) {
	if f.Trade != nil {
		f.Trade(t)
	}
}

func (f ListenerFuncs) OnStateChange(from, to State) {
	if f.State != nil {
		f.State(from, to)
	}
}
