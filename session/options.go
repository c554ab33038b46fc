package session

import (
	"time"

	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/pkg/id"
	"github.com/sirupsen/logrus"
)

const DefaultInterval = time.Second

type Option func(*Controller)

// WithSource sets the price feed started by Start. Without one the session
// only moves on manual Tick calls.
func WithSource(src feed.Source) Option {
	return func(c *Controller) { c.source = src }
}

func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithJournal(j journal.Journal) Option {
	return func(c *Controller) {
		if j != nil {
			c.journal = j
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock stamps trades, ticks and snapshots. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithHistoryLimit(n int) Option {
	return func(c *Controller) { c.historyLimit = n }
}

func WithListener(l Listener) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, l) }
}

func WithIDs(g *id.Generator) Option {
	return func(c *Controller) { c.ids = g }
}
