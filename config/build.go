package config

import (
	"fmt"

	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
)

// Open builds the configured journal. The caller closes it.
func (c JournalConfig) Open() (journal.Journal, error) {
	switch c.Type {
	case JournalCSV:
		return journal.NewCSV(c.TradesFile, c.EquityFile)
	case JournalSQLite:
		return journal.NewSQLite(c.DBPath)
	case JournalNone, "":
		return journal.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", c.Type)
}

// Source builds the configured price feed, or nil for "none".
func (c FeedConfig) Source() (feed.Source, error) {
	switch c.Type {
	case FeedRandomWalk:
		vol := c.Volatility
		if vol == 0 {
			vol = feed.DefaultVolatility
		}
		return feed.NewRandomWalk(c.Symbols, vol, c.Seed), nil
	case FeedReplay:
		s, err := feed.OpenCSV(c.TapePath)
		if err != nil {
			return nil, fmt.Errorf("open tape: %w", err)
		}
		return s, nil
	case FeedNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown feed type %q", c.Type)
}
