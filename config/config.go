package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/market"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Feed types
const (
	FeedRandomWalk = "randomwalk"
	FeedReplay     = "replay"
	FeedNone       = "none"
)

// Journal types
const (
	JournalNone   = "none"
	JournalCSV    = "csv"
	JournalSQLite = "sqlite"
)

// Config represents the complete paper trading configuration
type Config struct {
	Session SessionConfig `json:"session" yaml:"session"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// SessionConfig contains session initialization parameters
type SessionConfig struct {
	InitialCapital decimal.Decimal `json:"initial_capital" yaml:"initial_capital"`
	TickInterval   string          `json:"tick_interval" yaml:"tick_interval"` // e.g. "1s", "250ms"
	HistoryLimit   int             `json:"history_limit" yaml:"history_limit"`
}

// Interval parses TickInterval.
func (s SessionConfig) Interval() (time.Duration, error) {
	if s.TickInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(s.TickInterval)
}

// FeedConfig selects where prices come from
type FeedConfig struct {
	Type       string                     `json:"type" yaml:"type"`
	Symbols    map[string]decimal.Decimal `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Volatility float64                    `json:"volatility,omitempty" yaml:"volatility,omitempty"`
	Seed       int64                      `json:"seed,omitempty" yaml:"seed,omitempty"`
	TapePath   string                     `json:"tape_path,omitempty" yaml:"tape_path,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig contains HTTP API parameters
type ServerConfig struct {
	Addr            string  `json:"addr" yaml:"addr"`
	OrdersPerSecond float64 `json:"orders_per_second" yaml:"orders_per_second"`
	OrderBurst      int     `json:"order_burst" yaml:"order_burst"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
// and validates it.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// Load reads path, or starts from Default when path is empty, then applies
// .env and PAPERTRADER_* overrides and validates the result once, so the
// environment may supply fields the file leaves out.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Session.InitialCapital.IsPositive() {
		return fmt.Errorf("session.initial_capital must be positive")
	}
	iv, err := c.Session.Interval()
	if err != nil {
		return fmt.Errorf("session.tick_interval: %w", err)
	}
	if iv < 0 {
		return fmt.Errorf("session.tick_interval must not be negative")
	}
	if c.Session.HistoryLimit < 0 {
		return fmt.Errorf("session.history_limit must not be negative")
	}

	switch c.Feed.Type {
	case FeedRandomWalk:
		if len(c.Feed.Symbols) == 0 {
			return fmt.Errorf("feed.symbols is required for randomwalk")
		}
		for sym, px := range c.Feed.Symbols {
			if !px.IsPositive() {
				return fmt.Errorf("feed.symbols.%s must be positive", sym)
			}
		}
		if c.Feed.Volatility < 0 || c.Feed.Volatility >= 1 {
			return fmt.Errorf("feed.volatility must be between 0 and 1")
		}
	case FeedReplay:
		if c.Feed.TapePath == "" {
			return fmt.Errorf("feed.tape_path required for replay type")
		}
	case FeedNone:
	default:
		return fmt.Errorf("feed.type must be 'randomwalk', 'replay' or 'none'")
	}

	switch c.Journal.Type {
	case JournalNone:
	case JournalCSV:
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case JournalSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.OrdersPerSecond < 0 {
		return fmt.Errorf("server.orders_per_second must not be negative")
	}
	if c.Server.OrdersPerSecond > 0 && c.Server.OrderBurst <= 0 {
		return fmt.Errorf("server.order_burst must be positive when orders are rate limited")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	symbols := make(map[string]decimal.Decimal, len(market.DefaultUniverse))
	for sym, px := range market.DefaultUniverse {
		symbols[sym] = px
	}
	return &Config{
		Session: SessionConfig{
			InitialCapital: decimal.NewFromInt(10000),
			TickInterval:   "1s",
			HistoryLimit:   market.DefaultHistoryLimit,
		},
		Feed: FeedConfig{
			Type:       FeedRandomWalk,
			Symbols:    symbols,
			Volatility: feed.DefaultVolatility,
		},
		Journal: JournalConfig{
			Type: JournalNone,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			OrdersPerSecond: 10,
			OrderBurst:      20,
		},
	}
}
