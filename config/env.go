package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Environment overrides
const (
	EnvInitialCapital = "PAPERTRADER_INITIAL_CAPITAL"
	EnvTickInterval   = "PAPERTRADER_TICK_INTERVAL"
	EnvAddr           = "PAPERTRADER_ADDR"
	EnvJournalDB      = "PAPERTRADER_JOURNAL_DB"
)

// ApplyEnv loads a .env file from the working directory when present and
// overrides fields from PAPERTRADER_* variables. Setting the journal DB
// switches the journal to SQLite.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if val := getenv(EnvInitialCapital); val != "" {
		capital, err := decimal.NewFromString(val)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvInitialCapital, err)
		}
		c.Session.InitialCapital = capital
	}
	if val := getenv(EnvTickInterval); val != "" {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("parse %s: %w", EnvTickInterval, err)
		}
		c.Session.TickInterval = val
	}
	if val := getenv(EnvAddr); val != "" {
		c.Server.Addr = val
	}
	if val := getenv(EnvJournalDB); val != "" {
		c.Journal.Type = JournalSQLite
		c.Journal.DBPath = val
	}
	return nil
}
