package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.True(t, cfg.Session.InitialCapital.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, "1s", cfg.Session.TickInterval)
	assert.Equal(t, 50, cfg.Session.HistoryLimit)
	assert.Len(t, cfg.Feed.Symbols, 5)
	assert.True(t, cfg.Feed.Symbols["AAPL"].Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, 0.02, cfg.Feed.Volatility)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"zero capital", func(c *Config) { c.Session.InitialCapital = decimal.Zero }, "session.initial_capital must be positive"},
		{"bad interval", func(c *Config) { c.Session.TickInterval = "soon" }, "session.tick_interval"},
		{"negative history", func(c *Config) { c.Session.HistoryLimit = -1 }, "session.history_limit"},
		{"unknown feed", func(c *Config) { c.Feed.Type = "bloomberg" }, "feed.type must be"},
		{"no symbols", func(c *Config) { c.Feed.Symbols = nil }, "feed.symbols is required"},
		{"negative start price", func(c *Config) { c.Feed.Symbols["AAPL"] = decimal.NewFromInt(-1) }, "feed.symbols.AAPL must be positive"},
		{"volatility too high", func(c *Config) { c.Feed.Volatility = 1.5 }, "feed.volatility must be between 0 and 1"},
		{"replay without tape", func(c *Config) { c.Feed.Type = FeedReplay }, "feed.tape_path required"},
		{"manual feed", func(c *Config) { c.Feed = FeedConfig{Type: FeedNone} }, ""},
		{"unknown journal", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type must be"},
		{"csv without files", func(c *Config) { c.Journal.Type = JournalCSV }, "journal trades_file and equity_file required"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = JournalSQLite }, "journal db_path required"},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"limit without burst", func(c *Config) { c.Server.OrderBurst = 0 }, "server.order_burst"},
		{"unlimited orders", func(c *Config) { c.Server.OrdersPerSecond, c.Server.OrderBurst = 0, 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Session.InitialCapital = decimal.RequireFromString("25000.50")
			cfg.Feed.Seed = 99
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.True(t, cfg.Session.InitialCapital.Equal(loaded.Session.InitialCapital))
			assert.Equal(t, cfg.Session.TickInterval, loaded.Session.TickInterval)
			assert.Equal(t, cfg.Feed.Seed, loaded.Feed.Seed)
			require.Len(t, loaded.Feed.Symbols, len(cfg.Feed.Symbols))
			for sym, px := range cfg.Feed.Symbols {
				assert.True(t, px.Equal(loaded.Feed.Symbols[sym]), sym)
			}
			assert.Equal(t, cfg.Server, loaded.Server)
		})
	}
}

func TestLoadHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papertrader.yaml")
	doc := `session:
  initial_capital: 5000
  tick_interval: 250ms
feed:
  type: randomwalk
  symbols:
    AAPL: 150.25
  seed: 7
journal:
  type: sqlite
  db_path: ./pt.db
server:
  addr: 127.0.0.1:9090
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Session.InitialCapital.Equal(decimal.NewFromInt(5000)))
	iv, err := cfg.Session.Interval()
	require.NoError(t, err)
	assert.Equal(t, "250ms", iv.String())
	assert.True(t, cfg.Feed.Symbols["AAPL"].Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, JournalSQLite, cfg.Journal.Type)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session: [unclosed"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvInitialCapital: "20000",
		EnvTickInterval:   "500ms",
		EnvAddr:           ":9999",
		EnvJournalDB:      "/tmp/pt.db",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	assert.True(t, cfg.Session.InitialCapital.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, "500ms", cfg.Session.TickInterval)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, JournalSQLite, cfg.Journal.Type)
	assert.Equal(t, "/tmp/pt.db", cfg.Journal.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	for _, key := range []string{EnvInitialCapital, EnvTickInterval} {
		cfg := Default()
		err := cfg.applyEnv(func(k string) string {
			if k == key {
				return "lots"
			}
			return ""
		})
		assert.ErrorContains(t, err, key)
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvInitialCapital, "777")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Session.InitialCapital.Equal(decimal.NewFromInt(777)))
}

func TestLoadEnvironmentFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "papertrader.yaml")
	doc := `session:
  tick_interval: 250ms
feed:
  type: none
journal:
  type: none
server:
  addr: 127.0.0.1:9090
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadFromFile(path)
	require.ErrorContains(t, err, "session.initial_capital")

	t.Setenv(EnvInitialCapital, "2500")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Session.InitialCapital.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
}

func TestBuildJournalAndFeed(t *testing.T) {
	dir := t.TempDir()

	j, err := JournalConfig{Type: JournalNone}.Open()
	require.NoError(t, err)
	assert.IsType(t, journal.Nop{}, j)

	j, err = JournalConfig{Type: JournalSQLite, DBPath: filepath.Join(dir, "pt.db")}.Open()
	require.NoError(t, err)
	assert.IsType(t, &journal.SQLite{}, j)
	require.NoError(t, j.Close())

	j, err = JournalConfig{
		Type:       JournalCSV,
		TradesFile: filepath.Join(dir, "trades.csv"),
		EquityFile: filepath.Join(dir, "equity.csv"),
	}.Open()
	require.NoError(t, err)
	require.NoError(t, j.Close())

	src, err := Default().Feed.Source()
	require.NoError(t, err)
	assert.IsType(t, &feed.RandomWalk{}, src)

	src, err = FeedConfig{Type: FeedNone}.Source()
	require.NoError(t, err)
	assert.Nil(t, src)

	_, err = FeedConfig{Type: FeedReplay, TapePath: filepath.Join(dir, "missing.csv")}.Source()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
