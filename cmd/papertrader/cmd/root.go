package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A paper trading simulator for learning how portfolios move",
	Long: `Papertrader simulates a brokerage account against a synthetic price feed.

It provides tools for:
  - Running a local session with a random walk or replayed price tape
  - Serving a session over a JSON API with a websocket event stream
  - Placing orders and inspecting a running server
  - Querying the SQLite trade journal

Orders fill at the last quote. Buys need cash, sells need shares; nothing is
shorted or margined.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

var (
	cfgFile   string
	logLevel  string
	logJSON   bool
	serverURL string

	log = logrus.New()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("PAPERTRADER_URL", "http://localhost:8080"), "papertrader server URL for remote commands")
}

func setupLogger() error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newSession builds a controller, its feed and its journal from cfg. The
// caller closes the controller before the journal.
func newSession(cfg *config.Config, opts ...session.Option) (*session.Controller, journal.Journal, error) {
	interval, err := cfg.Session.Interval()
	if err != nil {
		return nil, nil, fmt.Errorf("tick interval: %w", err)
	}
	src, err := cfg.Feed.Source()
	if err != nil {
		return nil, nil, fmt.Errorf("create feed: %w", err)
	}
	j, err := cfg.Journal.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("create journal: %w", err)
	}

	base := []session.Option{
		session.WithInterval(interval),
		session.WithJournal(j),
		session.WithLogger(log),
		session.WithHistoryLimit(cfg.Session.HistoryLimit),
	}
	if src != nil {
		base = append(base, session.WithSource(src))
	}
	ctrl := session.New(cfg.Session.InitialCapital, append(base, opts...)...)
	return ctrl, j, nil
}
