package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a paper trading session over HTTP",
	Long: `Serve one session on the configured address. The JSON API lives under
/api/v1 and /api/v1/ws streams tick, trade and state events.

Example:
  papertrader serve --addr :8080 --start`,
	RunE: runServe,
}

var (
	serveAddr  string
	serveStart bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveStart, "start", false, "start the session immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctrl, j, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer j.Close()
	defer ctrl.Close()

	h := server.NewHandler(ctrl,
		server.WithLogger(log),
		server.WithOrderLimit(cfg.Server.OrdersPerSecond, cfg.Server.OrderBurst),
		server.WithBaseContext(ctx),
	)
	if serveStart {
		ctrl.Start(ctx)
	}

	return server.ListenAndServe(ctx, cfg.Server.Addr, h)
}
