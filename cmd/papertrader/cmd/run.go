package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a local paper trading session",
	Long: `Run a session in this process against the configured price feed.

Orders given with --order are submitted, in order, once the first prices have
arrived. The session stops after --ticks price batches, after --duration,
when a replay tape runs out, or on Ctrl-C, then prints the portfolio.

Example:
  papertrader run --ticks 30 --interval 100ms --order BUY:AAPL:10 --order BUY:SPY:5`,
	RunE: runRun,
}

var (
	runTicks    int
	runDuration time.Duration
	runInterval time.Duration
	runOrders   []string
	runSeed     int64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runTicks, "ticks", "n", 20, "stop after this many price batches (0 = no limit)")
	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 0, "stop after this long (0 = no limit)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "override the configured tick interval")
	runCmd.Flags().StringArrayVarP(&runOrders, "order", "o", nil, "order as SIDE:SYMBOL:QTY, repeatable")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random walk seed (0 = configured or time based)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runInterval > 0 {
		cfg.Session.TickInterval = runInterval.String()
	}
	if runSeed != 0 {
		cfg.Feed.Seed = runSeed
	}
	if cfg.Feed.Type == config.FeedNone {
		return errors.New("run needs a price feed; set feed.type to randomwalk or replay")
	}

	orders := make([]orderArgs, 0, len(runOrders))
	for _, s := range runOrders {
		o, err := parseOrder(s)
		if err != nil {
			return err
		}
		orders = append(orders, o)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if runDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, runDuration)
		defer cancel()
	}

	var batches atomic.Int64
	first := make(chan struct{})
	enough := make(chan struct{})
	counter := session.ListenerFuncs{
		Tick: func([]market.Quote) {
			n := batches.Add(1)
			if n == 1 {
				close(first)
			}
			if runTicks > 0 && n == int64(runTicks) {
				close(enough)
			}
		},
	}

	ctrl, j, err := newSession(cfg, session.WithListener(counter))
	if err != nil {
		return err
	}
	defer j.Close()

	feedDone := ctrl.FeedDone()
	ctrl.Start(ctx)

	// a short tape may run out before this goroutine looks; orders still go
	// in whenever prices arrived
	select {
	case <-first:
	case <-feedDone:
	case <-ctx.Done():
	}
	select {
	case <-first:
		if ctx.Err() != nil {
			break
		}
		for _, o := range orders {
			t, err := ctrl.SubmitOrder(ctx, o.side, o.symbol, o.qty)
			if err != nil {
				if !risk.IsRejection(err) {
					ctrl.Close()
					return fmt.Errorf("submit order: %w", err)
				}
				fmt.Println(errorStyle.Render("REJECTED"), risk.Code(err), err)
				continue
			}
			fmt.Println(renderTrade(t))
		}
	default:
	}

	select {
	case <-enough:
	case <-feedDone:
		log.Info("price feed exhausted, stopping")
	case <-ctx.Done():
	}
	ctrl.Pause()

	fmt.Println(renderStatus(ctrl.Status()))
	fmt.Println(renderTrades(ctrl.TradesNewestFirst()))
	ctrl.Close()
	return nil
}

type orderArgs struct {
	side   ledger.Side
	symbol string
	qty    int64
}

// parseOrder reads SIDE:SYMBOL:QTY, e.g. buy:aapl:10.
func parseOrder(s string) (orderArgs, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return orderArgs{}, fmt.Errorf("order %q: want SIDE:SYMBOL:QTY", s)
	}
	side, err := ledger.ParseSide(parts[0])
	if err != nil {
		return orderArgs{}, fmt.Errorf("order %q: %w", s, err)
	}
	qty, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || qty <= 0 {
		return orderArgs{}, fmt.Errorf("order %q: quantity must be a positive integer", s)
	}
	symbol := strings.ToUpper(strings.TrimSpace(parts[1]))
	if symbol == "" {
		return orderArgs{}, fmt.Errorf("order %q: symbol is required", s)
	}
	return orderArgs{side: side, symbol: symbol, qty: qty}, nil
}
