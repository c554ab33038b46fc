package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/client"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/session"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order <buy|sell> <symbol> <qty>",
	Short: "Place a market order on a running server",
	Example: `  papertrader order buy AAPL 10
  papertrader order sell AAPL 5 --server http://localhost:9090`,
	Args: cobra.ExactArgs(3),
	RunE: runOrder,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the portfolio of a running server",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var tickCmd = &cobra.Command{
	Use:   "tick <symbol> <price>",
	Short: "Push a manual price to a running server",
	Args:  cobra.ExactArgs(2),
	RunE:  runTick,
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators <symbol>",
	Short: "Show moving averages of a symbol's recent prices",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndicators,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start, pause or reset the session on a running server",
}

var (
	statusTrades     bool
	indicatorsPeriod int
)

func init() {
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(indicatorsCmd)

	indicatorsCmd.Flags().IntVarP(&indicatorsPeriod, "period", "p", 10, "moving average window")

	statusCmd.Flags().BoolVarP(&statusTrades, "trades", "t", false, "also list trades, newest first")

	for _, action := range []string{"start", "pause", "reset"} {
		sessionCmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: strings.ToUpper(action[:1]) + action[1:] + " the session",
			Args:  cobra.NoArgs,
			RunE:  runLifecycle(action),
		})
	}
}

func remote() (*client.Client, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	return client.New(serverURL), ctx, cancel
}

func runOrder(cmd *cobra.Command, args []string) error {
	side, err := ledger.ParseSide(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}

	c, ctx, cancel := remote()
	defer cancel()

	t, err := c.SubmitOrder(ctx, side, strings.ToUpper(args[1]), qty)
	var rej *client.RejectedError
	if errors.As(err, &rej) {
		fmt.Println(errorStyle.Render("REJECTED"), rej.Code, rej.Msg)
		return err
	}
	if err != nil {
		return fmt.Errorf("submit order: %w", err)
	}
	fmt.Println(renderTrade(t))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := remote()
	defer cancel()

	st, err := c.Status(ctx)
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	fmt.Println(renderStatus(st))

	if statusTrades {
		trades, err := c.Trades(ctx)
		if err != nil {
			return fmt.Errorf("get trades: %w", err)
		}
		fmt.Println(renderTrades(trades))
	}
	return nil
}

func runTick(cmd *cobra.Command, args []string) error {
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	c, ctx, cancel := remote()
	defer cancel()

	ok, err := c.Tick(ctx, strings.ToUpper(args[0]), price)
	if err != nil {
		return fmt.Errorf("post tick: %w", err)
	}
	if !ok {
		fmt.Println("ignored: session is not running")
		return nil
	}
	fmt.Printf("%s %s\n", strings.ToUpper(args[0]), price.StringFixed(2))
	return nil
}

func runIndicators(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := remote()
	defer cancel()

	res, err := c.Indicators(ctx, strings.ToUpper(args[0]), indicatorsPeriod)
	if err != nil {
		return fmt.Errorf("get indicators: %w", err)
	}
	fmt.Printf("%s over %d points\n", res.Symbol, res.Points)
	for _, r := range res.Readings {
		if !r.Ready {
			fmt.Printf("  %-8s warming up\n", r.Name)
			continue
		}
		fmt.Printf("  %-8s %s\n", r.Name, r.Value.StringFixed(2))
	}
	return nil
}

func runLifecycle(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := remote()
		defer cancel()

		do := map[string]func(context.Context) (session.Status, error){
			"start": c.Start,
			"pause": c.Pause,
			"reset": c.Reset,
		}[action]

		st, err := do(ctx)
		if err != nil {
			return fmt.Errorf("%s session: %w", action, err)
		}
		fmt.Printf("session %s\n", st.State)
		return nil
	}
}
