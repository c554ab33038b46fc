package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display trade journal records from a SQLite database.

Subcommands:
  trade   - Get details of a specific trade by ID
  today   - List trades executed today
  day     - List trades executed on a specific day
  session - Summarize a finished session run and its trades

Examples:
  papertrader journal trade <trade-id>
  papertrader journal today
  papertrader journal day 2024-01-15
  papertrader journal session <run-id>`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades executed today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listJournalDay(time.Now().In(time.Local).Format("2006-01-02"))
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades executed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listJournalDay(args[0])
	},
}

var journalSessionCmd = &cobra.Command{
	Use:   "session <run-id>",
	Short: "Summarize a session run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalSession,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalSessionCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", envOr("PAPERTRADER_JOURNAL_DB", "./papertrader.sqlite"), "path to SQLite journal DB")
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Println(journal.FormatTradeOrg(rec))
	return nil
}

func listJournalDay(day string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Println(journal.FormatTradesOrg(recs))
	return nil
}

func runJournalSession(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetSession(args[0])
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	out, err := journal.FormatSessionOrg(run)
	if err != nil {
		return err
	}
	fmt.Println(out)

	recs, err := j.ListTradesBySession(run.RunID)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(recs) > 0 {
		fmt.Println(journal.FormatTradesOrg(recs))
	}
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
