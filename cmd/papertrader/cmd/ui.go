package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/session"
	"github.com/shopspring/decimal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(16)

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func signed(d decimal.Decimal, s string) string {
	switch {
	case d.IsPositive():
		return gainStyle.Render("+" + s)
	case d.IsNegative():
		return lossStyle.Render(s)
	}
	return s
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderStatus(st session.Status) string {
	s := st.Summary
	lines := []string{
		row("State", st.State.String()),
		row("Cash", money(s.Cash)),
		row("Market value", money(s.MarketValue)),
		row("Equity", money(s.Equity)),
		row("Unrealized", signed(s.UnrealizedPnL, money(s.UnrealizedPnL))),
		row("Realized", signed(s.RealizedPnL, money(s.RealizedPnL))),
		row("Total return", signed(s.TotalReturnPct, s.TotalReturnPct.StringFixed(2)+"%")),
		row("Trades", fmt.Sprintf("%d", s.TradeCount)),
	}
	if st.RunID != "" {
		lines = append([]string{row("Run", st.RunID)}, lines...)
	}

	out := titleStyle.Render("Portfolio") + "\n" + panelStyle.Render(strings.Join(lines, "\n"))
	if len(s.Positions) > 0 {
		out += "\n" + renderPositions(s.Positions)
	}
	return out
}

func renderPositions(ps []ledger.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %8s %12s %12s %12s", "SYMBOL", "QTY", "AVG COST", "LAST", "UNREALIZED")
	for _, p := range ps {
		fmt.Fprintf(&b, "\n%-6s %8d %12s %12s %12s",
			p.Symbol, p.Quantity, p.AvgCost.StringFixed(2), p.LastPrice.StringFixed(2), p.UnrealizedPnL.StringFixed(2))
	}
	return titleStyle.Render("Positions") + "\n" + panelStyle.Render(b.String())
}

func renderTrades(ts []ledger.Trade) string {
	if len(ts) == 0 {
		return "no trades"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-4s %-6s %6s %10s %10s", "TIME", "SIDE", "SYMBOL", "QTY", "PRICE", "REALIZED")
	for _, t := range ts {
		fmt.Fprintf(&b, "\n%-20s %-4s %-6s %6d %10s %10s",
			t.Time.Format("2006-01-02 15:04:05"), t.Side, t.Symbol, t.Quantity, t.Price.StringFixed(2), t.RealizedPnL.StringFixed(2))
	}
	return titleStyle.Render("Trades (newest first)") + "\n" + panelStyle.Render(b.String())
}

func renderTrade(t ledger.Trade) string {
	return fmt.Sprintf("%s %s %d %s @ %s (id %s)",
		gainStyle.Render("FILLED"), t.Side, t.Quantity, t.Symbol, t.Price.StringFixed(2), t.ID)
}
