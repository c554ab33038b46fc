package journal

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; the narrative headings are left empty.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** %s %d %s (%s)", t.Side, t.Quantity, t.Symbol, shortID(t.TradeID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":SESSION_ID: %s\n", t.SessionID))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", t.Side))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", t.Quantity))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", t.Price.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":REALIZED_PNL: %s\n", t.RealizedPnL.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", t.Time.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

var sessionOrg = template.Must(template.New("session").Funcs(template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
}).Parse(sessionOrgTemplate))

// FormatSessionOrg renders a session summary as an Org-mode block.
func FormatSessionOrg(r SessionRun) (string, error) {
	var buf bytes.Buffer
	if err := sessionOrg.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render session %s: %w", r.RunID, err)
	}
	return buf.String(), nil
}

const sessionOrgTemplate = `* PAPER SESSION {{.RunID}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:STARTED:     [{{.Started.Format "2006-01-02 Mon 15:04"}}]
:ENDED:       [{{.Ended.Format "2006-01-02 Mon 15:04"}}]
:START_BAL:   {{.InitialCapital.StringFixed 2}}
:END_EQUITY:  {{.FinalEquity.StringFixed 2}}
:NET_PNL:     {{.NetPnL.StringFixed 2}}
:RETURN_PCT:  {{.ReturnPct.StringFixed 2}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:END:

** Performance Summary
- Net P&L:        *{{.NetPnL.StringFixed 2}}*
- Return:         *{{.ReturnPct.StringFixed 2}}%*
- Win Rate:       *{{printf "%.2f" (mul100 .WinRate)}}%*
- Profit Factor:  *{{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}n/a{{end}}*
`
