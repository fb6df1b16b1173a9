package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/evoquant/darwin-bot/internal/genotype"
	"github.com/evoquant/darwin-bot/internal/jury"
	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// ConsoleReporter renders engine state as terminal tables.
type ConsoleReporter struct{}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintDecision prints the jury outcome for one cycle.
func (r *ConsoleReporter) PrintDecision(symbol string, report *regime.Report, result jury.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("JURY VERDICT - %s", symbol))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"⚖️ Action", result.Action.String()},
		{"🎯 Confidence", fmt.Sprintf("%.2f", result.Confidence)},
		{"🗳️ Votes", formatTally(result.VoteTally)},
		{"💬 Rationale", result.Rationale},
	})

	if result.Action != types.ActionHold {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"🛑 Stop Loss", fmt.Sprintf("%.4f", result.SuggestedSL)},
			{"🎯 Take Profit", fmt.Sprintf("%.4f", result.SuggestedTP)},
		})
	}

	if report != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"📈 Trend", string(report.Trend)},
			{"📊 Hurst", fmt.Sprintf("%.3f", report.Hurst)},
			{"🎲 Entropy", fmt.Sprintf("%.3f", report.Entropy)},
			{"🧭 Alignment", fmt.Sprintf("%+.1f", report.AlignmentScore)},
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintLeaderboard prints the ranked population with phantom performance.
func (r *ConsoleReporter) PrintLeaderboard(symbol string, members []*genotype.Genotype, scores map[string]float64, generation int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("POPULATION LEADERBOARD - %s (gen %d)", symbol, generation))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"#", "Genotype", "Family", "Dir", "Equity", "Max DD", "Streak", "Score"})
	for i, g := range members {
		streak := fmt.Sprintf("W%d", g.WinStreak)
		if g.LossStreak > 0 {
			streak = fmt.Sprintf("L%d", g.LossStreak)
		}
		t.AppendRow(table.Row{
			i + 1,
			g.Name,
			g.Family.String(),
			g.Direction.String(),
			fmt.Sprintf("$%.2f", g.PhantomEquity),
			fmt.Sprintf("%.1f%%", g.MaxDrawdown*100),
			streak,
			fmt.Sprintf("%.1f", scores[g.Name]),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMin: 22, WidthMax: 30, Align: text.AlignLeft},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

func formatTally(tally map[types.Action]int) string {
	return fmt.Sprintf("%d BUY / %d SELL / %d HOLD",
		tally[types.ActionBuy], tally[types.ActionSell], tally[types.ActionHold])
}
