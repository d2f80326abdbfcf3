package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

var modelColumns = []column{
	{"Model", 22, true},
	{"Responses", 9, false},
	{"Tokens", 8, false},
	{"Input", 8, false},
	{"Output", 8, false},
	{"Cache W", 8, false},
	{"Cache R", 8, false},
	{"Cost", 9, false},
	{"Share", 6, false},
}

func (a App) renderModelsTab(cw int) string {
	t := theme.Active
	if len(a.stats.Models) == 0 {
		return components.ContentCard("Models", lipgloss.NewStyle().Foreground(t.TextMuted).Render("No usage recorded"), cw)
	}

	totals, breakdown := pipeline.CostBreakdown(a.stats.Models, a.pricing)
	records := make(map[string]int, len(a.stats.Models))
	tokens := make(map[string]int64, len(a.stats.Models))
	cost := make(map[string]float64, len(a.stats.Models))
	for _, m := range a.stats.Models {
		records[m.Model] = m.Records
		tokens[m.Model] = m.Tokens.Total()
		cost[m.Model] = m.TotalCost
	}

	rows := make([][]string, 0, len(breakdown))
	for _, mb := range breakdown {
		share := 0.0
		if a.stats.TotalCost > 0 {
			share = cost[mb.Model] / a.stats.TotalCost
		}
		name := mb.Model
		if !mb.Priced {
			name += " (unpriced)"
		}
		rows = append(rows, []string{
			name,
			cli.FormatNumber(int64(records[mb.Model])),
			cli.FormatTokens(tokens[mb.Model]),
			cli.FormatCost(mb.InputCost),
			cli.FormatCost(mb.OutputCost),
			cli.FormatCost(mb.CacheWriteCost),
			cli.FormatCost(mb.CacheReadCost),
			cli.FormatCost(cost[mb.Model]),
			cli.FormatPercent(share),
		})
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Models",
		renderList(modelColumns, rows, -1, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	green := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	var summary strings.Builder
	fmt.Fprintf(&summary, "%s %s  %s %s  %s %s  %s %s\n",
		label.Render("Input"), value.Render(cli.FormatCost(totals.InputCost)),
		label.Render("Output"), value.Render(cli.FormatCost(totals.OutputCost)),
		label.Render("Cache write"), value.Render(cli.FormatCost(totals.CacheWriteCost)),
		label.Render("Cache read"), value.Render(cli.FormatCost(totals.CacheReadCost)))
	fmt.Fprintf(&summary, "%s %s  %s %s",
		label.Render("Total at list price"), value.Render(cli.FormatCost(totals.TotalCost)),
		label.Render("Saved by cache reads"), green.Render(cli.FormatCost(totals.CacheSavings)))
	b.WriteString(components.ContentCard("Cost by token type", summary.String(), cw))
	return b.String()
}
