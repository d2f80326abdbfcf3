package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

var monthlyColumns = []column{
	{"Month", 7, true},
	{"Tokens", 8, false},
	{"Cost", 9, false},
	{"Days", 4, false},
}

func (a App) renderMonthlyTab(cw, h int) string {
	t := theme.Active
	months := make([]model.MonthlyUsage, len(a.stats.Monthly))
	for i, m := range a.stats.Monthly {
		months[len(months)-1-i] = m
	}
	if len(months) == 0 {
		return components.ContentCard("Monthly", lipgloss.NewStyle().Foreground(t.TextMuted).Render("No usage recorded"), cw)
	}

	leftW := max(cw/3, 40)
	rightW := cw - leftW

	cursor := a.monthly
	start, end := cursor.window(len(months), max(h-4, 3))
	rows := make([][]string, 0, end-start)
	for _, m := range months[start:end] {
		rows = append(rows, []string{
			m.Month,
			cli.FormatTokens(m.Tokens.Total()),
			cli.FormatCost(m.TotalCost),
			cli.FormatNumber(int64(len(m.DailyBreakdown))),
		})
	}
	leftCard := components.ContentCard("Months",
		renderList(monthlyColumns, rows, cursor.cursor-start, components.CardInnerWidth(leftW)), leftW)

	sel := months[cursor.cursor]
	rightCard := components.ContentCard(sel.Month, a.renderMonthDetail(sel, components.CardInnerWidth(rightW)), rightW)
	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderMonthDetail(m model.MonthlyUsage, innerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		label.Render("Cost"), value.Render(cli.FormatCost(m.TotalCost)),
		label.Render("Tokens"), value.Render(cli.FormatNumber(m.Tokens.Total())))
	fmt.Fprintf(&b, "%s %s\n\n", label.Render("Models"), value.Render(truncStr(cli.JoinModels(m.Models), innerW-7)))

	vals := make([]float64, len(m.DailyBreakdown))
	labels := make([]string, len(m.DailyBreakdown))
	for i, d := range m.DailyBreakdown {
		vals[i] = d.TotalCost
		labels[i] = d.Date.Format("Jan 2")
	}
	b.WriteString(components.BarChart(vals, labels, t.Accent, innerW, 8))
	return b.String()
}
