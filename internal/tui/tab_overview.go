package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// periodTotals are the overview card figures.
type periodTotals struct {
	today, week, month, all struct {
		tokens model.TokenUsage
		cost   float64
	}
}

func (a App) periodTotals(now time.Time) periodTotals {
	var p periodTotals
	if d, ok := a.stats.Day(now); ok {
		p.today.tokens, p.today.cost = d.Tokens, d.TotalCost
	}
	p.week.tokens, p.week.cost = a.stats.DaysSince(now.UTC().AddDate(0, 0, -7))
	if m, ok := a.stats.Month(now.UTC().Format("2006-01")); ok {
		p.month.tokens, p.month.cost = m.Tokens, m.TotalCost
	}
	p.all.tokens, p.all.cost = a.stats.TotalTokens, a.stats.TotalCost
	return p
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	now := a.now()
	p := a.periodTotals(now)

	var b strings.Builder

	cards := []components.Metric{
		{Label: "Today", Value: cli.FormatCost(p.today.cost), Delta: cli.FormatTokens(p.today.tokens.Total()) + " tokens"},
		{Label: "Last 7 days", Value: cli.FormatCost(p.week.cost), Delta: cli.FormatTokens(p.week.tokens.Total()) + " tokens"},
		{Label: "This month", Value: cli.FormatCost(p.month.cost), Delta: cli.FormatTokens(p.month.tokens.Total()) + " tokens"},
		{Label: "All time", Value: cli.FormatCost(p.all.cost), Delta: fmt.Sprintf("%s sessions", cli.FormatNumber(int64(len(a.stats.Sessions))))},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Daily cost chart over the trailing window, zero-filled.
	vals, labels := a.chartSeries(now)
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Daily Cost (%dd)", a.chartDays),
		components.BarChart(vals, labels, t.Blue, components.CardInnerWidth(cw), 8),
		cw,
	))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	blockCard := components.ContentCard("Current Block", a.renderBlockBody(now, components.CardInnerWidth(halves[0])), halves[0])
	modelCard := components.ContentCard("Top Models", a.renderTopModels(components.CardInnerWidth(halves[1])), halves[1])

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Current Block", a.renderBlockBody(now, components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Top Models", a.renderTopModels(components.CardInnerWidth(cw)), cw))
	} else {
		b.WriteString(components.CardRow([]string{blockCard, modelCard}))
	}
	return b.String()
}

// chartSeries returns one cost value per UTC day ending today.
func (a App) chartSeries(now time.Time) ([]float64, []string) {
	end := now.UTC().Truncate(24 * time.Hour)
	vals := make([]float64, a.chartDays)
	labels := make([]string, a.chartDays)
	for i := range vals {
		day := end.AddDate(0, 0, i-a.chartDays+1)
		if d, ok := a.stats.Day(day); ok {
			vals[i] = d.TotalCost
		}
		labels[i] = day.Format("Jan 2")
	}
	return vals, labels
}

func (a App) renderBlockBody(now time.Time, innerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	start := pipeline.BlockStart(now)
	block := pipeline.SessionsSince(a.stats.Sessions, start)
	rate := pipeline.BurnRate(a.stats.Sessions, now)
	elapsed := float64(now.Sub(start)) / float64(pipeline.BlockDuration)
	remaining := cli.FormatClock(start.Add(pipeline.BlockDuration).Sub(now))

	rateStyle := lipgloss.NewStyle().Foreground(t.BurnColor(rate)).Background(t.Surface).Bold(true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		label.Render("Cost"), value.Render(cli.FormatCost(block.Cost)),
		label.Render("Sessions"), value.Render(cli.FormatNumber(int64(block.Sessions))))
	fmt.Fprintf(&b, "%s %s\n\n",
		label.Render("Burn rate"), rateStyle.Render(cli.FormatCost(rate)+"/h"))
	b.WriteString(components.BlockBar(start.Local().Format("15:04"), elapsed, remaining, rate, 6, max(innerW-20, 10)))
	return b.String()
}

func (a App) renderTopModels(innerW int) string {
	t := theme.Active
	models := a.stats.Models
	if len(models) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("No usage yet")
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	limit := min(len(models), 5)
	peak := models[0].TotalCost
	nameW := max(innerW/3, 12)
	barMax := max(innerW-nameW-10, 1)

	var b strings.Builder
	for _, m := range models[:limit] {
		fmt.Fprintf(&b, "%s %s %s\n",
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(cli.ShortModel(m.Model), nameW))),
			barStyle.Render(fmt.Sprintf("%-*s", barMax, cli.RenderHorizontalBar(m.TotalCost, peak, barMax))),
			costStyle.Render(fmt.Sprintf("%8s", cli.FormatCost(m.TotalCost))))
	}
	return b.String()
}
