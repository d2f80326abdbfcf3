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

// newestFirst returns the daily buckets in reverse chronological order.
func newestFirst(days []model.DailyUsage) []model.DailyUsage {
	out := make([]model.DailyUsage, len(days))
	for i, d := range days {
		out[len(days)-1-i] = d
	}
	return out
}

var dailyColumns = []column{
	{"Date", 10, true},
	{"Day", 3, true},
	{"Input", 8, false},
	{"Output", 8, false},
	{"Cache W", 8, false},
	{"Cache R", 8, false},
	{"Cost", 9, false},
	{"Sess", 5, false},
}

func (a App) renderDailyTab(cw, h int) string {
	t := theme.Active
	days := newestFirst(a.stats.Daily)
	if len(days) == 0 {
		return components.ContentCard("Daily", lipgloss.NewStyle().Foreground(t.TextMuted).Render("No usage recorded"), cw)
	}

	cursor := a.daily
	detailH := 6
	visible := max(h-detailH-6, 3)
	start, end := cursor.window(len(days), visible)

	rows := make([][]string, 0, end-start)
	for _, d := range days[start:end] {
		rows = append(rows, []string{
			d.Key(),
			cli.FormatDayOfWeek(d.Date.Weekday()),
			cli.FormatTokens(d.Tokens.InputTokens),
			cli.FormatTokens(d.Tokens.OutputTokens),
			cli.FormatTokens(d.Tokens.CacheCreationInputTokens),
			cli.FormatTokens(d.Tokens.CacheReadInputTokens),
			cli.FormatCost(d.TotalCost),
			cli.FormatNumber(int64(d.SessionCount)),
		})
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Daily Usage (%d days)", len(days)),
		renderList(dailyColumns, rows, cursor.cursor-start, components.CardInnerWidth(cw)),
		cw,
	))
	b.WriteString("\n")

	sel := days[cursor.cursor]
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	val := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	var detail strings.Builder
	fmt.Fprintf(&detail, "%s %s   %s %s\n",
		muted.Render("Total tokens"), val.Render(cli.FormatNumber(sel.Tokens.Total())),
		muted.Render("Cost"), val.Render(cli.FormatCost(sel.TotalCost)))
	fmt.Fprintf(&detail, "%s %s", muted.Render("Models"), val.Render(cli.JoinModels(sel.Models)))
	b.WriteString(components.ContentCard(sel.Key()+" "+cli.FormatDayOfWeek(sel.Date.Weekday()), detail.String(), cw))
	return b.String()
}
