package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar with key hints on the left
// and load info on the right.
func RenderStatusBar(width int, info string, refreshing bool) string {
	t := theme.Active

	hint := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	right := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := key.Render(" ?") + hint.Render(" help  ") +
		key.Render("r") + hint.Render(" reload  ") +
		key.Render("q") + hint.Render(" quit")

	if refreshing {
		info = "reloading… " + info
	}
	r := right.Render(info + " ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(r))
	fill := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", padding))
	return left + fill + r
}
