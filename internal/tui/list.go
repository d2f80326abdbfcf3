package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// column describes one fixed-width list column.
type column struct {
	title string
	width int
	left  bool
}

// renderList renders a header plus rows with the selected row highlighted.
// selected < 0 highlights nothing. Lines are clipped to width.
func renderList(cols []column, rows [][]string, selected, width int) string {
	t := theme.Active
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}

	var b strings.Builder
	b.WriteString(header.Render(truncStr(formatRow(cols, titles), width)))
	for i, r := range rows {
		b.WriteString("\n")
		line := truncStr(formatRow(cols, r), width)
		if i == selected {
			b.WriteString(sel.Render(line + strings.Repeat(" ", max(0, width-lipgloss.Width(line)))))
		} else {
			b.WriteString(row.Render(line))
		}
	}
	return b.String()
}

func formatRow(cols []column, cells []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := ""
		if i < len(cells) {
			cell = truncStr(cells[i], c.width)
		}
		gap := strings.Repeat(" ", max(0, c.width-lipgloss.Width(cell)))
		if c.left {
			parts[i] = cell + gap
		} else {
			parts[i] = gap + cell
		}
	}
	return strings.Join(parts, " ")
}
