package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// sessionsState holds the sessions tab state.
type sessionsState struct {
	list        listState
	searching   bool
	searchInput textinput.Model
	query       string
}

func newSearchInput(initial string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "project, session id or model"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 40
	ti.SetValue(initial)
	return ti
}

// visibleSessions applies the search query to the session list.
func (a App) visibleSessions() []model.SessionUsage {
	return filterSessionsBySearch(a.stats.Sessions, a.sessions.query)
}

// filterSessionsBySearch keeps sessions whose id, project or any model
// contains query, case-insensitively.
func filterSessionsBySearch(sessions []model.SessionUsage, query string) []model.SessionUsage {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return sessions
	}
	var out []model.SessionUsage
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.SessionID), q) ||
			strings.Contains(strings.ToLower(s.ProjectPath), q) {
			out = append(out, s)
			continue
		}
		for _, m := range s.Models {
			if strings.Contains(strings.ToLower(m), q) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// updateSessionsSearch handles key events while in search mode.
func (a App) updateSessionsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.sessions.query = strings.TrimSpace(a.sessions.searchInput.Value())
		a.sessions.searching = false
		a.sessions.list = listState{}
		return a, nil
	case "esc":
		a.sessions.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.sessions.searchInput, cmd = a.sessions.searchInput.Update(msg)
	return a, cmd
}

var sessionColumns = []column{
	{"Last active", 12, true},
	{"Project", 18, true},
	{"Cost", 8, false},
}

func (a App) renderSessionsTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	sessions := a.visibleSessions()

	var top string
	switch {
	case a.sessions.searching:
		top = a.sessions.searchInput.View() + "\n"
	case a.sessions.query != "":
		top = muted.Render(fmt.Sprintf("filter: %q (%d matches, esc to clear)", a.sessions.query, len(sessions))) + "\n"
	}

	if len(sessions) == 0 {
		return top + components.ContentCard("Sessions", muted.Render("No sessions found"), cw)
	}

	leftW := max(cw*2/5, 44)
	rightW := cw - leftW

	cursor := a.sessions.list
	visible := max(h-lipgloss.Height(top)-4, 3)
	start, end := cursor.window(len(sessions), visible)

	now := a.now()
	rows := make([][]string, 0, end-start)
	for _, s := range sessions[start:end] {
		rows = append(rows, []string{
			cli.FormatAgo(s.LastActivity, now),
			cli.ShortProject(s.ProjectPath),
			cli.FormatCost(s.TotalCost),
		})
	}
	leftBody := renderList(sessionColumns, rows, cursor.cursor-start, components.CardInnerWidth(leftW))
	leftCard := components.ContentCard(fmt.Sprintf("Sessions (%d)", len(sessions)), leftBody, leftW)

	sel := sessions[cursor.cursor]
	rightCard := components.ContentCard("Session "+cli.ShortID(sel.SessionID), a.renderSessionDetail(sel, components.CardInnerWidth(rightW)), rightW)

	return top + components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderSessionDetail(s model.SessionUsage, innerW int) string {
	t := theme.Active
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	green := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	kv := func(b *strings.Builder, k, v string) {
		fmt.Fprintf(b, "%s %s\n", label.Render(fmt.Sprintf("%-10s", k)), value.Render(truncStr(v, innerW-11)))
	}

	var b strings.Builder
	kv(&b, "Session", s.SessionID)
	kv(&b, "Project", s.ProjectPath)
	kv(&b, "Started", s.FirstActivity.Local().Format("2006-01-02 15:04"))
	kv(&b, "Last", s.LastActivity.Local().Format("2006-01-02 15:04"))
	kv(&b, "Duration", cli.FormatDuration(s.LastActivity.Sub(s.FirstActivity)))
	kv(&b, "Responses", cli.FormatNumber(int64(s.Records)))
	kv(&b, "Models", cli.JoinModels(s.Models))

	b.WriteString("\n")
	b.WriteString(header.Render("TOKENS"))
	b.WriteString("\n")
	for _, r := range []struct {
		name string
		n    int64
	}{
		{"Input", s.Tokens.InputTokens},
		{"Output", s.Tokens.OutputTokens},
		{"Cache write", s.Tokens.CacheCreationInputTokens},
		{"Cache read", s.Tokens.CacheReadInputTokens},
	} {
		fmt.Fprintf(&b, "%s %s\n", label.Render(fmt.Sprintf("%-12s", r.name)), value.Render(fmt.Sprintf("%14s", cli.FormatNumber(r.n))))
	}
	fmt.Fprintf(&b, "%s %s\n", label.Render(fmt.Sprintf("%-12s", "Cost")), green.Render(fmt.Sprintf("%14s", cli.FormatCost(s.TotalCost))))

	if s.ChainID >= 0 && s.ChainID < len(a.stats.Chains) {
		chain := a.stats.Chains[s.ChainID]
		b.WriteString("\n")
		b.WriteString(header.Render(fmt.Sprintf("RESUMED CHAIN (%d sessions)", len(chain))))
		b.WriteString("\n")
		for _, id := range chain {
			marker := "  "
			if id == s.SessionID {
				marker = "▸ "
			}
			b.WriteString(value.Render(marker + cli.ShortID(id)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(label.Render("[j/k] navigate  [/] search"))
	return b.String()
}
