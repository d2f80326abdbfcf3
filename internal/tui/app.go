// Package tui provides the interactive Bubble Tea dashboard for ccmonitor.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// Loader produces fresh stats, reporting per-file parse progress.
type Loader func(ctx context.Context, progress pipeline.ProgressFunc) (model.UsageStats, error)

// Options configures a dashboard.
type Options struct {
	Loader  Loader
	Pricing *config.PricingTable

	// ChartDays is the span of the overview cost chart.
	ChartDays int

	// NeedSetup shows the first-run form once data has loaded.
	NeedSetup bool
	Config    config.Config
}

// dataLoadedMsg is sent when the loader finishes.
type dataLoadedMsg struct {
	stats    model.UsageStats
	loadTime time.Duration
	err      error
}

// progressMsg reports file parsing progress.
type progressMsg struct {
	current int
	total   int
}

const (
	tabOverview = iota
	tabDaily
	tabSessions
	tabMonthly
	tabModels
)

// App is the root Bubble Tea model.
type App struct {
	loader    Loader
	pricing   *config.PricingTable
	chartDays int
	now       func() time.Time

	// Data
	stats    model.UsageStats
	loaded   bool
	loading  bool
	loadErr  error
	loadTime time.Duration
	loadedAt time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	daily    listState
	monthly  listState
	sessions sessionsState

	// First-run setup (huh form)
	cfg       config.Config
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	// ctx is cancelled on quit so an in-flight load stops parsing.
	ctx    context.Context
	cancel context.CancelFunc
}

// listState is a cursor over a scrolling list.
type listState struct {
	cursor int
	offset int
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	pricing := opts.Pricing
	if pricing == nil {
		pricing = config.DefaultPricingTable()
	}
	ctx, cancel := context.WithCancel(context.Background())

	chartDays := opts.ChartDays
	if chartDays <= 0 {
		chartDays = 30
	}

	return App{
		loader:    opts.Loader,
		pricing:   pricing,
		chartDays: chartDays,
		now:       time.Now,
		cfg:       opts.Config,
		needSetup: opts.NeedSetup,
		spinner:   sp,
		loading:   true,
		loadSub:   make(chan tea.Msg, 1),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.ctx, a.loader, a.loadSub),
		a.spinner.Tick,
	)
}

// setStats installs freshly loaded stats and clamps every cursor.
func (a *App) setStats(stats model.UsageStats) {
	a.stats = stats
	a.daily.clamp(len(stats.Daily))
	a.monthly.clamp(len(stats.Monthly))
	a.sessions.list.clamp(len(a.visibleSessions()))
}

func (l *listState) clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.offset > l.cursor {
		l.offset = l.cursor
	}
}

func (l *listState) move(delta, n int) {
	l.cursor += delta
	l.clamp(n)
}

// window returns the [start, end) slice of n rows to show in visible lines
// keeping the cursor on screen.
func (l *listState) window(n, visible int) (int, int) {
	visible = max(visible, 1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
	return l.offset, min(l.offset+visible, n)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case progressMsg:
		a.progress = msg.current
		a.progressMax = msg.total
		return a, waitForLoadMsg(a.loadSub)

	case dataLoadedMsg:
		a.loading = false
		a.loadTime = msg.loadTime
		a.loadErr = msg.err
		if msg.err != nil {
			return a, nil
		}
		a.loaded = true
		a.loadedAt = a.now()
		a.setStats(msg.stats)

		if a.needSetup && a.setupForm == nil {
			a.setupVals = NewSetupValues(a.cfg)
			a.setupForm = NewSetupForm(len(a.stats.Sessions), a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a.quit()
	}

	if !a.loaded {
		switch key {
		case "q":
			return a.quit()
		case "r":
			if a.loadErr != nil && !a.loading {
				return a.reload()
			}
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if a.activeTab == tabSessions && a.sessions.searching {
		return a.updateSessionsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a.quit()
	case "r":
		if !a.loading {
			return a.reload()
		}
		return a, nil
	case "tab", "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab", "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "ctrl+d", "pgdown":
		a.moveCursor(a.halfPage())
		return a, nil
	case "ctrl+u", "pgup":
		a.moveCursor(-a.halfPage())
		return a, nil
	case "g", "home":
		a.moveCursor(-1 << 30)
		return a, nil
	case "G", "end":
		a.moveCursor(1 << 30)
		return a, nil
	}

	if a.activeTab == tabSessions {
		switch key {
		case "/":
			a.sessions.searching = true
			a.sessions.searchInput = newSearchInput(a.sessions.query)
			return a, a.sessions.searchInput.Focus()
		case "esc":
			if a.sessions.query != "" {
				a.sessions.query = ""
				a.sessions.list = listState{}
			}
			return a, nil
		}
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.setupForm != nil {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabDaily:
		a.daily.move(delta, len(a.stats.Daily))
	case tabMonthly:
		a.monthly.move(delta, len(a.stats.Monthly))
	case tabSessions:
		a.sessions.list.move(delta, len(a.visibleSessions()))
	}
}

func (a App) halfPage() int {
	return max((a.height-6)/2, 1)
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	return a, tea.Quit
}

func (a App) reload() (tea.Model, tea.Cmd) {
	a.loading = true
	a.loadErr = nil
	a.progress, a.progressMax = 0, 0
	return a, tea.Batch(loadDataCmd(a.ctx, a.loader, a.loadSub), a.spinner.Tick)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.cfg = a.setupVals.Apply(a.cfg)
		_ = config.Save(a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		if a.loadErr != nil {
			return a.viewError()
		}
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  ccmonitor needs at least %d columns.\n",
		a.width, minTerminalWidth)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}

func overlayCard() lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface)
}

func (a App) viewLoading() string {
	t := theme.Active

	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	count := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ ccmonitor"))
	b.WriteString(sub.Render(" · Claude Code usage"))
	b.WriteString("\n\n")

	b.WriteString(a.spinner.View())
	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		b.WriteString(sub.Render(" Parsing log files\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(count.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(sub.Render(" / "))
		b.WriteString(count.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(sub.Render(" Discovering log files..."))
	}

	card := overlayCard().Padding(2, 4).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewError() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(min(70, a.width-10))
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := title.Render("Could not load usage data") + "\n\n" +
		body.Render(a.loadErr.Error()) + "\n\n" +
		hint.Render("r retry · q quit")

	card := overlayCard().Padding(1, 3).Render(content)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	groups := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o d s m l", "Jump to tab"},
			{"tab ←/→", "Previous / next tab"},
			{"j k", "Move selection"},
			{"^d ^u", "Half-page"},
			{"g G", "First / last"},
		}},
		{"Actions", [][2]string{
			{"/", "Search sessions"},
			{"esc", "Clear search"},
			{"r", "Reload logs"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.Render(g.name))
		b.WriteString("\n")
		for _, kv := range g.bindings {
			b.WriteString(keyStyle.Render(fmt.Sprintf("  %-10s", kv[0])))
			b.WriteString(desc.Render("  " + kv[1]))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("Press any key to close"))

	card := overlayCard().Padding(1, 3).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	info := fmt.Sprintf("%d sessions · loaded in %.1fs at %s",
		len(a.stats.Sessions), a.loadTime.Seconds(), a.loadedAt.Local().Format("15:04"))
	if a.loadErr != nil {
		info = "reload failed: " + truncStr(a.loadErr.Error(), 60)
	}
	statusBar := components.RenderStatusBar(w, info, a.loading)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabDaily:
		content = a.renderDailyTab(cw, contentH)
	case tabSessions:
		content = a.renderSessionsTab(cw, contentH)
	case tabMonthly:
		content = a.renderMonthlyTab(cw, contentH)
	case tabModels:
		content = a.renderModelsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd runs the loader in a background goroutine. It streams
// progressMsg updates and a final dataLoadedMsg through sub.
func loadDataCmd(ctx context.Context, loader Loader, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			if loader == nil {
				sub <- dataLoadedMsg{err: fmt.Errorf("no loader configured")}
				return
			}

			// Non-blocking send so workers aren't stalled; a dropped
			// update is superseded by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- progressMsg{current: current, total: total}:
				default:
				}
			}

			stats, err := loader(ctx, progressFn)
			sub <- dataLoadedMsg{stats: stats, loadTime: time.Since(start), err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
