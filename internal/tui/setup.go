package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// SetupValues holds the answers bound to the setup form fields.
type SetupValues struct {
	DataDirs    string // comma-separated
	DefaultDays string
	Theme       string
}

// NewSetupValues seeds form answers from an existing config.
func NewSetupValues(cfg config.Config) *SetupValues {
	days := strconv.Itoa(cfg.General.DefaultDays)
	switch days {
	case "7", "30", "90":
	default:
		days = "7"
	}
	name := cfg.Appearance.Theme
	if theme.ByName(name).Name != name {
		name = theme.FlexokiDark.Name
	}
	return &SetupValues{
		DataDirs:    strings.Join(cfg.General.ClaudeDirs, ", "),
		DefaultDays: days,
		Theme:       name,
	}
}

// Apply writes the answers onto cfg and returns it.
func (v *SetupValues) Apply(cfg config.Config) config.Config {
	var dirs []string
	for _, d := range strings.Split(v.DataDirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	cfg.General.ClaudeDirs = dirs
	if n, err := strconv.Atoi(v.DefaultDays); err == nil && n > 0 {
		cfg.General.DefaultDays = n
	}
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	return cfg
}

// NewSetupForm builds the first-run form. sessionCount is shown in the
// welcome note; pass a negative count to omit it.
func NewSetupForm(sessionCount int, vals *SetupValues) *huh.Form {
	welcome := "Let's set up a few things."
	if sessionCount >= 0 {
		welcome = fmt.Sprintf("Found %d sessions. %s", sessionCount, welcome)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ccmonitor").
				Description(welcome),

			huh.NewInput().
				Title("Claude data directories").
				Description("Comma-separated; leave blank to auto-detect ~/.config/claude and ~/.claude").
				Value(&vals.DataDirs),

			huh.NewSelect[string]().
				Title("Default time range").
				Description("Used by the daily command when --days is not given").
				Options(
					huh.NewOption("7 days", "7"),
					huh.NewOption("30 days", "30"),
					huh.NewOption("90 days", "90"),
				).
				Value(&vals.DefaultDays),

			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}
