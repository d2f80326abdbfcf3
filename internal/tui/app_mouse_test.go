package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := components.TabVisualWidth(components.Tabs[i], i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("x past the bar = %d, want -1", got)
		}
	}
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := loadedApp(t, fixtureStats())
	x := components.TabVisualWidth(components.Tabs[0], true) + 1 + 1 // inside tab 1

	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabDaily {
		t.Errorf("activeTab = %d, want %d", got, tabDaily)
	}
}

func TestMouseWheelMovesCursor(t *testing.T) {
	a := loadedApp(t, fixtureStats())
	a.activeTab = tabDaily

	m, _ := a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.(App).daily.cursor; got != 1 {
		t.Errorf("cursor after wheel down = %d, want 1", got)
	}
}
