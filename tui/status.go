package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/statuscore/engine/state"
)

var titleCaser = cases.Title(language.English)

// displayName derives a human-readable name from an id.
// "tundra" -> "Tundra", "acid_rain" -> "Acid Rain".
func displayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// envSummary joins the non-empty environment parts for the status bar.
func (m Model) envSummary() string {
	env := m.engine.World.Env
	var parts []string
	for _, v := range []string{env.Biome, env.Weather, env.TimeOfDay} {
		if v != "" {
			parts = append(parts, displayName(v))
		}
	}
	return strings.Join(parts, ", ")
}

// renderStatusBar produces a full-width inverted status line showing the
// player's hp and statuses, the environment and the turn.
func (m Model) renderStatusBar() string {
	e := m.engine
	turn := e.World.Turn

	left := " No player"
	if p := e.Entity(state.PlayerID); p != nil {
		left = fmt.Sprintf(" %s %d/%d hp", e.DisplayName(state.PlayerID), p.HP, p.HPMax)
		if !p.Alive {
			left += " (dead)"
		}
	}

	right := fmt.Sprintf("T:%d ", turn)
	if env := m.envSummary(); env != "" {
		right = fmt.Sprintf("%s | T:%d ", env, turn)
	}

	// Show status names if they fit, otherwise just the count.
	if views := e.GetStatusList(state.PlayerID); len(views) > 0 {
		names := make([]string, 0, len(views))
		for _, v := range views {
			names = append(names, fmt.Sprintf("%s(%d)", v.Type, v.Turns))
		}
		candidate := left + " | " + strings.Join(names, " ")
		if lipgloss.Width(candidate)+lipgloss.Width(right)+2 < m.width {
			left = candidate
		} else {
			left = fmt.Sprintf("%s | %d statuses", left, len(views))
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
