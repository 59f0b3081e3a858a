package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeader = lipgloss.NewStyle().
			Bold(true)

	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleRound = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindHeader
	kindStatus
	kindDamage
	kindRound
	kindSystem
	kindError
	kindTrace
)

var errorPrefixes = []string{
	"You don't see",
	"You can't",
	"You cannot",
	"I don't understand",
	"Unknown status",
	"No item called",
	"No rule named",
}

var statusMarkers = []string{" gains ", " wears off", " loses ", " stacks ", " is refreshed", " thins ", " is used up"}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Round ") && strings.HasSuffix(line, " ends."):
		return kindRound
	case strings.HasPrefix(line, "Turn "), strings.HasPrefix(line, "Commands:"):
		return kindHeader
	case hasAnyPrefix(line, errorPrefixes):
		return kindError
	case strings.Contains(line, " damage (") || strings.HasSuffix(line, " dies."):
		return kindDamage
	case containsAny(line, statusMarkers):
		return kindStatus
	default:
		return kindNarration
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
