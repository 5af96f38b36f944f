package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme groups the styles of the viewer chrome. Marker colours come from the
// scene palette and are not part of the theme.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor

	Header    lipgloss.Style
	Title     lipgloss.Style
	MutedText lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Panel     lipgloss.Style
	Dimmed    lipgloss.Style
	Selected  lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:  lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Success: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
	}

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Label = r.NewStyle().Foreground(t.Subtext)
	t.Value = r.NewStyle().Bold(true)
	t.Error = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Notice = r.NewStyle().Foreground(ThemeFg("#FFB86C"))
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.Dimmed = r.NewStyle().Faint(true)
	t.Selected = r.NewStyle().Foreground(t.Success).Bold(true)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
