package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}).
		Render(strings.Repeat("─", width))
}

// RenderLegend renders "● category" entries in palette colours, wrapping to
// width. Entries are separated by two spaces.
func RenderLegend(entries []scene.LegendEntry, width int) string {
	if len(entries) == 0 {
		return ""
	}
	var (
		lines []string
		line  strings.Builder
		used  int
	)
	for _, e := range entries {
		plain := "● " + e.Category
		w := runewidth.StringWidth(plain)
		if used > 0 && width > 0 && used+2+w > width {
			lines = append(lines, line.String())
			line.Reset()
			used = 0
		}
		if used > 0 {
			line.WriteString("  ")
			used += 2
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("●")
		line.WriteString(dot + " " + e.Category)
		used += w
	}
	if used > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// truncate cuts s to at most width display cells, adding an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// clip cuts styled text to width cells without breaking escape sequences.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
