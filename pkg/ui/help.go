package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# 情感词汇坐标分布图

Each word is placed by **valence** (x, 愉悦度) and **arousal** (y, 唤醒度).
Both axes run from -1 to 1; the dashed lines cross at the neutral origin.

## Filters

| Key | Action |
| --- | --- |
| c / C | next / previous category |
| l / L | next / previous intensity level |
| 0 | show everything again |

## Words

| Key | Action |
| --- | --- |
| mouse | hover a marker to inspect it |
| n / p | step through the visible words |
| / | find a word by name |
| esc | clear the highlight |
| y | copy the highlighted word's details |

## Data

| Key | Action |
| --- | --- |
| r | reload the dataset (disabled while loading) |
| ? | toggle this help |
| q | quit |

If the dataset cannot be loaded, a small built-in example is shown instead
and the error stays on screen for five seconds.
`

// helpStyle selects the glamour style. Tests use "notty" to get plain,
// deterministic output.
var helpStyle = ""

// renderHelp renders the help page as terminal markdown wrapped to width.
func renderHelp(width int) string {
	if width < 20 {
		width = 20
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if helpStyle == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(helpStyle))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n ")
}
