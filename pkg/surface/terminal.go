package surface

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// Marker glyphs in the terminal grid.
const (
	GlyphMarker      = '●'
	GlyphHighlighted = '◉'
	GlyphNoFill      = '○'
)

type cell struct {
	r     rune
	color string
	bold  bool
	// cont marks the right half of a wide rune.
	cont bool
	set  bool
}

// Grid maps layout coordinates onto a cols x rows character grid.
type Grid struct {
	Layout     scene.Layout
	Cols, Rows int
}

// Cell returns the grid cell containing the layout point (x, y).
func (g Grid) Cell(x, y float64) (col, row int) {
	if g.Cols <= 1 || g.Rows <= 1 {
		return 0, 0
	}
	col = int(math.Round(x / g.Layout.Width * float64(g.Cols-1)))
	row = int(math.Round(y / g.Layout.Height * float64(g.Rows-1)))
	return col, row
}

// Point returns the layout coordinate at the centre of a grid cell.
func (g Grid) Point(col, row int) (x, y float64) {
	if g.Cols <= 1 || g.Rows <= 1 {
		return 0, 0
	}
	x = float64(col) / float64(g.Cols-1) * g.Layout.Width
	y = float64(row) / float64(g.Rows-1) * g.Layout.Height
	return x, y
}

// CellSize is the layout distance covered by one cell in each direction.
func (g Grid) CellSize() (w, h float64) {
	if g.Cols <= 1 || g.Rows <= 1 {
		return g.Layout.Width, g.Layout.Height
	}
	return g.Layout.Width / float64(g.Cols-1), g.Layout.Height / float64(g.Rows-1)
}

// RenderTerminal draws c into a character grid and returns it as rows of
// styled text joined by newlines.
func RenderTerminal(c *Canvas, g Grid) string {
	if g.Cols <= 0 || g.Rows <= 0 {
		return ""
	}
	cells := make([][]cell, g.Rows)
	for i := range cells {
		cells[i] = make([]cell, g.Cols)
	}

	for _, ln := range c.Lines() {
		plotLine(cells, g, ln)
	}
	for _, t := range c.Texts() {
		if t.Rotate != 0 {
			continue
		}
		plotText(cells, g, t)
	}
	for _, m := range c.Markers() {
		col, row := g.Cell(m.Spec.X, m.Spec.Y)
		glyph := GlyphMarker
		if m.Spec.Fill == "" {
			glyph = GlyphNoFill
		}
		bold := m.Attrs.Radius > scene.DefaultRadius
		if bold {
			glyph = GlyphHighlighted
		}
		put(cells, col, row, cell{r: glyph, color: m.Spec.Fill, bold: bold, set: true})
	}

	var b strings.Builder
	for i, row := range cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range row {
			switch {
			case cl.cont:
			case !cl.set:
				b.WriteByte(' ')
			case cl.color == "" && !cl.bold:
				b.WriteRune(cl.r)
			default:
				st := lipgloss.NewStyle().Bold(cl.bold)
				if cl.color != "" {
					st = st.Foreground(lipgloss.Color(cl.color))
				}
				b.WriteString(st.Render(string(cl.r)))
			}
		}
	}
	return b.String()
}

func put(cells [][]cell, col, row int, cl cell) {
	if row < 0 || row >= len(cells) || col < 0 || col >= len(cells[row]) {
		return
	}
	// Overwriting half of a wide rune blanks the other half.
	if cells[row][col].cont && col > 0 {
		cells[row][col-1] = cell{r: ' ', set: true}
	}
	if col+1 < len(cells[row]) && cells[row][col+1].cont {
		cells[row][col+1] = cell{r: ' ', set: true}
	}
	cells[row][col] = cl
}

func plotText(cells [][]cell, g Grid, t scene.TextSpec) {
	col, row := g.Cell(t.X, t.Y)
	w := runewidth.StringWidth(t.Text)
	switch t.Anchor {
	case scene.AnchorMiddle:
		col -= w / 2
	case scene.AnchorEnd:
		col -= w
	}
	for _, r := range t.Text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if row < 0 || row >= len(cells) || col < 0 || col+rw > len(cells[row]) {
			col += rw
			continue
		}
		put(cells, col, row, cell{r: r, color: t.Color, bold: t.Bold, set: true})
		if rw == 2 {
			put(cells, col+1, row, cell{cont: true, set: true})
		}
		col += rw
	}
}

func plotLine(cells [][]cell, g Grid, ln scene.LineSpec) {
	x0, y0 := g.Cell(ln.X1, ln.Y1)
	x1, y1 := g.Cell(ln.X2, ln.Y2)
	horizontal := abs(x1-x0) >= abs(y1-y0)
	glyph := '│'
	switch {
	case horizontal && ln.Dash > 0:
		glyph = '╌'
	case horizontal:
		glyph = '─'
	case ln.Dash > 0:
		glyph = '╎'
	}

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy
	for {
		r := glyph
		if row := y0; row >= 0 && row < len(cells) && x0 >= 0 && x0 < len(cells[row]) {
			if prev := cells[row][x0]; prev.set && isCrossable(prev.r) && prev.r != glyph {
				r = '┼'
			}
		}
		put(cells, x0, y0, cell{r: r, color: ln.Color, set: true})
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func isCrossable(r rune) bool {
	switch r {
	case '─', '│', '╌', '╎', '┼':
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
