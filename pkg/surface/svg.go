package surface

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// RenderOptions adds chrome around the plotted canvas.
type RenderOptions struct {
	Title  string
	Legend []scene.LegendEntry
	// Footer is printed under the plot, e.g. the dataset stats line.
	Footer string
}

// WriteSVG renders c as an SVG document sized to l.
func WriteSVG(w io.Writer, c *Canvas, l scene.Layout, opts RenderOptions) error {
	width, height := px(l.Width), px(l.Height)
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	if opts.Title != "" {
		canvas.Text(width/2, 30, opts.Title,
			fmt.Sprintf("fill:%s;font-size:18px;font-weight:bold;text-anchor:middle", css(colorText)))
	}

	for _, ln := range c.Lines() {
		canvas.Line(px(ln.X1), px(ln.Y1), px(ln.X2), px(ln.Y2), lineStyle(ln))
	}
	for _, t := range c.Texts() {
		drawTextSVG(canvas, t)
	}
	for _, m := range c.Markers() {
		canvas.Circle(px(m.Spec.X), px(m.Spec.Y), px(m.Attrs.Radius), markerStyle(m))
	}

	if len(opts.Legend) > 0 {
		drawLegendSVG(canvas, l, opts.Legend)
	}
	if opts.Footer != "" {
		canvas.Text(px(l.Margin.Left), height-8, opts.Footer,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func drawTextSVG(canvas *svg.SVG, t scene.TextSpec) {
	style := fmt.Sprintf("fill:%s;font-size:%gpx;text-anchor:%s",
		css(colorOr(t.Color, colorText)), textSize(t), anchorName(t.Anchor))
	if t.Bold {
		style += ";font-weight:bold"
	}
	if t.Rotate == 0 {
		canvas.Text(px(t.X), px(t.Y), t.Text, style)
		return
	}
	canvas.TranslateRotate(px(t.X), px(t.Y), t.Rotate)
	canvas.Text(0, 0, t.Text, style)
	canvas.Gend()
}

func drawLegendSVG(canvas *svg.SVG, l scene.Layout, entries []scene.LegendEntry) {
	const rowH, boxW = 18, 96
	x := px(l.Width-l.Margin.Right) - boxW
	y := px(l.Margin.Top)
	canvas.Rect(x-8, y-14, boxW+8, rowH*len(entries)+10,
		fmt.Sprintf("fill:%s;fill-opacity:0.85;stroke:%s;stroke-width:1", css(colorBackdrop), css(colorBorder)))
	for i, e := range entries {
		ry := y + i*rowH
		canvas.Circle(x, ry-4, 5, fmt.Sprintf("fill:%s", css(colorOr(e.Color, colorNoFill))))
		canvas.Text(x+10, ry, e.Category, fmt.Sprintf("fill:%s;font-size:12px", css(colorText)))
	}
}

func markerStyle(m Marker) string {
	fill := "none"
	if c, ok := parseHex(m.Spec.Fill); ok {
		fill = css(c)
	}
	return fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:%g",
		fill, m.Attrs.Opacity, css(colorOr(m.Spec.Stroke, colorBackdrop)), m.Spec.StrokeWidth)
}

func lineStyle(ln scene.LineSpec) string {
	style := fmt.Sprintf("stroke:%s;stroke-width:%g", css(colorOr(ln.Color, colorSubtle)), ln.Width)
	if ln.Dash > 0 {
		style += fmt.Sprintf(";stroke-dasharray:%g,%g", ln.Dash, ln.Dash)
	}
	return style
}

func anchorName(a scene.Anchor) string {
	switch a {
	case scene.AnchorMiddle:
		return "middle"
	case scene.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

func textSize(t scene.TextSpec) float64 {
	if t.Size <= 0 {
		return scene.DefaultTextSize
	}
	return t.Size
}

func px(v float64) int { return int(math.Round(v)) }
