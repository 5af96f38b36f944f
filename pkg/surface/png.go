package surface

import (
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// WritePNG rasterizes c at the size of l. Labels use the built-in bitmap
// face, which has no CJK glyphs; those characters render as boxes.
func WritePNG(w io.Writer, c *Canvas, l scene.Layout, opts RenderOptions) error {
	dc := gg.NewContext(px(l.Width), px(l.Height))
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if opts.Title != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(opts.Title, l.Width/2, 30, 0.5, 0.5)
	}

	for _, ln := range c.Lines() {
		dc.SetColor(colorOr(ln.Color, colorSubtle))
		dc.SetLineWidth(ln.Width)
		if ln.Dash > 0 {
			dc.SetDash(ln.Dash, ln.Dash)
		} else {
			dc.SetDash()
		}
		dc.DrawLine(ln.X1, ln.Y1, ln.X2, ln.Y2)
		dc.Stroke()
	}
	dc.SetDash()

	for _, t := range c.Texts() {
		drawTextPNG(dc, t)
	}

	for _, m := range c.Markers() {
		dc.DrawCircle(m.Spec.X, m.Spec.Y, m.Attrs.Radius)
		if fill, ok := parseHex(m.Spec.Fill); ok {
			dc.SetColor(withAlpha(fill, m.Attrs.Opacity))
			dc.FillPreserve()
		}
		dc.SetColor(colorOr(m.Spec.Stroke, colorBackdrop))
		dc.SetLineWidth(m.Spec.StrokeWidth)
		dc.Stroke()
	}

	if len(opts.Legend) > 0 {
		drawLegendPNG(dc, l, opts.Legend)
	}
	if opts.Footer != "" {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(opts.Footer, l.Margin.Left, l.Height-12, 0, 0.5)
	}

	return dc.EncodePNG(w)
}

func drawTextPNG(dc *gg.Context, t scene.TextSpec) {
	ax := 0.0
	switch t.Anchor {
	case scene.AnchorMiddle:
		ax = 0.5
	case scene.AnchorEnd:
		ax = 1
	}
	dc.SetColor(colorOr(t.Color, colorText))
	if t.Rotate == 0 {
		dc.DrawStringAnchored(t.Text, t.X, t.Y, ax, 0.5)
		return
	}
	dc.Push()
	dc.RotateAbout(gg.Radians(t.Rotate), t.X, t.Y)
	dc.DrawStringAnchored(t.Text, t.X, t.Y, ax, 0.5)
	dc.Pop()
}

func drawLegendPNG(dc *gg.Context, l scene.Layout, entries []scene.LegendEntry) {
	const rowH, boxW = 18.0, 96.0
	x := l.Width - l.Margin.Right - boxW
	y := l.Margin.Top
	dc.SetColor(withAlpha(colorBackdrop, 0.85))
	dc.DrawRectangle(x-8, y-14, boxW+8, rowH*float64(len(entries))+10)
	dc.FillPreserve()
	dc.SetColor(colorBorder)
	dc.SetLineWidth(1)
	dc.Stroke()
	for i, e := range entries {
		ry := y + float64(i)*rowH
		dc.SetColor(colorOr(e.Color, colorNoFill))
		dc.DrawCircle(x, ry-4, 5)
		dc.Fill()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(e.Category, x+10, ry-4, 0, 0.5)
	}
}
