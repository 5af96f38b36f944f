package scene

import (
	"fmt"
	"math"
)

// Chart captions.
const (
	ChartTitle   = "情感词汇坐标分布图"
	ValenceTitle = "愉悦度 (Valence)"
	ArousalTitle = "唤醒度 (Arousal)"
	OriginLabel  = "(0,0)"
)

// QuadrantLabel is the fixed caption of one plot quadrant.
type QuadrantLabel struct {
	Text  string
	Color string
	// FX, FY locate the label as fractions of the plot area.
	FX, FY float64
}

// QuadrantLabels lists the four captions clockwise from the top right.
var QuadrantLabels = []QuadrantLabel{
	{Text: "高愉悦/高唤醒", Color: "#2E7D32", FX: 0.75, FY: 0.25},
	{Text: "低愉悦/高唤醒", Color: "#C62828", FX: 0.25, FY: 0.25},
	{Text: "低愉悦/低唤醒", Color: "#6A1B9A", FX: 0.25, FY: 0.75},
	{Text: "高愉悦/低唤醒", Color: "#1565C0", FX: 0.75, FY: 0.75},
}

// FrameOptions controls which decorations DrawFrame emits.
type FrameOptions struct {
	// Ticks adds labelled ticks along both centre axes.
	Ticks bool
	// AxisTitles adds the valence/arousal titles outside the plot.
	AxisTitles bool
}

// DefaultFrameOptions draws everything.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{Ticks: true, AxisTitles: true}
}

// DrawFrame draws the static chart decorations: dashed centre lines,
// quadrant captions, the origin label and optionally ticks and axis titles.
// Markers are drawn by the Reconciler.
func DrawFrame(s Surface, l Layout, opts FrameOptions) {
	left, top := l.Margin.Left, l.Margin.Top
	w, h := l.PlotWidth(), l.PlotHeight()
	cx, cy := l.Project(0, 0)

	s.DrawLine(LineSpec{X1: left, Y1: cy, X2: left + w, Y2: cy, Color: CenterLineColor, Width: 1, Dash: defaultDashPattern})
	s.DrawLine(LineSpec{X1: cx, Y1: top, X2: cx, Y2: top + h, Color: CenterLineColor, Width: 1, Dash: defaultDashPattern})

	if opts.Ticks {
		drawTicks(s, l)
	}

	if opts.AxisTitles {
		s.DrawText(TextSpec{
			X: left + w/2, Y: top + h + 40,
			Text: ValenceTitle, Size: AxisLabelTextSize, Bold: true, Anchor: AnchorMiddle,
		})
		s.DrawText(TextSpec{
			X: left - 40, Y: top + h/2,
			Text: ArousalTitle, Size: AxisLabelTextSize, Bold: true, Anchor: AnchorMiddle, Rotate: -90,
		})
	}

	for _, q := range QuadrantLabels {
		s.DrawText(TextSpec{
			X: left + w*q.FX, Y: top + h*q.FY,
			Text: q.Text, Color: q.Color, Size: QuadrantLabelSize, Anchor: AnchorMiddle,
		})
	}

	s.DrawText(TextSpec{X: cx + 5, Y: cy - 5, Text: OriginLabel, Color: OriginLabelColor, Size: DefaultTextSize})
}

// TickValues returns the axis tick positions: every 0.2 across the domain.
func TickValues() []float64 {
	const step = 0.2
	n := int(math.Round((DomainMax - DomainMin) / step))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		v := math.Round((DomainMin+float64(i)*step)*10) / 10
		out = append(out, v)
	}
	return out
}

func drawTicks(s Surface, l Layout) {
	cx, cy := l.Project(0, 0)
	for _, v := range TickValues() {
		if v == 0 {
			continue
		}
		label := fmt.Sprintf("%.1f", v)

		x := l.XScale().Map(v)
		s.DrawLine(LineSpec{X1: x, Y1: cy, X2: x, Y2: cy + 6, Color: CenterLineColor, Width: 1})
		s.DrawText(TextSpec{X: x, Y: cy + 18, Text: label, Color: OriginLabelColor, Size: 10, Anchor: AnchorMiddle})

		y := l.YScale().Map(v)
		s.DrawLine(LineSpec{X1: cx - 6, Y1: y, X2: cx, Y2: y, Color: CenterLineColor, Width: 1})
		s.DrawText(TextSpec{X: cx - 9, Y: y + 3, Text: label, Color: OriginLabelColor, Size: 10, Anchor: AnchorEnd})
	}
}
