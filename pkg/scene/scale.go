package scene

// Domain bounds shared by both axes. They are fixed rather than fitted to the
// data so points on the [-1, 1] boundary keep a margin from the plot edge.
const (
	DomainMin = -1.2
	DomainMax = 1.2
)

// LinearScale maps a data interval onto a pixel interval. RangeMin may be
// greater than RangeMax, which is how the y axis is inverted.
type LinearScale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// Map converts a data value to pixels.
func (s LinearScale) Map(v float64) float64 {
	return s.RangeMin + (v-s.DomainMin)/(s.DomainMax-s.DomainMin)*(s.RangeMax-s.RangeMin)
}

// Invert converts pixels back to a data value.
func (s LinearScale) Invert(px float64) float64 {
	return s.DomainMin + (px-s.RangeMin)/(s.RangeMax-s.RangeMin)*(s.DomainMax-s.DomainMin)
}

// Margin is the space around the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout fixes the surface size and derives the plot area and scales.
type Layout struct {
	Width, Height float64
	Margin        Margin
}

// DefaultLayout is the 800x600 chart used for static snapshots.
func DefaultLayout() Layout {
	return Layout{
		Width:  800,
		Height: 600,
		Margin: Margin{Top: 60, Right: 20, Bottom: 60, Left: 60},
	}
}

// PlotWidth is the width inside the margins.
func (l Layout) PlotWidth() float64 { return l.Width - l.Margin.Left - l.Margin.Right }

// PlotHeight is the height inside the margins.
func (l Layout) PlotHeight() float64 { return l.Height - l.Margin.Top - l.Margin.Bottom }

// XScale maps valence to surface x.
func (l Layout) XScale() LinearScale {
	return LinearScale{
		DomainMin: DomainMin, DomainMax: DomainMax,
		RangeMin: l.Margin.Left, RangeMax: l.Margin.Left + l.PlotWidth(),
	}
}

// YScale maps arousal to surface y. Screen y grows downward, so the range
// runs from the bottom of the plot to the top.
func (l Layout) YScale() LinearScale {
	return LinearScale{
		DomainMin: DomainMin, DomainMax: DomainMax,
		RangeMin: l.Margin.Top + l.PlotHeight(), RangeMax: l.Margin.Top,
	}
}

// Project maps a data coordinate to surface pixels.
func (l Layout) Project(x, y float64) (float64, float64) {
	return l.XScale().Map(x), l.YScale().Map(y)
}

// Unproject maps surface pixels back to data coordinates.
func (l Layout) Unproject(px, py float64) (float64, float64) {
	return l.XScale().Invert(px), l.YScale().Invert(py)
}
