// Package scene reconciles the visible point set against a drawing surface.
//
// The reconciler never talks to a concrete renderer. It drives a Surface,
// which may be an SVG document, a PNG canvas, a terminal cell grid or a
// recording fake in tests. Points are matched across renders by their
// identity key (word, category, level): entering points get a marker,
// exiting points lose theirs, and points present in both renders are not
// touched at all.
package scene

import "github.com/vanderheijden86/affectmap/pkg/model"

// Handle is an opaque reference to a marker owned by a Surface.
type Handle uint64

// Marker defaults.
const (
	DefaultRadius      = 6.0
	HighlightRadius    = 10.0
	DefaultOpacity     = 0.8
	HighlightOpacity   = 1.0
	MarkerStroke       = "#fff"
	MarkerStrokeWidth  = 1.5
	DefaultTextSize    = 12.0
	QuadrantLabelSize  = 14.0
	AxisLabelTextSize  = 16.0
	CenterLineColor    = "#999"
	OriginLabelColor   = "#666"
	defaultDashPattern = 5.0
)

// MarkerSpec describes a marker to create. Fill is empty when the point's
// category has no colour.
type MarkerSpec struct {
	Key         model.Key
	X, Y        float64
	Radius      float64
	Fill        string
	Opacity     float64
	Stroke      string
	StrokeWidth float64
}

// MarkerAttrs are the attributes a highlight transition may change.
type MarkerAttrs struct {
	Radius  float64
	Opacity float64
}

// Anchor is the horizontal alignment of a text label.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// TextSpec describes a text label.
type TextSpec struct {
	X, Y   float64
	Text   string
	Color  string
	Size   float64
	Bold   bool
	Anchor Anchor
	// Rotate is in degrees around (X, Y).
	Rotate float64
}

// LineSpec describes a straight line. A zero Dash draws a solid line.
type LineSpec struct {
	X1, Y1, X2, Y2 float64
	Color          string
	Width          float64
	Dash           float64
}

// Surface is the abstract 2D scene the reconciler draws on.
type Surface interface {
	CreateMarker(spec MarkerSpec) Handle
	UpdateMarker(h Handle, attrs MarkerAttrs)
	RemoveMarker(h Handle)
	DrawText(t TextSpec)
	DrawLine(l LineSpec)
}
