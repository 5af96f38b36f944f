// Package surface provides the concrete drawing surfaces the scene
// reconciler drives: a retained Canvas that records every marker, label and
// line, plus SVG, PNG and terminal renderers that draw a Canvas.
package surface

import (
	"sort"

	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// Marker is a marker currently on a Canvas.
type Marker struct {
	Handle scene.Handle
	Spec   scene.MarkerSpec
	Attrs  scene.MarkerAttrs
	seq    uint64
}

// Counters tallies the mutations applied to a Canvas.
type Counters struct {
	Created int
	Updated int
	Removed int
}

// Canvas is a retained-mode scene.Surface. Markers keep their creation
// order, which is also their paint order.
type Canvas struct {
	next    scene.Handle
	seq     uint64
	markers map[scene.Handle]*Marker
	texts   []scene.TextSpec
	lines   []scene.LineSpec
	counts  Counters
}

var _ scene.Surface = (*Canvas)(nil)

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{markers: make(map[scene.Handle]*Marker)}
}

// CreateMarker implements scene.Surface.
func (c *Canvas) CreateMarker(spec scene.MarkerSpec) scene.Handle {
	c.next++
	c.seq++
	c.markers[c.next] = &Marker{
		Handle: c.next,
		Spec:   spec,
		Attrs:  scene.MarkerAttrs{Radius: spec.Radius, Opacity: spec.Opacity},
		seq:    c.seq,
	}
	c.counts.Created++
	return c.next
}

// UpdateMarker implements scene.Surface. Unknown handles are ignored.
func (c *Canvas) UpdateMarker(h scene.Handle, attrs scene.MarkerAttrs) {
	m, ok := c.markers[h]
	if !ok {
		return
	}
	m.Attrs = attrs
	c.counts.Updated++
}

// RemoveMarker implements scene.Surface. Unknown handles are ignored.
func (c *Canvas) RemoveMarker(h scene.Handle) {
	if _, ok := c.markers[h]; !ok {
		return
	}
	delete(c.markers, h)
	c.counts.Removed++
}

// DrawText implements scene.Surface.
func (c *Canvas) DrawText(t scene.TextSpec) { c.texts = append(c.texts, t) }

// DrawLine implements scene.Surface.
func (c *Canvas) DrawLine(l scene.LineSpec) { c.lines = append(c.lines, l) }

// Markers returns the live markers in paint order.
func (c *Canvas) Markers() []Marker {
	out := make([]Marker, 0, len(c.markers))
	for _, m := range c.markers {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Marker returns the marker for h.
func (c *Canvas) Marker(h scene.Handle) (Marker, bool) {
	m, ok := c.markers[h]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Len returns the number of live markers.
func (c *Canvas) Len() int { return len(c.markers) }

// Texts returns the labels drawn so far.
func (c *Canvas) Texts() []scene.TextSpec { return c.texts }

// Lines returns the lines drawn so far.
func (c *Canvas) Lines() []scene.LineSpec { return c.lines }

// Counts returns the mutation tallies.
func (c *Canvas) Counts() Counters { return c.counts }

// ResetCounts zeroes the tallies.
func (c *Canvas) ResetCounts() { c.counts = Counters{} }

// ClearDecorations drops labels and lines, keeping markers. Used before the
// frame is redrawn for a new layout.
func (c *Canvas) ClearDecorations() {
	c.texts = nil
	c.lines = nil
}
