package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/vanderheijden86/affectmap/pkg/debug"
	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Diff summarizes one reconciliation.
type Diff struct {
	Entered  []model.Key
	Exited   []model.Key
	Retained int
}

// Empty reports whether nothing was created or removed.
func (d Diff) Empty() bool { return len(d.Entered) == 0 && len(d.Exited) == 0 }

type rendered struct {
	handle Handle
	x, y   float64
}

// Reconciler tracks which markers are on the surface (the render state) and
// applies keyed enter/exit diffs. It is not safe for concurrent use.
type Reconciler struct {
	layout  Layout
	palette Palette
	state   map[model.Key]rendered
}

// NewReconciler creates a reconciler with an empty render state.
func NewReconciler(layout Layout, palette Palette) *Reconciler {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Reconciler{
		layout:  layout,
		palette: palette,
		state:   make(map[model.Key]rendered),
	}
}

// Layout returns the layout markers are positioned with.
func (r *Reconciler) Layout() Layout { return r.layout }

// Palette returns the category colours.
func (r *Reconciler) Palette() Palette { return r.palette }

// Reconcile transforms the surface from showing prev to showing next.
//
// Markers for keys only in prev are removed, markers for keys only in next
// are created, and keys in both are left alone. Afterwards the render state
// holds exactly the keys of next.
func (r *Reconciler) Reconcile(prev, next []model.Point, s Surface) Diff {
	defer metrics.Timer(metrics.Reconcile)()

	nextKeys := make(map[model.Key]struct{}, len(next))
	for _, p := range next {
		nextKeys[p.Key()] = struct{}{}
	}
	prevKeys := make(map[model.Key]struct{}, len(prev))
	for _, p := range prev {
		prevKeys[p.Key()] = struct{}{}
	}

	var diff Diff

	// exit
	for _, p := range prev {
		key := p.Key()
		if _, keep := nextKeys[key]; keep {
			continue
		}
		if rs, ok := r.state[key]; ok {
			s.RemoveMarker(rs.handle)
			delete(r.state, key)
			diff.Exited = append(diff.Exited, key)
		}
	}

	// enter
	for _, p := range next {
		key := p.Key()
		if _, had := prevKeys[key]; had {
			diff.Retained++
			continue
		}
		if _, drawn := r.state[key]; drawn {
			continue
		}
		spec := r.MarkerSpec(p)
		r.state[key] = rendered{handle: s.CreateMarker(spec), x: spec.X, y: spec.Y}
		diff.Entered = append(diff.Entered, key)
	}

	if debug.Enabled() {
		debug.AssertNoError(r.CheckInvariant(next), "reconcile")
		debug.Log("scene: reconcile +%d -%d =%d", len(diff.Entered), len(diff.Exited), diff.Retained)
	}
	return diff
}

// MarkerSpec returns the default marker for p.
func (r *Reconciler) MarkerSpec(p model.Point) MarkerSpec {
	x, y := r.layout.Project(p.Coord.X(), p.Coord.Y())
	return MarkerSpec{
		Key:         p.Key(),
		X:           x,
		Y:           y,
		Radius:      DefaultRadius,
		Fill:        r.palette.Fill(p.Category),
		Opacity:     DefaultOpacity,
		Stroke:      MarkerStroke,
		StrokeWidth: MarkerStrokeWidth,
	}
}

// Clear removes every marker and empties the render state. Used when the
// dataset is replaced.
func (r *Reconciler) Clear(s Surface) {
	for key, rs := range r.state {
		s.RemoveMarker(rs.handle)
		delete(r.state, key)
	}
}

// Handle returns the marker handle for key.
func (r *Reconciler) Handle(key model.Key) (Handle, bool) {
	rs, ok := r.state[key]
	return rs.handle, ok
}

// Len returns the number of markers in the render state.
func (r *Reconciler) Len() int { return len(r.state) }

// Keys returns the render state keys sorted by their string form.
func (r *Reconciler) Keys() []model.Key {
	keys := make([]model.Key, 0, len(r.state))
	for k := range r.state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// CheckInvariant verifies that the render state holds exactly the keys of
// visible. A mismatch is a programming fault.
func (r *Reconciler) CheckInvariant(visible []model.Point) error {
	want := make(map[model.Key]struct{}, len(visible))
	for _, p := range visible {
		want[p.Key()] = struct{}{}
	}
	for k := range want {
		if _, ok := r.state[k]; !ok {
			return fmt.Errorf("render state missing marker for %q", k.String())
		}
	}
	for k := range r.state {
		if _, ok := want[k]; !ok {
			return fmt.Errorf("render state has orphaned marker for %q", k.String())
		}
	}
	return nil
}

// HitTest returns the key of the marker nearest to (x, y) within radius.
// Ties go to the smaller key string so the result is deterministic.
func (r *Reconciler) HitTest(x, y, radius float64) (model.Key, bool) {
	var (
		best     model.Key
		bestDist = math.Inf(1)
		found    bool
	)
	for key, rs := range r.state {
		dx, dy := rs.x-x, rs.y-y
		d := dx*dx + dy*dy
		if d > radius*radius {
			continue
		}
		if !found || d < bestDist || (d == bestDist && key.String() < best.String()) {
			best, bestDist, found = key, d, true
		}
	}
	return best, found
}

// Position returns where the marker for key was drawn.
func (r *Reconciler) Position(key model.Key) (x, y float64, ok bool) {
	rs, ok := r.state[key]
	return rs.x, rs.y, ok
}
