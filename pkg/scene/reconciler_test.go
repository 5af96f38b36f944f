package scene_test

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
	"github.com/vanderheijden86/affectmap/pkg/surface"
)

func pt(word, cat, level string, x, y float64) model.Point {
	return model.Point{Word: word, Category: cat, Level: level, Coord: model.Coord{x, y}}
}

func newScene() (*scene.Reconciler, *surface.Canvas) {
	return scene.NewReconciler(scene.DefaultLayout(), scene.DefaultPalette()), surface.NewCanvas()
}

func TestReconcile_FirstRenderCreatesMarker(t *testing.T) {
	r, c := newScene()
	p := pt("开心", "快乐", "高", 0.8, 0.9)

	diff := r.Reconcile(nil, []model.Point{p}, c)

	if len(diff.Entered) != 1 || len(diff.Exited) != 0 {
		t.Fatalf("diff = %+v, want one entered", diff)
	}
	markers := c.Markers()
	if len(markers) != 1 {
		t.Fatalf("got %d markers, want 1", len(markers))
	}
	m := markers[0]
	wantX, wantY := scene.DefaultLayout().Project(0.8, 0.9)
	if m.Spec.X != wantX || m.Spec.Y != wantY {
		t.Errorf("position = (%v,%v), want (%v,%v)", m.Spec.X, m.Spec.Y, wantX, wantY)
	}
	if m.Spec.Fill != "#FF6B6B" {
		t.Errorf("fill = %q, want #FF6B6B", m.Spec.Fill)
	}
	if m.Attrs.Radius != scene.DefaultRadius || m.Attrs.Opacity != scene.DefaultOpacity {
		t.Errorf("attrs = %+v, want radius 6 opacity 0.8", m.Attrs)
	}
	if m.Spec.Stroke != "#fff" || m.Spec.StrokeWidth != 1.5 {
		t.Errorf("stroke = %q/%v", m.Spec.Stroke, m.Spec.StrokeWidth)
	}
}

func TestReconcile_FilterChangeTouchesOnlyDifference(t *testing.T) {
	r, c := newScene()
	a := pt("a", "快乐", "高", 0.1, 0.1)
	b := pt("b", "悲伤", "低", -0.5, -0.2)

	r.Reconcile(nil, []model.Point{a, b}, c)
	handleA, _ := r.Handle(a.Key())
	c.ResetCounts()

	diff := r.Reconcile([]model.Point{a, b}, []model.Point{a}, c)

	if got := c.Counts(); got != (surface.Counters{Removed: 1}) {
		t.Errorf("counts = %+v, want exactly one removal", got)
	}
	if diff.Retained != 1 || len(diff.Exited) != 1 || diff.Exited[0] != b.Key() {
		t.Errorf("diff = %+v", diff)
	}
	if h, ok := r.Handle(a.Key()); !ok || h != handleA {
		t.Errorf("retained marker handle changed: %v -> %v", handleA, h)
	}
	if err := r.CheckInvariant([]model.Point{a}); err != nil {
		t.Error(err)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	r, c := newScene()
	pts := []model.Point{
		pt("a", "快乐", "高", 0.1, 0.1),
		pt("b", "悲伤", "低", -0.5, -0.2),
	}
	r.Reconcile(nil, pts, c)
	c.ResetCounts()

	diff := r.Reconcile(pts, pts, c)
	if !diff.Empty() {
		t.Errorf("second reconcile not empty: %+v", diff)
	}
	if got := c.Counts(); got != (surface.Counters{}) {
		t.Errorf("surface mutated: %+v", got)
	}
}

func TestReconcile_UnknownCategoryHasNoFill(t *testing.T) {
	r, c := newScene()
	r.Reconcile(nil, []model.Point{pt("x", "未知", "中", 0, 0)}, c)
	m := c.Markers()
	if len(m) != 1 {
		t.Fatalf("got %d markers", len(m))
	}
	if m[0].Spec.Fill != "" {
		t.Errorf("fill = %q, want empty", m[0].Spec.Fill)
	}
}

func TestReconcile_SameWordDifferentLevelsAreDistinct(t *testing.T) {
	r, c := newScene()
	pts := []model.Point{
		pt("平静", "低能量", "低", -0.1, -0.5),
		pt("平静", "低能量", "中", -0.1, -0.4),
	}
	r.Reconcile(nil, pts, c)
	if c.Len() != 2 || r.Len() != 2 {
		t.Fatalf("markers=%d state=%d, want 2", c.Len(), r.Len())
	}
}

func TestReconcile_ClearEmptiesState(t *testing.T) {
	r, c := newScene()
	r.Reconcile(nil, []model.Point{pt("a", "快乐", "高", 0, 0)}, c)
	r.Clear(c)
	if r.Len() != 0 || c.Len() != 0 {
		t.Errorf("after clear: state=%d markers=%d", r.Len(), c.Len())
	}
}

func TestCheckInvariant_DetectsMismatch(t *testing.T) {
	r, c := newScene()
	a := pt("a", "快乐", "高", 0, 0)
	r.Reconcile(nil, []model.Point{a}, c)
	if err := r.CheckInvariant(nil); err == nil {
		t.Error("expected orphaned marker error")
	}
	if err := r.CheckInvariant([]model.Point{a, pt("b", "快乐", "高", 0, 0)}); err == nil {
		t.Error("expected missing marker error")
	}
}

func TestHitTest(t *testing.T) {
	r, c := newScene()
	a := pt("a", "快乐", "高", 0.5, 0.5)
	b := pt("b", "快乐", "高", -0.5, -0.5)
	r.Reconcile(nil, []model.Point{a, b}, c)

	ax, ay := scene.DefaultLayout().Project(0.5, 0.5)
	tests := []struct {
		name   string
		x, y   float64
		want   model.Key
		wantOK bool
	}{
		{"exact", ax, ay, a.Key(), true},
		{"within radius", ax + 4, ay - 3, a.Key(), true},
		{"outside radius", ax + 40, ay, model.Key{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.HitTest(tt.x, tt.y, scene.DefaultRadius)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("HitTest = %v,%v want %v,%v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func genPoints(t *rapid.T) []model.Point {
	words := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-e]{1,2}`), 0, 12, rapid.ID[string]).Draw(t, "words")
	cats := []string{"快乐", "悲伤", "未知"}
	out := make([]model.Point, len(words))
	for i, w := range words {
		out[i] = pt(w,
			rapid.SampledFrom(cats).Draw(t, "cat"),
			"中",
			rapid.Float64Range(-1, 1).Draw(t, "x"),
			rapid.Float64Range(-1, 1).Draw(t, "y"))
	}
	return out
}

func subset(t *rapid.T, pts []model.Point, label string) []model.Point {
	var out []model.Point
	for _, p := range pts {
		if rapid.Bool().Draw(t, label) {
			out = append(out, p)
		}
	}
	return out
}

func TestReconcile_StateMatchesVisibleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		all := genPoints(t)
		r, c := newScene()
		var prev []model.Point
		steps := rapid.IntRange(1, 6).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			next := subset(t, all, "keep")
			r.Reconcile(prev, next, c)
			if err := r.CheckInvariant(next); err != nil {
				t.Fatal(err)
			}
			if c.Len() != len(next) {
				t.Fatalf("surface has %d markers, want %d", c.Len(), len(next))
			}
			prev = next
		}
	})
}

func TestReconcile_RoundTripRestoresMarkers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		all := genPoints(t)
		other := subset(t, all, "other")
		r, c := newScene()

		r.Reconcile(nil, all, c)
		before := markerSet(c)
		r.Reconcile(all, other, c)
		r.Reconcile(other, all, c)
		after := markerSet(c)

		if len(before) != len(after) {
			t.Fatalf("marker count %d -> %d", len(before), len(after))
		}
		for k, spec := range before {
			if after[k] != spec {
				t.Fatalf("marker %v changed: %+v -> %+v", k, spec, after[k])
			}
		}
	})
}

func markerSet(c *surface.Canvas) map[model.Key]scene.MarkerSpec {
	out := make(map[model.Key]scene.MarkerSpec)
	for _, m := range c.Markers() {
		out[m.Spec.Key] = m.Spec
	}
	return out
}

func TestLayout_ProjectBounds(t *testing.T) {
	l := scene.DefaultLayout()
	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{"domain min", -1.2, -1.2, 60, 540},
		{"domain max", 1.2, 1.2, 780, 60},
		{"origin", 0, 0, 420, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy := l.Project(tt.x, tt.y)
			if math.Abs(gx-tt.wantX) > 1e-9 || math.Abs(gy-tt.wantY) > 1e-9 {
				t.Errorf("Project(%v,%v) = (%v,%v), want (%v,%v)", tt.x, tt.y, gx, gy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestLayout_UnprojectInvertsProject(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := scene.DefaultLayout()
		x := rapid.Float64Range(-1.2, 1.2).Draw(t, "x")
		y := rapid.Float64Range(-1.2, 1.2).Draw(t, "y")
		px, py := l.Project(x, y)
		ux, uy := l.Unproject(px, py)
		if math.Abs(ux-x) > 1e-9 || math.Abs(uy-y) > 1e-9 {
			t.Fatalf("round trip (%v,%v) -> (%v,%v)", x, y, ux, uy)
		}
	})
}

func TestLayout_HigherArousalIsHigherOnScreen(t *testing.T) {
	l := scene.DefaultLayout()
	_, low := l.Project(0, -0.5)
	_, high := l.Project(0, 0.5)
	if high >= low {
		t.Errorf("y(0.5)=%v should be above y(-0.5)=%v", high, low)
	}
}
