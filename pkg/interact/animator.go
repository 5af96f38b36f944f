package interact

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// DefaultTransition is the highlight transition length.
const DefaultTransition = 200 * time.Millisecond

// HandleResolver finds the surface handle of a rendered key.
type HandleResolver interface {
	Handle(key model.Key) (scene.Handle, bool)
}

type transition struct {
	handle  scene.Handle
	radius  *gween.Tween
	opacity *gween.Tween
	target  scene.MarkerAttrs
}

// Animator applies highlight commands to a surface, interpolating radius and
// opacity with tweens. With a zero duration changes are applied immediately.
type Animator struct {
	surface  scene.Surface
	markers  HandleResolver
	duration float32

	attrs  map[model.Key]scene.MarkerAttrs
	active map[model.Key]*transition
}

// NewAnimator creates an animator drawing on s.
func NewAnimator(s scene.Surface, markers HandleResolver, d time.Duration) *Animator {
	return &Animator{
		surface:  s,
		markers:  markers,
		duration: float32(d.Seconds()),
		attrs:    make(map[model.Key]scene.MarkerAttrs),
		active:   make(map[model.Key]*transition),
	}
}

// Apply starts the transitions of cmd. A marker already in transition
// restarts from its current attributes.
func (a *Animator) Apply(cmd HighlightCommand) {
	for _, ch := range cmd.Changes {
		h, ok := a.markers.Handle(ch.Key)
		if !ok {
			delete(a.active, ch.Key)
			delete(a.attrs, ch.Key)
			continue
		}
		from := a.Current(ch.Key)
		if a.duration <= 0 {
			a.set(ch.Key, h, ch.Attrs)
			delete(a.active, ch.Key)
			continue
		}
		a.active[ch.Key] = &transition{
			handle:  h,
			radius:  gween.New(float32(from.Radius), float32(ch.Attrs.Radius), a.duration, ease.OutQuad),
			opacity: gween.New(float32(from.Opacity), float32(ch.Attrs.Opacity), a.duration, ease.OutQuad),
			target:  ch.Attrs,
		}
	}
}

// Step advances running transitions by dt seconds and reports whether any
// are still running.
func (a *Animator) Step(dt float32) bool {
	for key, tr := range a.active {
		r, rDone := tr.radius.Update(dt)
		o, oDone := tr.opacity.Update(dt)
		if rDone && oDone {
			a.set(key, tr.handle, tr.target)
			delete(a.active, key)
			continue
		}
		a.set(key, tr.handle, scene.MarkerAttrs{Radius: float64(r), Opacity: float64(o)})
	}
	return len(a.active) > 0
}

// Finish jumps every running transition to its end state.
func (a *Animator) Finish() {
	for key, tr := range a.active {
		a.set(key, tr.handle, tr.target)
		delete(a.active, key)
	}
}

// Running reports whether any transition is in progress.
func (a *Animator) Running() bool { return len(a.active) > 0 }

// Current returns the last attributes applied to key.
func (a *Animator) Current(key model.Key) scene.MarkerAttrs {
	if attrs, ok := a.attrs[key]; ok {
		return attrs
	}
	return RestAttrs
}

// Forget drops state for a marker that left the scene.
func (a *Animator) Forget(key model.Key) {
	delete(a.active, key)
	delete(a.attrs, key)
}

// Reset drops all state.
func (a *Animator) Reset() {
	a.attrs = make(map[model.Key]scene.MarkerAttrs)
	a.active = make(map[model.Key]*transition)
}

func (a *Animator) set(key model.Key, h scene.Handle, attrs scene.MarkerAttrs) {
	a.surface.UpdateMarker(h, attrs)
	if attrs == RestAttrs {
		delete(a.attrs, key)
		return
	}
	a.attrs[key] = attrs
}
