// Package app wires the dataset store, filter state, scene reconciler and
// hover controller into one application state object.
//
// App is owned by a single goroutine (the TUI update loop or the CLI). Only
// dataset acquisition may run elsewhere: BeginLoad claims the single load
// slot, Fetch runs anywhere, and Finish applies the result on the owner.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vanderheijden86/affectmap/pkg/debug"
	"github.com/vanderheijden86/affectmap/pkg/filter"
	"github.com/vanderheijden86/affectmap/pkg/interact"
	"github.com/vanderheijden86/affectmap/pkg/loader"
	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
	"github.com/vanderheijden86/affectmap/pkg/store"
)

// ErrLoadInFlight is returned when a load is requested while another has
// not settled yet. The request is dropped.
var ErrLoadInFlight = errors.New("dataset load already in progress")

// User-facing messages.
const (
	MsgLoadFailed   = "加载数据失败"
	MsgFallbackMode = "使用示例数据模式"
)

// Counts is the total and visible point tally.
type Counts struct {
	Total   int `json:"total"`
	Visible int `json:"visible"`
}

// StatusSink receives the state a detail/status panel shows.
type StatusSink interface {
	// Detail is called with the hovered point, or nil when nothing is.
	Detail(d *interact.DetailPayload)
	Counts(c Counts)
	Error(msg string)
	Loading(loading bool)
}

// NopSink discards status updates.
type NopSink struct{}

func (NopSink) Detail(*interact.DetailPayload) {}
func (NopSink) Counts(Counts)                  {}
func (NopSink) Error(string)                   {}
func (NopSink) Loading(bool)                   {}

// Options configures an App.
type Options struct {
	Layout  scene.Layout
	Palette scene.Palette
	// Transition is the highlight animation length; zero applies changes
	// immediately.
	Transition time.Duration
	Sink       StatusSink
	// Selection is the initial filter. Empty fields mean "all".
	Selection filter.Selection
}

// LoadResult is the outcome of one acquisition.
type LoadResult struct {
	Source string
	Groups []model.CategoryGroup
	// Err is the acquisition error when Fallback is set.
	Err      error
	Fallback bool
	Duration time.Duration
}

// App is the application state object.
type App struct {
	layout  scene.Layout
	store   *store.Store
	filter  *filter.State
	recon   *scene.Reconciler
	ctrl    *interact.Controller
	anim    *interact.Animator
	surface scene.Surface
	sink    StatusSink

	visible []model.Point
	loading atomic.Bool
	last    *LoadResult
}

// New creates an App drawing on s.
func New(s scene.Surface, opts Options) *App {
	if opts.Layout.Width == 0 || opts.Layout.Height == 0 {
		opts.Layout = scene.DefaultLayout()
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	a := &App{
		layout:  opts.Layout,
		store:   store.New(),
		filter:  filter.New(),
		recon:   scene.NewReconciler(opts.Layout, opts.Palette),
		ctrl:    interact.NewController(),
		surface: s,
		sink:    opts.Sink,
	}
	a.anim = interact.NewAnimator(s, a.recon, opts.Transition)
	a.filter.SetCategory(opts.Selection.Category)
	a.filter.SetLevel(opts.Selection.Level)
	return a
}

// BeginLoad claims the load slot. It fails with ErrLoadInFlight while a
// previous load has not been finished.
func (a *App) BeginLoad() error {
	if !a.loading.CompareAndSwap(false, true) {
		debug.Log("app: load request dropped, another is in flight")
		return ErrLoadInFlight
	}
	a.sink.Loading(true)
	return nil
}

// Loading reports whether a load is in flight.
func (a *App) Loading() bool { return a.loading.Load() }

// Fetch acquires and validates a dataset. Any failure is converted into a
// fallback result carrying the error. Fetch touches no App state and may
// run on any goroutine.
func Fetch(ctx context.Context, src loader.Fetcher) LoadResult {
	start := time.Now()
	res := LoadResult{Source: src.Name()}
	groups, err := loader.Load(ctx, src)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		res.Fallback = true
		res.Groups = loader.Fallback()
		return res
	}
	res.Groups = groups
	return res
}

// Finish applies a fetched result and releases the load slot. It replaces
// the dataset, clears every rendered marker and hover state, and renders
// the new visible set under the current filter.
func (a *App) Finish(res LoadResult) {
	debug.Assert(a.loading.Load(), "app: Finish without BeginLoad")
	defer func() {
		a.loading.Store(false)
		a.sink.Loading(false)
	}()

	if res.Err != nil {
		debug.Log("app: load from %s failed: %v", res.Source, res.Err)
		a.sink.Error(fmt.Sprintf("%s: %v", MsgLoadFailed, res.Err))
	}
	if res.Fallback {
		a.sink.Error(MsgFallbackMode)
	}

	a.store.Replace(res.Groups)
	a.recon.Clear(a.surface)
	a.anim.Reset()
	a.ctrl.Reset()
	a.sink.Detail(nil)
	a.visible = nil
	r := res
	a.last = &r

	a.render()
	debug.LogTiming("app: load "+res.Source, res.Duration)
}

// Load runs a complete load synchronously.
func (a *App) Load(ctx context.Context, src loader.Fetcher) (LoadResult, error) {
	if err := a.BeginLoad(); err != nil {
		return LoadResult{}, err
	}
	res := Fetch(ctx, src)
	a.Finish(res)
	return res, nil
}

// LastLoad returns the most recently applied result.
func (a *App) LastLoad() (LoadResult, bool) {
	if a.last == nil {
		return LoadResult{}, false
	}
	return *a.last, true
}

// SetCategory changes the category filter and re-renders if it changed.
func (a *App) SetCategory(v string) bool {
	if !a.filter.SetCategory(v) {
		return false
	}
	a.render()
	return true
}

// SetLevel changes the level filter and re-renders if it changed.
func (a *App) SetLevel(v string) bool {
	if !a.filter.SetLevel(v) {
		return false
	}
	a.render()
	return true
}

// ResetFilter returns both filters to "all".
func (a *App) ResetFilter() bool {
	if !a.filter.Reset() {
		return false
	}
	a.render()
	return true
}

// CycleCategory steps the category filter through "all" plus the dataset's
// categories.
func (a *App) CycleCategory(dir int) string {
	next := filter.Cycle(a.CategoryOptions(), a.filter.Selection().Category, dir)
	a.SetCategory(next)
	return next
}

// CycleLevel steps the level filter through "all" plus the dataset's levels.
func (a *App) CycleLevel(dir int) string {
	next := filter.Cycle(a.LevelOptions(), a.filter.Selection().Level, dir)
	a.SetLevel(next)
	return next
}

// CategoryOptions lists the category filter values offered to the user.
func (a *App) CategoryOptions() []string { return filter.Options(a.store.Categories()) }

// LevelOptions lists the level filter values offered to the user.
func (a *App) LevelOptions() []string { return filter.Options(a.store.Levels()) }

// Hover highlights key.
func (a *App) Hover(key model.Key) { a.apply(a.ctrl.OnHover(key)) }

// Unhover restores key.
func (a *App) Unhover(key model.Key) { a.apply(a.ctrl.OnUnhover(key)) }

// HoverAt hovers the marker nearest to the surface point (x, y) within
// radius, or releases the current hover when there is none.
func (a *App) HoverAt(x, y, radius float64) (model.Key, bool) {
	key, ok := a.recon.HitTest(x, y, radius)
	if !ok {
		a.apply(a.ctrl.Release())
		return model.Key{}, false
	}
	a.Hover(key)
	return key, true
}

// Release unhovers whatever is hovered.
func (a *App) Release() { a.apply(a.ctrl.Release()) }

// Step advances highlight transitions by dt seconds.
func (a *App) Step(dt float32) bool { return a.anim.Step(dt) }

// Animating reports whether a highlight transition is running.
func (a *App) Animating() bool { return a.anim.Running() }

// DrawFrame draws the static chart decorations on the surface.
func (a *App) DrawFrame(opts scene.FrameOptions) { scene.DrawFrame(a.surface, a.layout, opts) }

// Detail returns the hovered point's payload, or nil.
func (a *App) Detail() *interact.DetailPayload { return a.ctrl.Detail() }

// Selection returns the active filter.
func (a *App) Selection() filter.Selection { return a.filter.Selection() }

// Visible returns the points currently drawn.
func (a *App) Visible() []model.Point { return a.visible }

// Snapshot returns the current dataset snapshot.
func (a *App) Snapshot() *store.Snapshot { return a.store.Snapshot() }

// Counts returns the total and visible tallies.
func (a *App) Counts() Counts {
	return Counts{Total: a.store.Snapshot().Len(), Visible: len(a.visible)}
}

// Layout returns the chart layout.
func (a *App) Layout() scene.Layout { return a.layout }

// Palette returns the category colours.
func (a *App) Palette() scene.Palette { return a.recon.Palette() }

// Reconciler exposes the render state for inspection.
func (a *App) Reconciler() *scene.Reconciler { return a.recon }

func (a *App) render() {
	next := a.filter.Visible(a.store.Points())
	diff := a.recon.Reconcile(a.visible, next, a.surface)
	for _, k := range diff.Exited {
		a.anim.Forget(k)
	}
	if a.ctrl.Sync(next) {
		a.sink.Detail(nil)
	}
	a.visible = next
	a.sink.Counts(a.Counts())
}

func (a *App) apply(cmd interact.HighlightCommand) {
	if cmd.Empty() {
		return
	}
	a.anim.Apply(cmd)
	if cmd.Detail != nil {
		a.sink.Detail(cmd.Detail)
	} else if cmd.ClearDetail {
		a.sink.Detail(nil)
	}
}
