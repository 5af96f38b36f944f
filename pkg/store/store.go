// Package store holds the flattened point collection of the active dataset.
//
// The store is replaced wholesale on every (re)load. Readers take a Snapshot
// and keep using it; a concurrent Replace never exposes a half-built
// collection because the snapshot pointer is swapped atomically.
package store

import (
	"sync/atomic"

	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Snapshot is an immutable view of one dataset generation.
type Snapshot struct {
	points     []model.Point
	categories []string
	levels     []string
	generation uint64
}

// Points returns the flattened points in input order. Callers must not
// modify the returned slice.
func (s *Snapshot) Points() []model.Point {
	if s == nil {
		return nil
	}
	return s.points
}

// Categories returns the distinct categories in first-seen order.
func (s *Snapshot) Categories() []string {
	if s == nil {
		return nil
	}
	return s.categories
}

// Levels returns the distinct levels in first-seen order.
func (s *Snapshot) Levels() []string {
	if s == nil {
		return nil
	}
	return s.levels
}

// Len returns the number of points.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// Generation increases by one on every Replace.
func (s *Snapshot) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation
}

// Store owns the current snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
	gen     atomic.Uint64
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Replace flattens groups and installs them as the new snapshot.
// groups are expected to have passed loader.Validate.
func (s *Store) Replace(groups []model.CategoryGroup) *Snapshot {
	points := Flatten(groups)
	snap := &Snapshot{
		points:     points,
		categories: distinct(points, func(p model.Point) string { return p.Category }),
		levels:     distinct(points, func(p model.Point) string { return p.Level }),
		generation: s.gen.Add(1),
	}
	s.current.Store(snap)
	return snap
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Points is shorthand for Snapshot().Points().
func (s *Store) Points() []model.Point { return s.Snapshot().Points() }

// Categories is shorthand for Snapshot().Categories().
func (s *Store) Categories() []string { return s.Snapshot().Categories() }

// Levels is shorthand for Snapshot().Levels().
func (s *Store) Levels() []string { return s.Snapshot().Levels() }

// Flatten produces one point per word, in group order then word order.
func Flatten(groups []model.CategoryGroup) []model.Point {
	defer metrics.Timer(metrics.Flatten)()

	points := make([]model.Point, 0, model.WordCount(groups))
	for _, g := range groups {
		for _, w := range g.Words {
			points = append(points, model.Point{
				Word:     w.Word,
				Category: g.Category,
				Level:    g.Level,
				Coord:    w.Coord,
			})
		}
	}
	return points
}

func distinct(points []model.Point, field func(model.Point) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range points {
		v := field(p)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
