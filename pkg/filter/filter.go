// Package filter implements the category/level selection that decides which
// points are visible.
//
// Selections are permissive: a value that matches no known category or level
// is accepted and simply yields an empty visible set. Option surfaces are
// expected to offer only values from the store plus model.All.
package filter

import (
	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Selection is the current filter choice. The zero value is not valid; use
// DefaultSelection.
type Selection struct {
	Category string `json:"category" yaml:"category"`
	Level    string `json:"level" yaml:"level"`
}

// DefaultSelection selects everything.
func DefaultSelection() Selection {
	return Selection{Category: model.All, Level: model.All}
}

// Matches reports whether p passes both predicates.
func (s Selection) Matches(p model.Point) bool {
	return (s.Category == model.All || p.Category == s.Category) &&
		(s.Level == model.All || p.Level == s.Level)
}

// IsDefault reports whether nothing is filtered out.
func (s Selection) IsDefault() bool {
	return s.Category == model.All && s.Level == model.All
}

// State holds the selection. It is owned by a single event loop.
type State struct {
	sel Selection
}

// New returns a state selecting everything.
func New() *State {
	return &State{sel: DefaultSelection()}
}

// Selection returns the current selection.
func (st *State) Selection() Selection { return st.sel }

// SetCategory changes the category and reports whether it changed.
// An empty value is treated as model.All.
func (st *State) SetCategory(v string) bool {
	if v == "" {
		v = model.All
	}
	if st.sel.Category == v {
		return false
	}
	st.sel.Category = v
	return true
}

// SetLevel changes the level and reports whether it changed.
// An empty value is treated as model.All.
func (st *State) SetLevel(v string) bool {
	if v == "" {
		v = model.All
	}
	if st.sel.Level == v {
		return false
	}
	st.sel.Level = v
	return true
}

// Reset selects everything again and reports whether anything changed.
func (st *State) Reset() bool {
	if st.sel.IsDefault() {
		return false
	}
	st.sel = DefaultSelection()
	return true
}

// Visible returns the points matching the selection in their original
// order. The result is a new slice.
func (st *State) Visible(points []model.Point) []model.Point {
	defer metrics.Timer(metrics.FilterCompute)()

	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if st.sel.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Options prepends model.All to the known values.
func Options(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, model.All)
	for _, v := range values {
		if v != model.All {
			out = append(out, v)
		}
	}
	return out
}

// Cycle returns the option after (dir > 0) or before (dir < 0) current,
// wrapping around. An unknown current value restarts at the first option.
func Cycle(options []string, current string, dir int) string {
	if len(options) == 0 {
		return model.All
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0]
	}
	n := len(options)
	switch {
	case dir > 0:
		idx = (idx + 1) % n
	case dir < 0:
		idx = (idx - 1 + n) % n
	}
	return options[idx]
}
