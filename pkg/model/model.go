// Package model defines the emotion dataset types shared by every layer of
// affectmap: the raw category groups read from disk and the flattened points
// that the filter, scene and interaction layers operate on.
package model

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// All is the filter value that matches every category or level.
const All = "all"

// CoordMin and CoordMax bound both axes of a valid coordinate.
const (
	CoordMin = -1.0
	CoordMax = 1.0
)

// Coord is a (valence, arousal) pair. It encodes as a 2-element JSON array.
type Coord [2]float64

// X returns the valence component.
func (c Coord) X() float64 { return c[0] }

// Y returns the arousal component.
func (c Coord) Y() float64 { return c[1] }

// InRange reports whether both components lie within [CoordMin, CoordMax].
func (c Coord) InRange() bool {
	return c[0] >= CoordMin && c[0] <= CoordMax && c[1] >= CoordMin && c[1] <= CoordMax
}

func (c Coord) String() string {
	return fmt.Sprintf("[%.2f, %.2f]", c[0], c[1])
}

// WordEntry is one word inside a category group.
type WordEntry struct {
	Word  string `json:"word"`
	Coord Coord  `json:"coord"`
}

// CategoryGroup is the unit of the input document: all words sharing one
// category and intensity level.
type CategoryGroup struct {
	Category string      `json:"category"`
	Level    string      `json:"level"`
	Words    []WordEntry `json:"words"`
}

// Key identifies a point across renders. It must be unique in a dataset.
type Key struct {
	Word     string
	Category string
	Level    string
}

// String renders the key as word|category|level.
func (k Key) String() string {
	return k.Word + "|" + k.Category + "|" + k.Level
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, bool) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return Key{}, false
	}
	return Key{Word: parts[0], Category: parts[1], Level: parts[2]}, true
}

// Point is a flattened word tagged with its group's category and level.
// Points are immutable once created.
type Point struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Level    string `json:"level"`
	Coord    Coord  `json:"coord"`
}

// Key returns the identity key of the point.
func (p Point) Key() Key {
	return Key{Word: p.Word, Category: p.Category, Level: p.Level}
}

// Keys returns the identity keys of points in order.
func Keys(points []Point) []Key {
	keys := make([]Key, len(points))
	for i, p := range points {
		keys[i] = p.Key()
	}
	return keys
}

// WordCount returns the total number of words across groups.
func WordCount(groups []CategoryGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Words)
	}
	return n
}

// MarshalGroups encodes groups as the canonical JSON document.
func MarshalGroups(groups []CategoryGroup) ([]byte, error) {
	return json.MarshalIndent(groups, "", "  ")
}
