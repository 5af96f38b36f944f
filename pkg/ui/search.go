package ui

import (
	"github.com/sahilm/fuzzy"

	"github.com/vanderheijden86/affectmap/pkg/model"
)

// wordSource adapts a point slice to fuzzy.Source, matching on the word
// followed by its category so "开心" and "开心 快乐" both work.
type wordSource []model.Point

func (s wordSource) String(i int) string { return s[i].Word + " " + s[i].Category }
func (s wordSource) Len() int            { return len(s) }

// findWord returns the best fuzzy match for query among points.
func findWord(query string, points []model.Point) (model.Point, bool) {
	if query == "" || len(points) == 0 {
		return model.Point{}, false
	}
	matches := fuzzy.FindFrom(query, wordSource(points))
	if len(matches) == 0 {
		return model.Point{}, false
	}
	return points[matches[0].Index], true
}
