package store

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Centroid is the mean position of one category's words.
type Centroid struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Valence  float64 `json:"valence"`
	Arousal  float64 `json:"arousal"`
	// Population standard deviation per axis.
	ValenceStdDev float64 `json:"valence_stddev"`
	ArousalStdDev float64 `json:"arousal_stddev"`
}

// Summary describes a snapshot for the stats line and robot output.
type Summary struct {
	Categories int        `json:"categories"`
	Levels     int        `json:"levels"`
	Words      int        `json:"words"`
	Centroids  []Centroid `json:"centroids"`
}

// String renders the stats line shown under the chart.
func (s Summary) String() string {
	return fmt.Sprintf("%d categories, %d levels, %d words", s.Categories, s.Levels, s.Words)
}

// Summary computes counts and per-category centroids, in category order.
func (s *Snapshot) Summary() Summary {
	sum := Summary{
		Categories: len(s.Categories()),
		Levels:     len(s.Levels()),
		Words:      s.Len(),
	}

	xs := make(map[string][]float64, len(s.Categories()))
	ys := make(map[string][]float64, len(s.Categories()))
	for _, p := range s.Points() {
		xs[p.Category] = append(xs[p.Category], p.Coord.X())
		ys[p.Category] = append(ys[p.Category], p.Coord.Y())
	}
	for _, cat := range s.Categories() {
		vx, vy := xs[cat], ys[cat]
		c := Centroid{Category: cat, Count: len(vx)}
		c.Valence, c.ValenceStdDev = stat.PopMeanStdDev(vx, nil)
		c.Arousal, c.ArousalStdDev = stat.PopMeanStdDev(vy, nil)
		sum.Centroids = append(sum.Centroids, c)
	}
	return sum
}

// CountBy tallies points per category.
func CountBy(points []model.Point) map[string]int {
	counts := make(map[string]int)
	for _, p := range points {
		counts[p.Category]++
	}
	return counts
}
