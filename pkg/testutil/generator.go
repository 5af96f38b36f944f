// Package testutil provides dataset fixtures and assertions for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// Levels used by generated datasets.
var Levels = []string{"低", "中", "高"}

// GeneratorConfig controls dataset generation.
type GeneratorConfig struct {
	Seed          int64    // Random seed for determinism (0 = use current time)
	Categories    []string // Categories to draw from (default: the built-in palette)
	Levels        []string // Levels to draw from (default: Levels)
	WordsPerGroup int      // Words in every group (default: 3)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		Categories:    scene.CategoryOrder,
		Levels:        Levels,
		WordsPerGroup: 3,
	}
}

// Generator creates category groups with unique identity keys.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = scene.CategoryOrder
	}
	if len(cfg.Levels) == 0 {
		cfg.Levels = Levels
	}
	if cfg.WordsPerGroup <= 0 {
		cfg.WordsPerGroup = 3
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Groups returns one group per (category, level) pair for the first n
// categories. Coordinates are rounded to two decimals.
func (g *Generator) Groups(n int) []model.CategoryGroup {
	if n > len(g.cfg.Categories) {
		n = len(g.cfg.Categories)
	}
	var out []model.CategoryGroup
	for _, cat := range g.cfg.Categories[:n] {
		for _, lvl := range g.cfg.Levels {
			grp := model.CategoryGroup{Category: cat, Level: lvl}
			for i := 0; i < g.cfg.WordsPerGroup; i++ {
				grp.Words = append(grp.Words, model.WordEntry{
					Word:  fmt.Sprintf("%s-%s-%d", cat, lvl, i),
					Coord: model.Coord{g.coord(), g.coord()},
				})
			}
			out = append(out, grp)
		}
	}
	return out
}

func (g *Generator) coord() float64 {
	return math.Round((g.rng.Float64()*2-1)*100) / 100
}

// QuickGroups returns a deterministic dataset with n categories.
func QuickGroups(n int) []model.CategoryGroup {
	return NewDefault().Groups(n)
}

// Sample is the small dataset used across package tests: two categories,
// two levels and a word shared between levels.
func Sample() []model.CategoryGroup {
	return []model.CategoryGroup{
		{Category: "快乐", Level: "高", Words: []model.WordEntry{
			{Word: "开心", Coord: model.Coord{0.8, 0.9}},
			{Word: "兴奋", Coord: model.Coord{0.7, 0.95}},
		}},
		{Category: "快乐", Level: "低", Words: []model.WordEntry{
			{Word: "满足", Coord: model.Coord{0.6, -0.2}},
		}},
		{Category: "悲伤", Level: "高", Words: []model.WordEntry{
			{Word: "绝望", Coord: model.Coord{-0.9, -0.4}},
		}},
		{Category: "悲伤", Level: "低", Words: []model.WordEntry{
			{Word: "失落", Coord: model.Coord{-0.5, -0.6}},
			{Word: "满足", Coord: model.Coord{-0.1, -0.1}},
		}},
	}
}

// SampleJSON is Sample encoded as the input document.
func SampleJSON() []byte {
	data, err := model.MarshalGroups(Sample())
	if err != nil {
		panic(err)
	}
	return data
}

// RapidGroups draws a valid dataset: unique keys and in-range coordinates.
func RapidGroups() *rapid.Generator[[]model.CategoryGroup] {
	return rapid.Custom(func(t *rapid.T) []model.CategoryGroup {
		cats := rapid.SliceOfNDistinct(rapid.SampledFrom(scene.CategoryOrder), 1, 4, rapid.ID[string]).Draw(t, "categories")
		lvls := rapid.SliceOfNDistinct(rapid.SampledFrom(Levels), 1, 3, rapid.ID[string]).Draw(t, "levels")
		var out []model.CategoryGroup
		for _, c := range cats {
			for _, l := range lvls {
				words := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-f]{1,3}`), 1, 5, rapid.ID[string]).Draw(t, "words")
				grp := model.CategoryGroup{Category: c, Level: l}
				for _, w := range words {
					grp.Words = append(grp.Words, model.WordEntry{
						Word: w,
						Coord: model.Coord{
							rapid.Float64Range(model.CoordMin, model.CoordMax).Draw(t, "x"),
							rapid.Float64Range(model.CoordMin, model.CoordMax).Draw(t, "y"),
						},
					})
				}
				out = append(out, grp)
			}
		}
		return out
	})
}
