package loader

import "github.com/vanderheijden86/affectmap/pkg/model"

// FallbackCategory names the single category of the built-in dataset.
const FallbackCategory = "示例"

// Fallback returns the minimal dataset substituted when loading fails, so
// the chart is never empty. Each call returns a fresh copy.
func Fallback() []model.CategoryGroup {
	return []model.CategoryGroup{
		{
			Category: FallbackCategory,
			Level:    "中等 (Medium)",
			Words: []model.WordEntry{
				{Word: "示例词汇", Coord: model.Coord{0.0, 0.0}},
				{Word: "数据加载失败", Coord: model.Coord{-0.5, -0.5}},
			},
		},
	}
}
