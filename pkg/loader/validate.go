package loader

import (
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Validate checks a decoded document against the category group schema.
//
// raw is either the generic value produced by decoding JSON (slices of
// map[string]any) or an already typed []model.CategoryGroup. The groups are
// returned unchanged on success. Every failure is one of *ShapeError,
// *FieldError, *RangeError or *DuplicateKeyError; Validate never panics.
func Validate(raw any) ([]model.CategoryGroup, error) {
	switch v := raw.(type) {
	case []model.CategoryGroup:
		if err := validateTyped(v); err != nil {
			return nil, err
		}
		return v, nil
	case []any:
		return validateGeneric(v)
	case nil:
		return nil, &ShapeError{Reason: "expected an array of category groups, got null"}
	default:
		return nil, &ShapeError{Reason: "expected an array of category groups"}
	}
}

func validateGeneric(items []any) ([]model.CategoryGroup, error) {
	if len(items) == 0 {
		return nil, &ShapeError{Reason: "dataset must not be empty"}
	}

	groups := make([]model.CategoryGroup, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ShapeError{Reason: "every element must be a category group object"}
		}

		category, ok := nonEmptyString(obj["category"])
		if !ok {
			return nil, &FieldError{Index: i, WordIndex: -1, Field: "category"}
		}
		level, ok := nonEmptyString(obj["level"])
		if !ok {
			return nil, &FieldError{Index: i, WordIndex: -1, Field: "level"}
		}
		rawWords, ok := obj["words"].([]any)
		if !ok || len(rawWords) == 0 {
			return nil, &FieldError{Index: i, WordIndex: -1, Field: "words"}
		}

		group := model.CategoryGroup{
			Category: category,
			Level:    level,
			Words:    make([]model.WordEntry, 0, len(rawWords)),
		}
		for j, rw := range rawWords {
			wobj, ok := rw.(map[string]any)
			if !ok {
				return nil, &FieldError{Index: i, WordIndex: j, Field: "word"}
			}
			word, ok := nonEmptyString(wobj["word"])
			if !ok {
				return nil, &FieldError{Index: i, WordIndex: j, Field: "word"}
			}
			coord, ok := numericPair(wobj["coord"])
			if !ok {
				return nil, &FieldError{Index: i, WordIndex: j, Field: "coord"}
			}
			if !coord.InRange() {
				return nil, &RangeError{Word: word, Coord: coord}
			}
			group.Words = append(group.Words, model.WordEntry{Word: word, Coord: coord})
		}
		groups = append(groups, group)
	}

	if err := checkUnique(groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func validateTyped(groups []model.CategoryGroup) error {
	if len(groups) == 0 {
		return &ShapeError{Reason: "dataset must not be empty"}
	}
	for i, g := range groups {
		switch {
		case g.Category == "":
			return &FieldError{Index: i, WordIndex: -1, Field: "category"}
		case g.Level == "":
			return &FieldError{Index: i, WordIndex: -1, Field: "level"}
		case len(g.Words) == 0:
			return &FieldError{Index: i, WordIndex: -1, Field: "words"}
		}
		for j, w := range g.Words {
			if w.Word == "" {
				return &FieldError{Index: i, WordIndex: j, Field: "word"}
			}
			if !w.Coord.InRange() {
				return &RangeError{Word: w.Word, Coord: w.Coord}
			}
		}
	}
	return checkUnique(groups)
}

func checkUnique(groups []model.CategoryGroup) error {
	seen := make(map[model.Key]Position, model.WordCount(groups))
	for i, g := range groups {
		for j, w := range g.Words {
			key := model.Key{Word: w.Word, Category: g.Category, Level: g.Level}
			pos := Position{Index: i, WordIndex: j}
			if first, dup := seen[key]; dup {
				return &DuplicateKeyError{Key: key, First: first, Second: pos}
			}
			seen[key] = pos
		}
	}
	return nil
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

func numericPair(v any) (model.Coord, bool) {
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return model.Coord{}, false
	}
	x, ok := number(items[0])
	if !ok {
		return model.Coord{}, false
	}
	y, ok := number(items[1])
	if !ok {
		return model.Coord{}, false
	}
	return model.Coord{x, y}, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
