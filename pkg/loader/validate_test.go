package loader

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/affectmap/pkg/model"
)

func TestParseBytes_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr any
	}{
		{"not an array", `{"category":"快乐"}`, &ShapeError{}},
		{"null", `null`, &ShapeError{}},
		{"empty array", `[]`, &ShapeError{}},
		{"element not object", `[1]`, &ShapeError{}},
		{"missing category", `[{"level":"高","words":[{"word":"a","coord":[0,0]}]}]`, &FieldError{}},
		{"empty category", `[{"category":"","level":"高","words":[{"word":"a","coord":[0,0]}]}]`, &FieldError{}},
		{"missing level", `[{"category":"快乐","words":[{"word":"a","coord":[0,0]}]}]`, &FieldError{}},
		{"words not array", `[{"category":"快乐","level":"高","words":"a"}]`, &FieldError{}},
		{"empty words", `[{"category":"快乐","level":"高","words":[]}]`, &FieldError{}},
		{"missing word", `[{"category":"快乐","level":"高","words":[{"coord":[0,0]}]}]`, &FieldError{}},
		{"coord too short", `[{"category":"快乐","level":"高","words":[{"word":"a","coord":[0]}]}]`, &FieldError{}},
		{"coord not numeric", `[{"category":"快乐","level":"高","words":[{"word":"a","coord":["0","1"]}]}]`, &FieldError{}},
		{"x out of range", `[{"category":"快乐","level":"高","words":[{"word":"a","coord":[1.01,0]}]}]`, &RangeError{}},
		{"y out of range", `[{"category":"快乐","level":"高","words":[{"word":"a","coord":[0,-1.5]}]}]`, &RangeError{}},
		{"duplicate key", `[
			{"category":"快乐","level":"高","words":[{"word":"a","coord":[0,0]}]},
			{"category":"快乐","level":"高","words":[{"word":"a","coord":[0.5,0.5]}]}
		]`, &DuplicateKeyError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidDataset) {
				t.Errorf("error %v does not match ErrInvalidDataset", err)
			}
			switch tt.wantErr.(type) {
			case *ShapeError:
				var e *ShapeError
				if !errors.As(err, &e) {
					t.Errorf("got %T, want ShapeError", err)
				}
			case *FieldError:
				var e *FieldError
				if !errors.As(err, &e) {
					t.Errorf("got %T, want FieldError", err)
				}
			case *RangeError:
				var e *RangeError
				if !errors.As(err, &e) {
					t.Errorf("got %T, want RangeError", err)
				}
			case *DuplicateKeyError:
				var e *DuplicateKeyError
				if !errors.As(err, &e) {
					t.Errorf("got %T, want DuplicateKeyError", err)
				}
			}
		})
	}
}

func TestParseBytes_BoundaryCoordinatesAccepted(t *testing.T) {
	doc := `[{"category":"快乐","level":"高","words":[
		{"word":"a","coord":[1,1]},
		{"word":"b","coord":[-1,-1]},
		{"word":"c","coord":[1.0,-1.0]}
	]}]`
	groups, err := ParseBytes([]byte(doc), nil)
	if err != nil {
		t.Fatalf("boundary coordinates rejected: %v", err)
	}
	if model.WordCount(groups) != 3 {
		t.Errorf("got %d words", model.WordCount(groups))
	}
}

func TestParseBytes_SameWordDifferentLevels(t *testing.T) {
	doc := `[
		{"category":"低能量","level":"低","words":[{"word":"平静","coord":[-0.1,-0.5]}]},
		{"category":"低能量","level":"中","words":[{"word":"平静","coord":[-0.1,-0.4]}]}
	]`
	if _, err := ParseBytes([]byte(doc), nil); err != nil {
		t.Errorf("distinct keys rejected: %v", err)
	}
}

func TestFieldError_Message(t *testing.T) {
	err := &FieldError{Index: 0, WordIndex: 2, Field: "coord"}
	if got := err.Error(); got != `group 1 word 3 is incomplete: missing or invalid "coord"` {
		t.Errorf("message = %q", got)
	}
}

func TestDuplicateKeyError_Positions(t *testing.T) {
	doc := `[{"category":"c","level":"l","words":[
		{"word":"a","coord":[0,0]},
		{"word":"b","coord":[0,0]},
		{"word":"a","coord":[0.1,0]}
	]}]`
	_, err := ParseBytes([]byte(doc), nil)
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v", err)
	}
	if dup.First != (Position{0, 0}) || dup.Second != (Position{0, 2}) {
		t.Errorf("positions = %+v / %+v", dup.First, dup.Second)
	}
}

func TestValidate_Typed(t *testing.T) {
	good := []model.CategoryGroup{{Category: "c", Level: "l", Words: []model.WordEntry{{Word: "w", Coord: model.Coord{0.5, -0.5}}}}}
	if _, err := Validate(good); err != nil {
		t.Errorf("valid typed dataset rejected: %v", err)
	}

	nan := []model.CategoryGroup{{Category: "c", Level: "l", Words: []model.WordEntry{{Word: "w", Coord: model.Coord{math.NaN(), 0}}}}}
	var rangeErr *RangeError
	if _, err := Validate(nan); !errors.As(err, &rangeErr) {
		t.Errorf("NaN coordinate: got %v, want RangeError", err)
	}

	if _, err := Validate("nonsense"); !errors.Is(err, ErrInvalidDataset) {
		t.Errorf("wrong root type: got %v", err)
	}
}

func TestValidate_AcceptsEveryInRangeDataset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		grp := model.CategoryGroup{Category: "c", Level: "l"}
		for i := 0; i < n; i++ {
			grp.Words = append(grp.Words, model.WordEntry{
				Word: string(rune('a' + i)),
				Coord: model.Coord{
					rapid.Float64Range(-1, 1).Draw(t, "x"),
					rapid.Float64Range(-1, 1).Draw(t, "y"),
				},
			})
		}
		data, err := model.MarshalGroups([]model.CategoryGroup{grp})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ParseBytes(data, nil); err != nil {
			t.Fatalf("rejected: %v", err)
		}
	})
}

func TestValidate_RejectsEveryOutOfRangeCoordinate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bad := rapid.OneOf(
			rapid.Float64Range(1.0000001, 1e6),
			rapid.Float64Range(-1e6, -1.0000001),
		).Draw(t, "bad")
		good := rapid.Float64Range(-1, 1).Draw(t, "good")
		coord := model.Coord{bad, good}
		if rapid.Bool().Draw(t, "swap") {
			coord = model.Coord{good, bad}
		}
		groups := []model.CategoryGroup{{Category: "c", Level: "l", Words: []model.WordEntry{{Word: "w", Coord: coord}}}}
		var rangeErr *RangeError
		if _, err := Validate(groups); !errors.As(err, &rangeErr) {
			t.Fatalf("coord %v: got %v", coord, err)
		}
	})
}
