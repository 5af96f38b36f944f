package loader

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Common errors.
var (
	// ErrInvalidDataset matches every schema violation reported by Validate.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrEmptySource is returned when a source yields no bytes.
	ErrEmptySource = errors.New("dataset source is empty")
)

// ShapeError reports that the document is not a non-empty sequence of
// category groups.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("dataset shape: %s", e.Reason)
}

func (e *ShapeError) Is(target error) bool { return target == ErrInvalidDataset }

// FieldError reports a missing or malformed field. WordIndex is -1 when the
// problem is on the group itself.
type FieldError struct {
	Index     int
	WordIndex int
	Field     string
}

func (e *FieldError) Error() string {
	if e.WordIndex < 0 {
		return fmt.Sprintf("group %d is incomplete: missing or invalid %q", e.Index+1, e.Field)
	}
	return fmt.Sprintf("group %d word %d is incomplete: missing or invalid %q", e.Index+1, e.WordIndex+1, e.Field)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidDataset }

// RangeError reports a coordinate outside [-1, 1].
type RangeError struct {
	Word  string
	Coord model.Coord
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("coordinate of word %q out of range [-1, 1]: %v", e.Word, e.Coord)
}

func (e *RangeError) Is(target error) bool { return target == ErrInvalidDataset }

// Position locates a word inside the document.
type Position struct {
	Index     int
	WordIndex int
}

// DuplicateKeyError reports two words sharing a (word, category, level) key.
type DuplicateKeyError struct {
	Key    model.Key
	First  Position
	Second Position
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate point %q at group %d word %d (first seen at group %d word %d)",
		e.Key.String(), e.Second.Index+1, e.Second.WordIndex+1, e.First.Index+1, e.First.WordIndex+1)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrInvalidDataset }

// ParseError wraps a malformed JSON document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing dataset: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError reports a failure to obtain the raw document. Status is the
// HTTP status code when the source answered with a non-success status.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: HTTP error! status: %d", e.Source, e.Status)
	}
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
