// Package loader turns a raw emotion dataset document into validated
// category groups.
//
// The pipeline is fetch -> parse -> validate. Each stage reports its own
// error type (FetchError, ParseError, and the schema errors from Validate)
// so the load boundary can tell the user what went wrong before it falls
// back to the built-in dataset.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/affectmap/pkg/debug"
	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/model"
)

// DatasetEnvVar overrides the dataset location used when none is configured.
const DatasetEnvVar = "AFFECTMAP_DATA"

// DefaultDatasetPath is the location the viewer reads when nothing else is set.
const DefaultDatasetPath = "assets/json/data.json"

// DefaultMaxDocumentSize caps how many bytes Parse reads from a source (32MB).
const DefaultMaxDocumentSize = 32 << 20

// ParseOptions configures the behavior of ParseWithOptions.
type ParseOptions struct {
	// WarningHandler is called with non-fatal warnings (e.g. a stripped BOM).
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// MaxSize sets the maximum document size in bytes.
	// If 0, uses DefaultMaxDocumentSize.
	MaxSize int64
}

// DatasetPath returns the dataset location, respecting AFFECTMAP_DATA.
func DatasetPath(configured string) string {
	if env := os.Getenv(DatasetEnvVar); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return DefaultDatasetPath
}

// Parse decodes and validates a JSON dataset document.
func Parse(r io.Reader) ([]model.CategoryGroup, error) {
	return ParseWithOptions(r, ParseOptions{})
}

// ParseWithOptions decodes and validates a JSON dataset document.
func ParseWithOptions(r io.Reader, opts ParseOptions) ([]model.CategoryGroup, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("loader: %s", msg) }
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("reading document: %w", err)}
	}
	if int64(len(data)) > maxSize {
		return nil, &ParseError{Err: fmt.Errorf("document exceeds %d bytes", maxSize)}
	}
	return ParseBytes(data, warn)
}

// ParseBytes decodes and validates an in-memory document.
func ParseBytes(data []byte, warn func(string)) ([]model.CategoryGroup, error) {
	if warn == nil {
		warn = func(string) {}
	}
	if stripped := stripBOM(data); len(stripped) != len(data) {
		warn("stripped UTF-8 byte order mark")
		data = stripped
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Err: ErrEmptySource}
	}

	raw, err := decode(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return Validate(raw)
}

func decode(data []byte) (any, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	// Anything after the first value is trailing garbage.
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return raw, nil
}

// Load fetches, parses and validates a dataset from src.
func Load(ctx context.Context, src Fetcher) ([]model.CategoryGroup, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := ParseBytes(data, func(msg string) {
		debug.Log("loader: %s: %s", src.Name(), msg)
	})
	if err != nil {
		return nil, err
	}
	debug.Log("loader: loaded %d groups (%d words) from %s", len(groups), model.WordCount(groups), src.Name())
	return groups, nil
}

// LoadFile is a convenience wrapper around Load for a local file.
func LoadFile(path string) ([]model.CategoryGroup, error) {
	return Load(context.Background(), FileFetcher{Path: path})
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
