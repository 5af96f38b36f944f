// Package datasource detects where a dataset lives and returns the matching
// loader.Fetcher: a JSON file, an HTTP(S) URL or a SQLite database written
// by the SQLite export.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database produced by --export-sqlite
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONFile is a local JSON document
	SourceTypeJSONFile SourceType = "json_file"
	// SourceTypeJSONURL is a JSON document served over HTTP(S)
	SourceTypeJSONURL SourceType = "json_url"
)

// Priority values for source types (higher = preferred)
const (
	PrioritySQLite   = 100
	PriorityJSONFile = 50
	PriorityJSONURL  = 10
)

// DataSource represents a potential source of dataset documents
type DataSource struct {
	Type     SourceType `json:"type"`
	Location string     `json:"location"`
	// Priority breaks ties when modification times are equal.
	Priority int       `json:"priority"`
	ModTime  time.Time `json:"mod_time"`
	Size     int64     `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	if s.Type == SourceTypeJSONURL {
		return fmt.Sprintf("%s (%s)", s.Location, s.Type)
	}
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)", s.Location, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// IsURL reports whether location is an HTTP(S) URL.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// IsSQLite reports whether path names a SQLite database by extension.
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		return true
	}
	return false
}

// Detect classifies location. Local files are stat'ed; a missing file is
// an error.
func Detect(location string) (DataSource, error) {
	if location == "" {
		return DataSource{}, fmt.Errorf("empty dataset location")
	}
	if IsURL(location) {
		return DataSource{Type: SourceTypeJSONURL, Location: location, Priority: PriorityJSONURL}, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return DataSource{}, fmt.Errorf("dataset %s: %w", location, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("dataset %s is a directory", location)
	}
	src := DataSource{Type: SourceTypeJSONFile, Location: location, Priority: PriorityJSONFile, ModTime: info.ModTime(), Size: info.Size()}
	if IsSQLite(location) {
		src.Type = SourceTypeSQLite
		src.Priority = PrioritySQLite
	}
	return src, nil
}

// DiscoverSources lists the dataset files in dir, freshest first. Empty
// files are skipped.
func DiscoverSources(dir string) ([]DataSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}
	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.ToLower(filepath.Ext(name)) != ".json" && !IsSQLite(name) {
			continue
		}
		src, err := Detect(filepath.Join(dir, name))
		if err != nil || src.Size == 0 {
			continue
		}
		sources = append(sources, src)
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
	return sources, nil
}

// SelectBestSource returns the first discovered source.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	if len(sources) == 0 {
		return DataSource{}, fmt.Errorf("no dataset sources found")
	}
	return sources[0], nil
}
