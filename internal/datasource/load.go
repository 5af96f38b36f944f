package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/vanderheijden86/affectmap/pkg/loader"
	"github.com/vanderheijden86/affectmap/pkg/model"
)

// Fetcher returns the loader.Fetcher for location. Directories are
// searched with DiscoverSources and the freshest dataset is used.
func Fetcher(location string, timeout time.Duration) (loader.Fetcher, error) {
	if IsURL(location) {
		return loader.NewFetcher(location, timeout), nil
	}
	src, err := Detect(location)
	if err != nil {
		sources, derr := DiscoverSources(location)
		if derr != nil {
			return nil, err
		}
		if src, err = SelectBestSource(sources); err != nil {
			return nil, err
		}
	}
	return FetcherFor(src, timeout), nil
}

// FetcherFor returns the fetcher matching a detected source.
func FetcherFor(src DataSource, timeout time.Duration) loader.Fetcher {
	switch src.Type {
	case SourceTypeSQLite:
		return SQLiteFetcher{Path: src.Location}
	case SourceTypeJSONURL:
		return loader.HTTPFetcher{URL: src.Location, Timeout: timeout}
	default:
		return loader.FileFetcher{Path: src.Location}
	}
}

// SQLiteFetcher reads an exported database and re-encodes it as a dataset
// document, so it passes through the same validation as JSON sources.
type SQLiteFetcher struct {
	Path string
}

// Name implements loader.Fetcher.
func (f SQLiteFetcher) Name() string { return f.Path }

// Fetch implements loader.Fetcher.
func (f SQLiteFetcher) Fetch(ctx context.Context) ([]byte, error) {
	reader, err := NewSQLiteReader(f.Path)
	if err != nil {
		return nil, &loader.FetchError{Source: f.Path, Err: err}
	}
	defer reader.Close()

	groups, err := reader.LoadGroups(ctx)
	if err != nil {
		return nil, &loader.FetchError{Source: f.Path, Err: err}
	}
	data, err := model.MarshalGroups(groups)
	if err != nil {
		return nil, fmt.Errorf("encode groups: %w", err)
	}
	return data, nil
}
