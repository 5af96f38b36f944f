package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single HTTP fetch.
const DefaultFetchTimeout = 15 * time.Second

// Fetcher yields the raw bytes of a dataset document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// FileFetcher reads a dataset from the local filesystem.
type FileFetcher struct {
	Path string
}

// Name returns the file path.
func (f FileFetcher) Name() string { return f.Path }

// Fetch reads the whole file.
func (f FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: f.Path, Err: err}
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FetchError{Source: f.Path, Err: fmt.Errorf("no dataset found at %s: %w", f.Path, err)}
		}
		return nil, &FetchError{Source: f.Path, Err: err}
	}
	return data, nil
}

// HTTPFetcher downloads a dataset over HTTP(S).
type HTTPFetcher struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// Name returns the URL.
func (f HTTPFetcher) Name() string { return f.URL }

// Fetch performs a GET and returns the body of a 2xx response.
func (f HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: f.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: f.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: f.URL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxDocumentSize))
	if err != nil {
		return nil, &FetchError{Source: f.URL, Err: fmt.Errorf("reading body: %w", err)}
	}
	return data, nil
}

// BytesFetcher serves a fixed document. Useful for embedded data and tests.
type BytesFetcher struct {
	Label string
	Data  []byte
}

// Name returns the label.
func (f BytesFetcher) Name() string { return f.Label }

// Fetch returns the document.
func (f BytesFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: f.Label, Err: err}
	}
	return f.Data, nil
}

// NewFetcher picks an HTTP or file fetcher for source.
func NewFetcher(source string, timeout time.Duration) Fetcher {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return HTTPFetcher{URL: source, Timeout: timeout}
	}
	return FileFetcher{Path: source}
}
