package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/affectmap/pkg/model"
)

const sampleDoc = `[
  {"category":"快乐","level":"高","words":[
    {"word":"开心","coord":[0.8,0.9]},
    {"word":"兴奋","coord":[0.7,0.95]}
  ]},
  {"category":"悲伤","level":"低","words":[
    {"word":"失落","coord":[-0.5,-0.6]}
  ]}
]`

func TestParse_Valid(t *testing.T) {
	groups, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(groups) != 2 || model.WordCount(groups) != 3 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Words[0].Coord != (model.Coord{0.8, 0.9}) {
		t.Errorf("coord = %v", groups[0].Words[0].Coord)
	}
}

func TestParse_StripsBOM(t *testing.T) {
	var warnings []string
	data := append([]byte{0xEF, 0xBB, 0xBF}, sampleDoc...)
	_, err := ParseWithOptions(strings.NewReader(string(data)), ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("Parse with BOM: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"truncated", `[{"category":`},
		{"trailing data", sampleDoc + `[]`},
		{"not json", "category,level\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("got %v (%T), want ParseError", err, err)
			}
		})
	}
}

func TestParse_EmptyIsErrEmptySource(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("got %v, want ErrEmptySource", err)
	}
}

func TestParseWithOptions_MaxSize(t *testing.T) {
	_, err := ParseWithOptions(strings.NewReader(sampleDoc), ParseOptions{MaxSize: 10})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("got %v, want ParseError for oversized document", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	groups, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("got %d groups", len(groups))
	}

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("missing file: got %v, want FetchError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("FetchError should unwrap to ErrNotExist: %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleDoc))
		case "/slow.json":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(sampleDoc))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("ok", func(t *testing.T) {
		groups, err := Load(context.Background(), NewFetcher(srv.URL+"/data.json", time.Second))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(groups) != 2 {
			t.Errorf("got %d groups", len(groups))
		}
	})

	t.Run("404", func(t *testing.T) {
		_, err := Load(context.Background(), NewFetcher(srv.URL+"/missing.json", time.Second))
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("got %v, want FetchError", err)
		}
		if fe.Status != http.StatusNotFound {
			t.Errorf("status = %d", fe.Status)
		}
		if !strings.Contains(err.Error(), "HTTP error! status: 404") {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := Load(context.Background(), HTTPFetcher{URL: srv.URL + "/slow.json", Timeout: 20 * time.Millisecond})
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("got %v, want FetchError", err)
		}
	})
}

func TestNewFetcher(t *testing.T) {
	if _, ok := NewFetcher("HTTPS://example.com/x.json", 0).(HTTPFetcher); !ok {
		t.Error("https URL should use HTTPFetcher")
	}
	if _, ok := NewFetcher("assets/json/data.json", 0).(FileFetcher); !ok {
		t.Error("path should use FileFetcher")
	}
}

func TestDatasetPath(t *testing.T) {
	t.Setenv(DatasetEnvVar, "")
	if got := DatasetPath(""); got != DefaultDatasetPath {
		t.Errorf("default = %q", got)
	}
	if got := DatasetPath("x.json"); got != "x.json" {
		t.Errorf("configured = %q", got)
	}
	t.Setenv(DatasetEnvVar, "env.json")
	if got := DatasetPath("x.json"); got != "env.json" {
		t.Errorf("env override = %q", got)
	}
}

func TestFallbackIsValid(t *testing.T) {
	groups, err := Validate(Fallback())
	if err != nil {
		t.Fatalf("fallback invalid: %v", err)
	}
	if groups[0].Category != FallbackCategory {
		t.Errorf("category = %q", groups[0].Category)
	}
	a, b := Fallback(), Fallback()
	a[0].Words[0].Word = "changed"
	if b[0].Words[0].Word == "changed" {
		t.Error("Fallback must return a fresh copy")
	}
}

func TestBytesFetcher_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, BytesFetcher{Label: "x", Data: []byte(sampleDoc)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}
