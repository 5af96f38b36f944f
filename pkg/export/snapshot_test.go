package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/store"
	"github.com/vanderheijden86/affectmap/pkg/testutil"
)

func samplePoints() []model.Point {
	return store.Flatten(testutil.Sample())
}

func TestSaveSnapshot_SVG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.svg")
	err := SaveSnapshot(SnapshotOptions{Path: out, Points: samplePoints(), Footer: "2 categories, 2 levels, 6 words"})
	if err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var doc interface{}
	if err := xml.Unmarshal(content, &doc); err != nil {
		t.Fatalf("SVG is not valid XML: %v", err)
	}
	s := string(content)
	for _, want := range []string{DefaultTitle, "愉悦度 (Valence)", "高愉悦/低唤醒", "6 words"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestSaveSnapshot_PNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.png")
	if err := SaveSnapshot(SnapshotOptions{Path: out, Points: samplePoints()}); err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}
}

func TestSaveSnapshot_DefaultsToSVGExtension(t *testing.T) {
	base := filepath.Join(t.TempDir(), "chart")
	if err := SaveSnapshot(SnapshotOptions{Path: base, Points: samplePoints()}); err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Errorf("expected %s.svg: %v", base, err)
	}
}

func TestSaveSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts SnapshotOptions
	}{
		{"no path", SnapshotOptions{}},
		{"bad format", SnapshotOptions{Path: filepath.Join(t.TempDir(), "x.gif"), Format: "gif"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SaveSnapshot(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveSnapshot_EmptyChartStillRenders(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, "svg", SnapshotOptions{}); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if !strings.Contains(buf.String(), "(0,0)") {
		t.Error("frame missing from empty chart")
	}
}

func TestWriteSnapshot_Highlight(t *testing.T) {
	pts := samplePoints()
	key := pts[0].Key()
	var plain, hl bytes.Buffer
	if err := WriteSnapshot(&plain, "svg", SnapshotOptions{Points: pts}); err != nil {
		t.Fatal(err)
	}
	if err := WriteSnapshot(&hl, "svg", SnapshotOptions{Points: pts, Highlight: &key}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(hl.String(), `r="10"`) || strings.Contains(plain.String(), `r="10"`) {
		t.Error("highlighted marker should be the only radius-10 circle")
	}
}

func TestSaveSnapshots_Concurrent(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.svg"), filepath.Join(dir, "b.png")}
	if err := SaveSnapshots(context.Background(), paths, SnapshotOptions{Points: samplePoints()}); err != nil {
		t.Fatalf("SaveSnapshots: %v", err)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}
}
