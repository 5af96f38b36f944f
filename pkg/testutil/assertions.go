package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// AssertPointCount fails if points does not have the expected length.
func AssertPointCount(t *testing.T, points []model.Point, expected int) {
	t.Helper()
	if len(points) != expected {
		t.Errorf("expected %d points, got %d", expected, len(points))
	}
}

// AssertNoDuplicateKeys fails if two points share an identity key.
func AssertNoDuplicateKeys(t *testing.T, points []model.Point) {
	t.Helper()
	seen := make(map[model.Key]bool, len(points))
	for _, p := range points {
		if seen[p.Key()] {
			t.Errorf("duplicate key %q", p.Key().String())
		}
		seen[p.Key()] = true
	}
}

// AssertRenderState fails if the reconciler's render state differs from the
// keys of visible.
func AssertRenderState(t *testing.T, r *scene.Reconciler, visible []model.Point) {
	t.Helper()
	if err := r.CheckInvariant(visible); err != nil {
		t.Error(err)
	}
}

// AssertKeys compares key sets regardless of order.
func AssertKeys(t *testing.T, got []model.Point, want ...string) {
	t.Helper()
	gotKeys := make([]string, len(got))
	for i, p := range got {
		gotKeys[i] = p.Key().String()
	}
	sort.Strings(gotKeys)
	sort.Strings(want)
	if strings.Join(gotKeys, ",") != strings.Join(want, ",") {
		t.Errorf("keys mismatch:\nexpected: %v\nactual:   %v", want, gotKeys)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteDataset writes groups as a dataset document under dir and returns
// the path.
func WriteDataset(t *testing.T, dir string, groups []model.CategoryGroup) string {
	t.Helper()
	data, err := model.MarshalGroups(groups)
	if err != nil {
		t.Fatalf("failed to marshal dataset: %v", err)
	}
	return WriteFile(t, filepath.Join(dir, "data.json"), data)
}

// WriteFile writes raw bytes to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
