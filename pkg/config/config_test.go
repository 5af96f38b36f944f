package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Layout() != scene.DefaultLayout() {
		t.Errorf("expected default layout, got %+v", cfg.Layout())
	}
	if cfg.Transition() != 200*time.Millisecond {
		t.Errorf("expected 200ms transition, got %v", cfg.Transition())
	}
	if cfg.Filter.Category != model.All || cfg.Filter.Level != model.All {
		t.Errorf("expected unfiltered selection, got %+v", cfg.Filter)
	}
	if cfg.Watch.Enabled {
		t.Error("watching should be opt-in")
	}
	if cfg.FetchTimeout() != 15*time.Second {
		t.Errorf("expected 15s fetch timeout, got %v", cfg.FetchTimeout())
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Chart.Width != 800 {
		t.Errorf("expected default config, got width %v", cfg.Chart.Width)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
dataset: ~/data/emotions.json

filter:
  category: 快乐

chart:
  width: 1024
  height: 768
  margins:
    top: 40
    right: 40
    bottom: 40
    left: 40

highlight:
  duration_ms: 0

watch:
  enabled: true
  debounce_ms: 500
  force_poll: true

fetch:
  timeout_seconds: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "data/emotions.json"); cfg.Dataset != want {
		t.Errorf("expected expanded dataset path %q, got %q", want, cfg.Dataset)
	}
	if cfg.Filter.Category != "快乐" || cfg.Filter.Level != model.All {
		t.Errorf("unexpected filter %+v", cfg.Filter)
	}
	l := cfg.Layout()
	if l.Width != 1024 || l.Height != 768 || l.Margin.Left != 40 {
		t.Errorf("unexpected layout %+v", l)
	}
	if cfg.Transition() != 0 {
		t.Errorf("expected zero transition, got %v", cfg.Transition())
	}
	if !cfg.Watch.Enabled || !cfg.Watch.ForcePoll || cfg.Debounce() != 500*time.Millisecond {
		t.Errorf("unexpected watch config %+v", cfg.Watch)
	}
	if cfg.FetchTimeout() != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.FetchTimeout())
	}
}

func TestLoadFrom_URLDatasetUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("dataset: https://example.com/data.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dataset != "https://example.com/data.json" {
		t.Errorf("got %q", cfg.Dataset)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("chart: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLayout_InvalidFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chart.Width = 50 // smaller than the margins
	if cfg.Layout() != scene.DefaultLayout() {
		t.Errorf("expected default layout, got %+v", cfg.Layout())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Dataset = "/tmp/data.json"
	cfg.Filter.Level = "高"
	cfg.Watch.Enabled = true

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Dataset != cfg.Dataset || loaded.Filter != cfg.Filter || !loaded.Watch.Enabled {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.Layout() != cfg.Layout() {
		t.Errorf("layout mismatch: %+v", loaded.Layout())
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	if got := ConfigPath(); got != "/xdg/config/affectmap/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := StateDir(); got != "/xdg/state/affectmap" {
		t.Errorf("StateDir = %q", got)
	}
}

func TestLoad_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg := DefaultConfig()
	cfg.Dataset = "x.json"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Dataset != "x.json" {
		t.Errorf("Dataset = %q", loaded.Dataset)
	}
}
