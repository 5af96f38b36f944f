// Package config handles loading and saving affectmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/affectmap/config.yaml
//   - State:   ~/.local/state/affectmap/ (exported snapshots by default)
//
// Command-line flags override anything read from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/affectmap/pkg/filter"
	"github.com/vanderheijden86/affectmap/pkg/scene"
)

const appName = "affectmap"

// MarginConfig mirrors scene.Margin in surface units.
type MarginConfig struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// ChartConfig sizes static snapshots.
type ChartConfig struct {
	Width   float64      `yaml:"width,omitempty"`
	Height  float64      `yaml:"height,omitempty"`
	Margins MarginConfig `yaml:"margins,omitempty"`
}

// HighlightConfig controls the hover transition.
type HighlightConfig struct {
	DurationMS int `yaml:"duration_ms"` // 0 snaps immediately
}

// WatchConfig controls live reload of a local dataset.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms,omitempty"`
	ForcePoll  bool `yaml:"force_poll,omitempty"` // Skip fsnotify, always poll
}

// FetchConfig bounds remote dataset fetches.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Config is the top-level configuration for affectmap.
type Config struct {
	Dataset   string           `yaml:"dataset,omitempty"` // Path, directory, or http(s) URL
	Filter    filter.Selection `yaml:"filter,omitempty"`  // Initial selection
	Chart     ChartConfig      `yaml:"chart,omitempty"`
	Highlight HighlightConfig  `yaml:"highlight"`
	Watch     WatchConfig      `yaml:"watch,omitempty"`
	Fetch     FetchConfig      `yaml:"fetch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	l := scene.DefaultLayout()
	return Config{
		Filter: filter.DefaultSelection(),
		Chart: ChartConfig{
			Width:  l.Width,
			Height: l.Height,
			Margins: MarginConfig{
				Top:    l.Margin.Top,
				Right:  l.Margin.Right,
				Bottom: l.Margin.Bottom,
				Left:   l.Margin.Left,
			},
		},
		Highlight: HighlightConfig{DurationMS: 200},
		Watch:     WatchConfig{DebounceMS: 200},
		Fetch:     FetchConfig{TimeoutSeconds: 15},
	}
}

// Layout converts the chart settings to a scene layout. Invalid sizes fall
// back to the default layout.
func (c Config) Layout() scene.Layout {
	l := scene.Layout{
		Width:  c.Chart.Width,
		Height: c.Chart.Height,
		Margin: scene.Margin{
			Top:    c.Chart.Margins.Top,
			Right:  c.Chart.Margins.Right,
			Bottom: c.Chart.Margins.Bottom,
			Left:   c.Chart.Margins.Left,
		},
	}
	if l.PlotWidth() <= 0 || l.PlotHeight() <= 0 {
		return scene.DefaultLayout()
	}
	return l
}

// Transition returns the highlight transition duration.
func (c Config) Transition() time.Duration {
	if c.Highlight.DurationMS <= 0 {
		return 0
	}
	return time.Duration(c.Highlight.DurationMS) * time.Millisecond
}

// Debounce returns the watcher debounce interval, or 0 for the watcher default.
func (c Config) Debounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// FetchTimeout returns the remote fetch timeout, or 0 for the loader default.
func (c Config) FetchTimeout() time.Duration {
	if c.Fetch.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// ConfigDir returns the XDG config directory for affectmap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for affectmap.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Filter.Category == "" {
		cfg.Filter.Category = filter.DefaultSelection().Category
	}
	if cfg.Filter.Level == "" {
		cfg.Filter.Level = filter.DefaultSelection().Level
	}
	if !isURL(cfg.Dataset) {
		cfg.Dataset = expandHome(cfg.Dataset)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
