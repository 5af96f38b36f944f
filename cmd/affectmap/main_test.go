package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/affectmap/pkg/app"
	"github.com/vanderheijden86/affectmap/pkg/config"
	"github.com/vanderheijden86/affectmap/pkg/filter"
	"github.com/vanderheijden86/affectmap/pkg/loader"
	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/testutil"
	"github.com/vanderheijden86/affectmap/pkg/version"
)

// isolate keeps tests away from the user's config and dataset env.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(loader.DatasetEnvVar, "")
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeSummary(t *testing.T, out string) robotSummary {
	t.Helper()
	var s robotSummary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	return s
}

func TestVersionAndHelp(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--version")
	if code != 0 || strings.TrimSpace(out) != "affectmap "+version.Version {
		t.Errorf("--version = %d %q", code, out)
	}

	code, out, _ = runCLI(t, "--help")
	if code != 0 || !strings.Contains(out, "-robot-summary") {
		t.Errorf("--help = %d %q", code, out)
	}
}

func TestBadFlags(t *testing.T) {
	isolate(t)
	if code, _, _ := runCLI(t, "--no-such-flag"); code != 2 {
		t.Errorf("unknown flag exit = %d", code)
	}
	code, _, errOut := runCLI(t, "--watch", "--no-watch")
	if code != 2 || !strings.Contains(errOut, "mutually exclusive") {
		t.Errorf("watch conflict = %d %q", code, errOut)
	}
	code, _, errOut = runCLI(t, "--pick")
	if code != 2 || !strings.Contains(errOut, "terminal") {
		t.Errorf("--pick without tty = %d %q", code, errOut)
	}
}

func TestRobotSummary(t *testing.T) {
	isolate(t)
	path := testutil.WriteDataset(t, t.TempDir(), testutil.Sample())

	code, out, errOut := runCLI(t, "--data", path, "--robot-summary", "--category", "快乐")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	s := decodeSummary(t, out)
	if s.Source != path || s.Fallback || s.Error != "" {
		t.Errorf("source = %q fallback = %v error = %q", s.Source, s.Fallback, s.Error)
	}
	if s.Counts != (app.Counts{Total: 6, Visible: 3}) {
		t.Errorf("counts = %+v", s.Counts)
	}
	if s.Selection != (filter.Selection{Category: "快乐", Level: "all"}) {
		t.Errorf("selection = %+v", s.Selection)
	}
	if s.VisibleByCategory["快乐"] != 3 || len(s.VisibleByCategory) != 1 {
		t.Errorf("visible_by_category = %v", s.VisibleByCategory)
	}
	if s.Summary.Words != 6 || s.Summary.Categories != 2 || s.Summary.Levels != 2 {
		t.Errorf("summary = %+v", s.Summary)
	}
}

func TestHeadlessDefaultsToSummary(t *testing.T) {
	isolate(t)
	path := testutil.WriteDataset(t, t.TempDir(), testutil.Sample())

	// A bytes.Buffer is not a terminal, so no TUI is started.
	code, out, _ := runCLI(t, "--data", path)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if s := decodeSummary(t, out); s.Counts.Total != 6 {
		t.Errorf("counts = %+v", s.Counts)
	}
}

func TestRobotSummary_Fallback(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	code, out, errOut := runCLI(t, "--data", missing, "--robot-summary")
	if code != 0 {
		t.Fatalf("fallback should not fail the run: %d", code)
	}
	s := decodeSummary(t, out)
	if !s.Fallback || s.Error == "" {
		t.Errorf("expected fallback, got %+v", s)
	}
	if s.Counts.Total != model.WordCount(loader.Fallback()) {
		t.Errorf("fallback counts = %+v", s.Counts)
	}
	for _, want := range []string{app.MsgLoadFailed, app.MsgFallbackMode} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q: %s", want, errOut)
		}
	}
}

func TestExportSnapshotsAndSQLiteRoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := testutil.WriteDataset(t, dir, testutil.Sample())
	svg := filepath.Join(dir, "out", "chart.svg")
	png := filepath.Join(dir, "out", "chart.png")
	db := filepath.Join(dir, "out", "words.db")

	code, out, errOut := runCLI(t, "--data", path, "--export", svg, "--export", png, "--export-sqlite", db)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "" {
		t.Errorf("file export should not print a summary, got %q", out)
	}
	for _, p := range []string{svg, png, db} {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}
	if data, _ := os.ReadFile(svg); !bytes.Contains(data, []byte("快乐")) {
		t.Error("svg snapshot missing the legend")
	}

	// The database is itself a dataset source.
	code, out, errOut = runCLI(t, "--data", db, "--robot-summary")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	s := decodeSummary(t, out)
	if s.Fallback || s.Counts.Total != 6 {
		t.Errorf("sqlite round trip = %+v", s)
	}
}

func TestConfigProvidesDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := testutil.WriteDataset(t, dir, testutil.Sample())

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Dataset = path
	cfg.Filter = filter.Selection{Category: "悲伤", Level: "低"}
	if err := config.SaveTo(cfg, cfgPath); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "--config", cfgPath, "--robot-summary")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if s := decodeSummary(t, out); s.Counts.Visible != 2 {
		t.Errorf("config filter not applied: %+v", s.Counts)
	}

	// Flags win over the file.
	_, out, _ = runCLI(t, "--config", cfgPath, "--robot-summary", "--level", "all")
	if s := decodeSummary(t, out); s.Counts.Visible != 3 {
		t.Errorf("flag override not applied: %+v", s.Counts)
	}
}

func TestSaveConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := testutil.WriteDataset(t, dir, testutil.Sample())
	cfgPath := filepath.Join(dir, "saved.yaml")

	code, _, errOut := runCLI(t, "--config", cfgPath, "--data", path, "--category", "快乐", "--save-config", "--robot-summary")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	got, err := config.LoadFrom(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if got.Dataset != path || got.Filter.Category != "快乐" {
		t.Errorf("saved config = %+v", got)
	}
}

func TestStringList(t *testing.T) {
	var s stringList
	if err := s.Set(""); err == nil {
		t.Error("empty path accepted")
	}
	_ = s.Set("a.svg")
	_ = s.Set("b.png")
	if s.String() != "a.svg,b.png" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestResolveFetcher(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDataset(t, dir, testutil.Sample())

	tests := []struct {
		name     string
		location string
		want     string
	}{
		{"file", path, path},
		{"directory discovery", dir, path},
		{"missing file still fetches", filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.json")},
		{"url", "https://example.com/data.json", "https://example.com/data.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveFetcher(tt.location, 0).Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStartWatcher(t *testing.T) {
	path := testutil.WriteDataset(t, t.TempDir(), testutil.Sample())
	cfg := config.DefaultConfig()

	cfg.Watch.Enabled = false
	if w := startWatcher(cfg, loader.FileFetcher{Path: path}); w != nil {
		t.Error("watcher started while disabled")
	}

	cfg.Watch.Enabled = true
	cfg.Watch.ForcePoll = true
	w := startWatcher(cfg, loader.FileFetcher{Path: path})
	if w == nil {
		t.Fatal("expected a watcher")
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Error("force_poll should select polling")
	}

	if w := startWatcher(cfg, loader.NewFetcher("https://example.com/x.json", 0)); w != nil {
		t.Error("URLs cannot be watched")
	}
}

func TestOpenDebugLog(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	f, err := openDebugLog()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if f.Name() != filepath.Join(dir, "affectmap", "debug.log") {
		t.Errorf("log path = %s", f.Name())
	}
}
