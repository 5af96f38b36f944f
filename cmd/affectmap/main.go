package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/affectmap/internal/datasource"
	"github.com/vanderheijden86/affectmap/pkg/app"
	"github.com/vanderheijden86/affectmap/pkg/config"
	"github.com/vanderheijden86/affectmap/pkg/debug"
	"github.com/vanderheijden86/affectmap/pkg/export"
	"github.com/vanderheijden86/affectmap/pkg/filter"
	"github.com/vanderheijden86/affectmap/pkg/loader"
	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/store"
	"github.com/vanderheijden86/affectmap/pkg/surface"
	"github.com/vanderheijden86/affectmap/pkg/ui"
	"github.com/vanderheijden86/affectmap/pkg/version"
	"github.com/vanderheijden86/affectmap/pkg/watcher"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	if v == "" {
		return errors.New("empty path")
	}
	*s = append(*s, v)
	return nil
}

// cliOptions is the parsed command line.
type cliOptions struct {
	cpuProfile   string
	help         bool
	version      bool
	debug        bool
	configPath   string
	data         string
	category     string
	level        string
	pick         bool
	exports      stringList
	exportSQLite string
	robotSummary bool
	watch        bool
	noWatch      bool
	saveConfig   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, *flag.FlagSet, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("affectmap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&opts.help, "help", false, "Show help")
	fs.BoolVar(&opts.version, "version", false, "Show version")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging (same as "+debug.EnvVar+"=1)")
	fs.StringVar(&opts.configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	fs.StringVar(&opts.data, "data", "", "Dataset file, directory, SQLite export or http(s) URL (overrides "+loader.DatasetEnvVar+")")
	fs.StringVar(&opts.category, "category", "", "Initial category filter ('all' for every category)")
	fs.StringVar(&opts.level, "level", "", "Initial intensity level filter ('all' for every level)")
	fs.BoolVar(&opts.pick, "pick", false, "Choose the initial filters from a form before starting")
	fs.Var(&opts.exports, "export", "Write a static snapshot (.svg or .png) and exit; repeatable")
	fs.StringVar(&opts.exportSQLite, "export-sqlite", "", "Write the dataset to a SQLite database and exit")
	fs.BoolVar(&opts.robotSummary, "robot-summary", false, "Print a JSON summary of the dataset and exit")
	fs.BoolVar(&opts.watch, "watch", false, "Reload when the dataset file changes")
	fs.BoolVar(&opts.noWatch, "no-watch", false, "Disable live reload")
	fs.BoolVar(&opts.saveConfig, "save-config", false, "Persist --data, --category and --level to the config file")
	err := fs.Parse(args)
	return opts, fs, err
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// CPU profiling support
	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if opts.help {
		fmt.Fprintln(stdout, "Usage: affectmap [options]")
		fmt.Fprintln(stdout, "\nPlots emotion words by valence and arousal.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if opts.version {
		fmt.Fprintf(stdout, "affectmap %s\n", version.Version)
		return 0
	}

	if opts.debug {
		debug.SetEnabled(true)
	}
	if opts.watch && opts.noWatch {
		fmt.Fprintln(stderr, "Error: --watch and --no-watch are mutually exclusive")
		return 2
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(&cfg, opts)

	if opts.saveConfig {
		path := opts.configPath
		if path == "" {
			path = config.ConfigPath()
		}
		if err := config.SaveTo(cfg, path); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Saved config to %s\n", path)
	}

	location := loader.DatasetPath(cfg.Dataset)
	if opts.data != "" {
		location = opts.data
	}
	fetcher := resolveFetcher(location, cfg.FetchTimeout())
	debug.Log("cli: dataset %s", fetcher.Name())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := isTerminal(stdout)
	batch := len(opts.exports) > 0 || opts.exportSQLite != "" || opts.robotSummary || !interactive

	if opts.pick {
		if !interactive {
			fmt.Fprintln(stderr, "Error: --pick needs a terminal")
			return 2
		}
		sel, err := pickFilters(ctx, fetcher, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		cfg.Filter = sel
	}

	if batch {
		if err := runBatch(ctx, opts, cfg, fetcher, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	// The TUI owns the terminal; debug lines go to a file.
	if debug.Enabled() {
		if f, err := openDebugLog(); err == nil {
			defer f.Close()
			debug.SetOutput(f)
		}
	}

	m := ui.NewModel(ui.Options{
		Fetcher: fetcher,
		App: app.Options{
			Layout:     cfg.Layout(),
			Transition: cfg.Transition(),
			Selection:  cfg.Filter,
		},
		Watcher: startWatcher(cfg, fetcher),
		Context: ctx,
	})
	defer m.Stop()

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(stderr, "Error running affectmap: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads an explicit config path strictly and the default path
// leniently, since a broken user config should not block the viewer.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		debug.Log("cli: ignoring config: %v", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// applyFlags layers explicitly set flags over the config file.
func applyFlags(cfg *config.Config, opts *cliOptions) {
	if opts.data != "" {
		cfg.Dataset = opts.data
	}
	if opts.category != "" {
		cfg.Filter.Category = opts.category
	}
	if opts.level != "" {
		cfg.Filter.Level = opts.level
	}
	switch {
	case opts.watch:
		cfg.Watch.Enabled = true
	case opts.noWatch:
		cfg.Watch.Enabled = false
	}
}

// resolveFetcher maps a location to a fetcher. Locations that cannot be
// detected still get a file fetcher so the failure surfaces at the load
// boundary and the fallback dataset is shown.
func resolveFetcher(location string, timeout time.Duration) loader.Fetcher {
	f, err := datasource.Fetcher(location, timeout)
	if err != nil {
		debug.Log("cli: %v", err)
		return loader.NewFetcher(location, timeout)
	}
	return f
}

func startWatcher(cfg config.Config, fetcher loader.Fetcher) *watcher.Watcher {
	if !cfg.Watch.Enabled {
		return nil
	}
	w, err := watcher.WatchDataset(fetcher.Name(),
		watcher.WithDebounceDuration(cfg.Debounce()),
		watcher.WithForcePoll(cfg.Watch.ForcePoll),
		watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
	)
	if err != nil {
		debug.Log("cli: live reload unavailable for %s: %v", fetcher.Name(), err)
		return nil
	}
	if err := w.Start(); err != nil {
		debug.Log("cli: start watcher: %v", err)
		return nil
	}
	return w
}

func openDebugLog() (*os.File, error) {
	dir := config.StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// stderrSink reports load problems on stderr in batch mode.
type stderrSink struct {
	app.NopSink
	w io.Writer
}

func (s stderrSink) Error(msg string) { fmt.Fprintf(s.w, "Warning: %s\n", msg) }

// loadBatch performs one synchronous load under cfg's selection.
func loadBatch(ctx context.Context, cfg config.Config, fetcher loader.Fetcher, stderr io.Writer) (*app.App, app.LoadResult, error) {
	a := app.New(surface.NewCanvas(), app.Options{
		Layout:    cfg.Layout(),
		Selection: cfg.Filter,
		Sink:      stderrSink{w: stderr},
	})
	res, err := a.Load(ctx, fetcher)
	return a, res, err
}

func runBatch(ctx context.Context, opts *cliOptions, cfg config.Config, fetcher loader.Fetcher, stdout, stderr io.Writer) error {
	a, res, err := loadBatch(ctx, cfg, fetcher, stderr)
	if err != nil {
		return err
	}

	if len(opts.exports) > 0 {
		so := export.SnapshotOptions{
			Layout: cfg.Layout(),
			Points: a.Visible(),
			Footer: a.Snapshot().Summary().String(),
		}
		if err := export.SaveSnapshots(ctx, opts.exports, so); err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		for _, p := range opts.exports {
			fmt.Fprintf(stderr, "Wrote %s\n", p)
		}
	}

	if opts.exportSQLite != "" {
		if err := export.NewSQLiteExporter(res.Groups, res.Source).Export(opts.exportSQLite); err != nil {
			return fmt.Errorf("export sqlite: %w", err)
		}
		fmt.Fprintf(stderr, "Wrote %s\n", opts.exportSQLite)
	}

	wroteFiles := len(opts.exports) > 0 || opts.exportSQLite != ""
	if opts.robotSummary || !wroteFiles {
		return writeRobotSummary(stdout, a, res)
	}
	return nil
}

// robotSummary is the --robot-summary document.
type robotSummary struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	Version           string                `json:"version"`
	Source            string                `json:"source"`
	Fallback          bool                  `json:"fallback"`
	Error             string                `json:"error,omitempty"`
	LoadMs            float64               `json:"load_ms"`
	Selection         filter.Selection      `json:"selection"`
	Counts            app.Counts            `json:"counts"`
	VisibleByCategory map[string]int        `json:"visible_by_category"`
	Summary           store.Summary         `json:"summary"`
	Metrics           []metrics.TimingStats `json:"metrics,omitempty"`
}

func writeRobotSummary(w io.Writer, a *app.App, res app.LoadResult) error {
	out := robotSummary{
		GeneratedAt:       time.Now().UTC(),
		Version:           version.Version,
		Source:            res.Source,
		Fallback:          res.Fallback,
		LoadMs:            float64(res.Duration.Microseconds()) / 1000,
		Selection:         a.Selection(),
		Counts:            a.Counts(),
		VisibleByCategory: store.CountBy(a.Visible()),
		Summary:           a.Snapshot().Summary(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if metrics.Enabled() {
		out.Metrics = metrics.AllTimingStats()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set AFFECTMAP_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("AFFECTMAP_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
