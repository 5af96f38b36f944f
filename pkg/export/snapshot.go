package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
	"github.com/vanderheijden86/affectmap/pkg/surface"
)

// DefaultTitle heads static snapshots.
const DefaultTitle = scene.ChartTitle

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string // Chart title; DefaultTitle when empty
	Layout scene.Layout
	// Palette defaults to the built-in category colours.
	Palette scene.Palette
	// Points are the visible points, already filtered.
	Points []model.Point
	// Highlight, when set, is drawn enlarged.
	Highlight *model.Key
	// Footer is printed under the chart, e.g. the dataset stats line.
	Footer string
}

// SaveSnapshot renders the chart to a static SVG or PNG file.
func SaveSnapshot(opts SnapshotOptions) error {
	format, path, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	opts.Path = path

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteSnapshot(file, format, opts); err != nil {
		return err
	}
	return file.Close()
}

// SaveSnapshots writes one snapshot per path concurrently. Each path picks
// its own format from its extension.
func SaveSnapshots(ctx context.Context, paths []string, opts SnapshotOptions) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		o := opts
		o.Path = p
		o.Format = ""
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := SaveSnapshot(o); err != nil {
				return fmt.Errorf("%s: %w", o.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// WriteSnapshot renders the chart in format ("svg" or "png") to w.
func WriteSnapshot(w io.Writer, format string, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Layout.Width == 0 || opts.Layout.Height == 0 {
		opts.Layout = scene.DefaultLayout()
	}
	if opts.Palette == nil {
		opts.Palette = scene.DefaultPalette()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	canvas := surface.NewCanvas()
	scene.DrawFrame(canvas, opts.Layout, scene.DefaultFrameOptions())
	r := scene.NewReconciler(opts.Layout, opts.Palette)
	r.Reconcile(nil, opts.Points, canvas)
	if opts.Highlight != nil {
		if h, ok := r.Handle(*opts.Highlight); ok {
			canvas.UpdateMarker(h, scene.MarkerAttrs{Radius: scene.HighlightRadius, Opacity: scene.HighlightOpacity})
		}
	}

	render := surface.RenderOptions{
		Title:  opts.Title,
		Legend: opts.Palette.Legend(categories(opts.Points)),
		Footer: opts.Footer,
	}
	switch strings.ToLower(format) {
	case "svg":
		return surface.WriteSVG(w, canvas, opts.Layout, render)
	case "png":
		return surface.WritePNG(w, canvas, opts.Layout, render)
	default:
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
}

func resolveFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

func categories(points []model.Point) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range points {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
