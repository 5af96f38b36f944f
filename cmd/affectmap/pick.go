package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/affectmap/pkg/config"
	"github.com/vanderheijden86/affectmap/pkg/filter"
	"github.com/vanderheijden86/affectmap/pkg/loader"
)

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

// filterForm builds the category and level selects, preselecting sel.
func filterForm(categories, levels []string, sel *filter.Selection) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("类别").
				Description("Category to show").
				Options(huh.NewOptions(filter.Options(categories)...)...).
				Value(&sel.Category),
			huh.NewSelect[string]().
				Title("强度").
				Description("Intensity level to show").
				Options(huh.NewOptions(filter.Options(levels)...)...).
				Value(&sel.Level),
		),
	)
}

// pickFilters loads the dataset once to learn the available options and asks
// for the initial selection.
func pickFilters(ctx context.Context, fetcher loader.Fetcher, cfg config.Config) (filter.Selection, error) {
	a, _, err := loadBatch(ctx, cfg, fetcher, io.Discard)
	if err != nil {
		return cfg.Filter, err
	}
	sel := a.Selection()
	if err := filterForm(a.Snapshot().Categories(), a.Snapshot().Levels(), &sel).RunWithContext(ctx); err != nil {
		return cfg.Filter, err
	}
	return sel, nil
}
