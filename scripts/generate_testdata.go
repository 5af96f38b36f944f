//go:build ignore

// generate_testdata.go creates standard datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates, for each size, a JSON document and the matching SQLite export:
//
//	testdata/benchmark/small.json   (11 categories x 3 levels x 5 words)
//	testdata/benchmark/medium.json  (x 50 words)
//	testdata/benchmark/large.json   (x 500 words)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/affectmap/pkg/export"
	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/testutil"
)

type datasetSpec struct {
	name          string
	wordsPerGroup int
}

var datasets = []datasetSpec{
	{"small", 5},
	{"medium", 50},
	{"large", 500},
}

func main() {
	outputDir := "testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.wordsPerGroup) // Reproducible per-size
		cfg.WordsPerGroup = ds.wordsPerGroup
		groups := testutil.New(cfg).Groups(len(cfg.Categories))

		fmt.Printf("Generating %s dataset (%d words)...\n", ds.name, model.WordCount(groups))

		data, err := model.MarshalGroups(groups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		jsonPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", jsonPath, err)
			os.Exit(1)
		}

		dbPath := filepath.Join(outputDir, ds.name+".db")
		if err := export.NewSQLiteExporter(groups, jsonPath).Export(dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dbPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes) and %s\n", jsonPath, len(data), dbPath)
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
