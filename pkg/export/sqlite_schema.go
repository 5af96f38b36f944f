// Package export writes the dataset and the rendered chart to files: static
// SVG/PNG snapshots and a queryable SQLite database.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// Table names shared with the SQLite dataset reader.
const (
	TableWords     = "words"
	TableCentroids = "centroids"
	TableMeta      = "export_meta"
)

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// createCoreTables creates the words and centroids tables.
func createCoreTables(db *sql.DB) error {
	// ord keeps the document order so a re-read dataset flattens identically.
	wordsSQL := `
		CREATE TABLE IF NOT EXISTS words (
			ord INTEGER NOT NULL,
			group_ord INTEGER NOT NULL,
			word TEXT NOT NULL,
			category TEXT NOT NULL,
			level TEXT NOT NULL,
			valence REAL NOT NULL,
			arousal REAL NOT NULL,
			quadrant TEXT NOT NULL,
			PRIMARY KEY (word, category, level)
		)
	`
	if _, err := db.Exec(wordsSQL); err != nil {
		return fmt.Errorf("create words table: %w", err)
	}

	centroidsSQL := `
		CREATE TABLE IF NOT EXISTS centroids (
			category TEXT PRIMARY KEY,
			word_count INTEGER NOT NULL,
			valence REAL NOT NULL,
			arousal REAL NOT NULL,
			valence_stddev REAL NOT NULL,
			arousal_stddev REAL NOT NULL
		)
	`
	if _, err := db.Exec(centroidsSQL); err != nil {
		return fmt.Errorf("create centroids table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_words_category ON words(category)`,
		`CREATE INDEX IF NOT EXISTS idx_words_level ON words(level)`,
		`CREATE INDEX IF NOT EXISTS idx_words_ord ON words(ord)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}
	return nil
}

// OptimizeDatabase compacts the file. Call it as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB) error {
	for _, stmt := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Some pragmas may fail depending on state, continue
		_, _ = db.Exec(stmt)
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
