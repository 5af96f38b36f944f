package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/affectmap/pkg/interact"
	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/store"
	"github.com/vanderheijden86/affectmap/pkg/version"
)

// SQLiteExporter writes a dataset to a SQLite database: one row per word
// plus per-category centroids and export metadata.
type SQLiteExporter struct {
	Groups []model.CategoryGroup
	Source string
	now    func() time.Time
}

// NewSQLiteExporter creates an exporter for groups read from source.
func NewSQLiteExporter(groups []model.CategoryGroup, source string) *SQLiteExporter {
	return &SQLiteExporter{Groups: groups, Source: source, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.SQLiteExport)()

	if len(e.Groups) == 0 {
		return fmt.Errorf("no category groups to export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertWords(db); err != nil {
		return fmt.Errorf("insert words: %w", err)
	}

	st := store.New()
	snap := st.Replace(e.Groups)
	summary := snap.Summary()
	if err := e.insertCentroids(db, summary.Centroids); err != nil {
		return fmt.Errorf("insert centroids: %w", err)
	}
	if err := e.insertMeta(db, summary); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertWords(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO words (ord, group_ord, word, category, level, valence, arousal, quadrant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ord := 0
	for gi, g := range e.Groups {
		for _, w := range g.Words {
			p := model.Point{Word: w.Word, Category: g.Category, Level: g.Level, Coord: w.Coord}
			quadrant := interact.NewDetailPayload(p).Quadrant()
			if _, err := stmt.Exec(ord, gi, w.Word, g.Category, g.Level, w.Coord.X(), w.Coord.Y(), quadrant); err != nil {
				return fmt.Errorf("word %q: %w", w.Word, err)
			}
			ord++
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertCentroids(db *sql.DB, centroids []store.Centroid) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO centroids (category, word_count, valence, arousal, valence_stddev, arousal_stddev)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range centroids {
		if _, err := stmt.Exec(c.Category, c.Count, c.Valence, c.Arousal, c.ValenceStdDev, c.ArousalStdDev); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB, summary store.Summary) error {
	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"exported_at":    e.now().UTC().Format(time.RFC3339),
		"source":         e.Source,
		"categories":     strconv.Itoa(summary.Categories),
		"levels":         strconv.Itoa(summary.Levels),
		"words":          strconv.Itoa(summary.Words),
		"version":        version.Version,
	}
	for k, v := range meta {
		if err := InsertMetaValue(db, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return nil
}
