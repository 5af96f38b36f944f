package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/affectmap/pkg/export"
	"github.com/vanderheijden86/affectmap/pkg/model"
)

// SQLiteReader provides read access to an exported dataset database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadGroups rebuilds the category groups in their exported order.
func (r *SQLiteReader) LoadGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	query := fmt.Sprintf(`
		SELECT group_ord, word, category, level, valence, arousal
		FROM %s
		ORDER BY group_ord, ord
	`, export.TableWords)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var (
		groups  []model.CategoryGroup
		lastOrd = -1
	)
	for rows.Next() {
		var (
			ord                 int
			word, category, lvl string
			valence, arousal    float64
		)
		if err := rows.Scan(&ord, &word, &category, &lvl, &valence, &arousal); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		if ord != lastOrd {
			groups = append(groups, model.CategoryGroup{Category: category, Level: lvl})
			lastOrd = ord
		}
		g := &groups[len(groups)-1]
		g.Words = append(g.Words, model.WordEntry{Word: word, Coord: model.Coord{valence, arousal}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return groups, nil
}

// CountWords returns the number of word rows.
func (r *SQLiteReader) CountWords() (int, error) {
	var n int
	err := r.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, export.TableWords)).Scan(&n)
	return n, err
}

// Meta returns an export metadata value.
func (r *SQLiteReader) Meta(key string) (string, error) {
	var v string
	err := r.db.QueryRow(fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, export.TableMeta), key).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("meta %s: %w", key, err)
	}
	return v, nil
}
