// Package store keeps a SQLite history of evaluation reports so a library's
// score can be compared across runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MaTriXy/c7score/report"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when a library has no stored report.
var ErrNotFound = errors.New("store: no report for library")

// Entry is one stored evaluation.
type Entry struct {
	ID        int64
	Library   string
	Overall   float64
	Scale     float64
	CreatedAt time.Time
	Report    report.Report
}

// Store is the report history backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reports (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			library    TEXT NOT NULL,
			overall    REAL NOT NULL,
			scale      REAL NOT NULL,
			created_at TEXT NOT NULL,
			body       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_library ON reports(library, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores a report and returns its id.
func (s *Store) Save(ctx context.Context, r report.Report) (int64, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("store: save: encode report: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (library, overall, scale, created_at, body) VALUES (?, ?, ?, ?, ?)`,
		r.Library, r.Overall, r.Scale, r.CreatedAt.UTC().Format(time.RFC3339Nano), string(body),
	)
	if err != nil {
		return 0, fmt.Errorf("store: save: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: save: %w", err)
	}
	return id, nil
}

// Latest returns the most recently saved report of library.
func (s *Store) Latest(ctx context.Context, library string) (Entry, error) {
	entries, err := s.History(ctx, library, 1)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%w %q", ErrNotFound, library)
	}
	return entries[0], nil
}

// History returns up to limit reports of library, newest first. A limit of
// zero or less returns all of them.
func (s *Store) History(ctx context.Context, library string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, library, overall, scale, created_at, body
		 FROM reports WHERE library = ? ORDER BY id DESC LIMIT ?`,
		library, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt string
			body      string
		)
		if err := rows.Scan(&e.ID, &e.Library, &e.Overall, &e.Scale, &createdAt, &body); err != nil {
			return nil, fmt.Errorf("store: history: scan: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("store: history: entry %d: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(body), &e.Report); err != nil {
			return nil, fmt.Errorf("store: history: entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: history: %w", err)
	}
	return entries, nil
}
