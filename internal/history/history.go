// Package history records extraction runs in a SQLite database so earlier
// lists can be reviewed. It is write-mostly and never consulted to skip a fetch.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"panopto-urls/internal/config"
	"panopto-urls/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	route      TEXT NOT NULL,
	entries    INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS videos (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	url      TEXT NOT NULL,
	title    TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Store is an open history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at the XDG data path.
func Open(ctx context.Context) (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(ctx, path)
}

// OpenPath opens the history database at path.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a run and its entries in one transaction. ID and CreatedAt are
// filled in when empty; the stored run is returned.
func (s *Store) Save(ctx context.Context, run media.Run) (media.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.Count = len(run.Entries)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, url, route, entries, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.URL, run.Route.String(), run.Count, run.CreatedAt.UnixMilli(),
	); err != nil {
		return run, fmt.Errorf("saving run: %w", err)
	}

	for i, e := range run.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO videos (run_id, position, url, title) VALUES (?, ?, ?, ?)`,
			run.ID, i, e.URL, e.Title,
		); err != nil {
			return run, fmt.Errorf("saving video %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// List returns the newest runs first, without their entries.
func (s *Store) List(ctx context.Context, limit int) ([]media.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, route, entries, created_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []media.Run
	for rows.Next() {
		var (
			run     media.Run
			route   string
			created int64
		)
		if err := rows.Scan(&run.ID, &run.URL, &route, &run.Count, &created); err != nil {
			return nil, fmt.Errorf("reading run: %w", err)
		}
		run.Route = media.ParseRoute(route)
		run.CreatedAt = time.UnixMilli(created)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its entries in their original order.
func (s *Store) Get(ctx context.Context, id string) (media.Run, error) {
	var (
		run     media.Run
		route   string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, route, entries, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.URL, &route, &run.Count, &created)
	if err != nil {
		return run, fmt.Errorf("loading run %s: %w", id, err)
	}
	run.Route = media.ParseRoute(route)
	run.CreatedAt = time.UnixMilli(created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title FROM videos WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return run, fmt.Errorf("loading videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e media.VideoEntry
		if err := rows.Scan(&e.URL, &e.Title); err != nil {
			return run, fmt.Errorf("reading video: %w", err)
		}
		run.Entries = append(run.Entries, e)
	}
	return run, rows.Err()
}

// FormatForDisplay creates one display line per run.
func FormatForDisplay(runs []media.Run) []string {
	items := make([]string, 0, len(runs))
	for _, r := range runs {
		noun := "videos"
		if r.Count == 1 {
			noun = "video"
		}
		items = append(items, fmt.Sprintf("%s  %s  %-4s  %d %s  %s",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Route, r.Count, noun, r.URL))
	}
	return items
}
