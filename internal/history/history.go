// SPDX-License-Identifier: MPL-2.0

// Package history persists comparison outcomes in a local SQLite database so
// regressions can be tracked across benchmark runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"simbench-cli/internal/results"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("history entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	label      TEXT NOT NULL,
	status     TEXT NOT NULL,
	matched    INTEGER NOT NULL,
	within     INTEGER NOT NULL,
	out        INTEGER NOT NULL,
	missing    INTEGER NOT NULL,
	extra      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

type (
	// Entry is one recorded comparison outcome.
	Entry struct {
		ID        int64
		CreatedAt time.Time
		Label     string
		Status    string
		Matched   int
		Within    int
		Out       int
		Missing   int
		Extra     int
	}

	// Store is a handle on the history database.
	Store struct {
		db *sql.DB
	}
)

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close() //nolint:errcheck // schema error takes precedence
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	return nil
}

// Append records a comparison report under a label and returns the stored
// entry.
func (s *Store) Append(ctx context.Context, label string, report *results.Report) (Entry, error) {
	c := report.Counts()
	entry := Entry{
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Label:     label,
		Status:    "fail",
		Matched:   c.Match,
		Within:    c.Within,
		Out:       c.Out,
		Missing:   c.Missing,
		Extra:     c.Extra,
	}
	if report.Pass() {
		entry.Status = "pass"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (created_at, label, status, matched, within, out, missing, extra)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CreatedAt.Unix(), entry.Label, entry.Status,
		entry.Matched, entry.Within, entry.Out, entry.Missing, entry.Extra)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record run: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, fmt.Errorf("failed to read run id: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, label, status, matched, within, out, missing, extra
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // iteration error checked below

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &createdAt, &e.Label, &e.Status,
			&e.Matched, &e.Within, &e.Out, &e.Missing, &e.Extra); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return entries, nil
}

// Get returns a single entry by id.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	var e Entry
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, label, status, matched, within, out, missing, extra
		 FROM runs WHERE id = ?`, id).
		Scan(&e.ID, &createdAt, &e.Label, &e.Status,
			&e.Matched, &e.Within, &e.Out, &e.Missing, &e.Extra)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load run %d: %w", id, err)
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, nil
}

// Prune deletes all but the newest keep entries and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	return n, nil
}
