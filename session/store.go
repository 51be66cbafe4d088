// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: session/store.go
// Summary: SQLite persistence for the last flushed screen state per session.
//
// On reattach the client shows the stored snapshot before the first redraw
// batch arrives. Snapshots are text-only: highlights are not persisted, the
// editor repaints them with the first batches.

package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/framegrace/neoview/grid"
)

// Current schema version - increment when the snapshot layout changes.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS snapshots (
    session   TEXT NOT NULL,
    grid_id   INTEGER NOT NULL,
    parent_id INTEGER NOT NULL DEFAULT 0,
    win_row   INTEGER NOT NULL DEFAULT 0,
    win_col   INTEGER NOT NULL DEFAULT 0,
    rows      INTEGER NOT NULL,
    cols      INTEGER NOT NULL,
    lines     TEXT NOT NULL,
    revision  INTEGER NOT NULL,
    updated   INTEGER NOT NULL,
    PRIMARY KEY (session, grid_id)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session);
`

// Store persists grid snapshots keyed by session name.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("session: create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// migrate discards snapshots written under an older schema. The store holds
// only a convenience cache, so dropping stale rows is the whole migration.
func migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current); err != nil {
		current = 0
	}
	if current == schemaVersion {
		return nil
	}
	if current != 0 {
		if _, err := db.Exec("DELETE FROM snapshots"); err != nil {
			return fmt.Errorf("session: drop stale snapshots: %w", err)
		}
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("session: update schema version: %w", err)
	}
	return nil
}

// Save replaces the stored snapshot set for a session in one transaction.
// The per-session revision increases on every save.
func (s *Store) Save(session string, snaps []grid.GridSnapshot) error {
	if session == "" {
		return fmt.Errorf("session: empty session name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("session: begin save: %w", err)
	}

	var revision int64
	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(revision), 0) FROM snapshots WHERE session = ?", session,
	).Scan(&revision); err != nil {
		tx.Rollback()
		return fmt.Errorf("session: read revision: %w", err)
	}
	revision++

	if _, err := tx.Exec("DELETE FROM snapshots WHERE session = ?", session); err != nil {
		tx.Rollback()
		return fmt.Errorf("session: clear previous snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshots
			(session, grid_id, parent_id, win_row, win_col, rows, cols, lines, revision, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("session: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, snap := range snaps {
		_, err := stmt.Exec(
			session, snap.GridID, snap.ParentID, snap.Row, snap.Col,
			snap.Rows, snap.Cols, strings.Join(snap.Lines, "\n"), revision, now,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("session: insert grid %d: %w", snap.GridID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("session: commit save: %w", err)
	}
	return nil
}

// Restore loads the stored snapshot set for a session, root first. A session
// with no snapshot returns an empty slice and no error.
func (s *Store) Restore(session string) ([]grid.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT grid_id, parent_id, win_row, win_col, rows, cols, lines
		FROM snapshots
		WHERE session = ?
		ORDER BY grid_id ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("session: query snapshot: %w", err)
	}
	defer rows.Close()

	var out []grid.GridSnapshot
	for rows.Next() {
		var snap grid.GridSnapshot
		var lines string
		if err := rows.Scan(&snap.GridID, &snap.ParentID, &snap.Row, &snap.Col,
			&snap.Rows, &snap.Cols, &lines); err != nil {
			return nil, fmt.Errorf("session: scan snapshot row: %w", err)
		}
		if lines != "" {
			snap.Lines = strings.Split(lines, "\n")
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Sessions lists the stored session names.
func (s *Store) Sessions() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT DISTINCT session FROM snapshots ORDER BY session")
	if err != nil {
		return nil, fmt.Errorf("session: list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Delete removes a session's snapshot.
func (s *Store) Delete(session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM snapshots WHERE session = ?", session)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Autosaver debounces flush-driven saves: every flush requests a save, the
// store is hit at most once per quiet window. Drive it from the main loop's
// tick with the current time.
type Autosaver struct {
	store    *Store
	session  string
	pending  grid.Coalescer
	snapshot func() []grid.GridSnapshot
}

// NewAutosaver builds an autosaver for one session.
func NewAutosaver(store *Store, session string, window time.Duration, snapshot func() []grid.GridSnapshot) *Autosaver {
	return &Autosaver{
		store:    store,
		session:  session,
		pending:  grid.NewCoalescer(window),
		snapshot: snapshot,
	}
}

// Request notes that the screen changed.
func (a *Autosaver) Request(now time.Time) {
	a.pending.Request(now)
}

// Tick saves once the quiet window has elapsed since the last request.
func (a *Autosaver) Tick(now time.Time) error {
	if !a.pending.Due(now) {
		return nil
	}
	return a.store.Save(a.session, a.snapshot())
}

// Flush forces a pending save regardless of the window, for shutdown.
func (a *Autosaver) Flush() error {
	if !a.pending.Pending() {
		return nil
	}
	a.pending.Due(time.Now().Add(24 * time.Hour))
	return a.store.Save(a.session, a.snapshot())
}
