// Package journal provides a SQLite-backed edit journal. It records the user
// edits applied to a tilemap session so sessions can be replayed and
// debugged; it never stores tilemap contents.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
)

// EditKind distinguishes journal entries.
type EditKind string

const (
	EditAdd    EditKind = "add"
	EditRemove EditKind = "remove"
)

// Entry is one recorded edit.
type Entry struct {
	ID       int64
	Kind     EditKind
	Cell     grid.Cell
	TileID   catalog.TileID
	Recorded time.Time
}

// Journal wraps the SQLite connection.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// WAL keeps writes cheap while the tick loop reads
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return j, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (j *Journal) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS edits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		cell_x INTEGER NOT NULL,
		cell_y INTEGER NOT NULL,
		tile_id INTEGER NOT NULL,
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := j.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Record appends one edit.
func (j *Journal) Record(kind EditKind, cell grid.Cell, tileID catalog.TileID) error {
	_, err := j.db.Exec(
		"INSERT INTO edits (kind, cell_x, cell_y, tile_id) VALUES (?, ?, ?, ?)",
		string(kind), cell.X, cell.Y, int(tileID),
	)
	if err != nil {
		return fmt.Errorf("failed to record edit: %w", err)
	}
	return nil
}

// Entries returns the most recent edits, newest first, up to limit.
func (j *Journal) Entries(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		"SELECT id, kind, cell_x, cell_y, tile_id, recorded_at FROM edits ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		var tileID int
		if err := rows.Scan(&e.ID, &kind, &e.Cell.X, &e.Cell.Y, &tileID, &e.Recorded); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		e.Kind = EditKind(kind)
		e.TileID = catalog.TileID(tileID)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
