// Package journal persists playlist mutation outcomes to a local SQLite
// database.
//
// The batch writer applies playlist adds in sequential chunks and stops at
// the first failure; the journal makes the committed count durable so a
// partially-applied mutation can be inspected after the fact. Recording is
// best-effort from the caller's point of view: a journal failure is logged,
// never propagated into the operation result.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/soundctl/spotmcp/internal/shared"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlist_mutations (
	id            TEXT PRIMARY KEY,
	playlist_id   TEXT NOT NULL,
	playlist_name TEXT NOT NULL DEFAULT '',
	requested     INTEGER NOT NULL,
	committed     INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_playlist_mutations_created_at
	ON playlist_mutations (created_at DESC);
`

// Entry is one recorded playlist mutation. Committed may be less than
// Requested when a chunk failed partway through.
type Entry struct {
	ID           string
	PlaylistID   string
	PlaylistName string
	Requested    int
	Committed    int
	CreatedAt    time.Time
}

// Journal is a durable log of playlist mutations.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	// A single connection keeps in-memory databases coherent and avoids
	// sqlite write contention.
	shared.ConfigureDatabase(db, 1, 1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record inserts an entry, assigning an ID and timestamp when unset.
func (j *Journal) Record(entry Entry) error {
	if entry.PlaylistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidArgument)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.Exec(
		`INSERT INTO playlist_mutations (id, playlist_id, playlist_name, requested, committed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.PlaylistID, entry.PlaylistName, entry.Requested, entry.Committed,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record mutation: %w", err)
	}

	return nil
}

// Recent returns the most recent entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(
		`SELECT id, playlist_id, playlist_name, requested, committed, created_at
		 FROM playlist_mutations
		 ORDER BY created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.PlaylistID, &entry.PlaylistName, &entry.Requested, &entry.Committed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal rows: %w", err)
	}

	return entries, nil
}
