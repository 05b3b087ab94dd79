// Package database implements the journal and index store on SQLite.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fo-go/internal/database/migrations"
	"fo-go/internal/fo"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements fo.Store. One sqlite file holds both the actions
// journal and the files index cache.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if necessary) the store at path and brings
// the schema up to date. path can be ":memory:" for an in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", fo.ErrStorage, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing connection whose schema is already
// up to date. Used by tests.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the store relies on.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", fo.ErrStorage, err)
	}

	// Foreign keys are off by default in SQLite for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling foreign keys: %w", fo.ErrStorage, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: setting busy timeout: %w", fo.ErrStorage, err)
	}

	return db, nil
}

// AppendAction persists one journal entry and returns its ID.
func (s *SQLiteStore) AppendAction(e fo.ActionEntry) (int64, error) {
	dest := sql.NullString{String: e.Destination, Valid: e.Destination != ""}
	res, err := s.db.Exec(
		`INSERT INTO actions (kind, source, destination, created_at, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		string(e.Kind), e.Source, dest, e.CreatedAt.UTC(), e.Metadata,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: appending action: %w", fo.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: reading new action id: %w", fo.ErrStorage, err)
	}
	return id, nil
}

// MostRecentActions returns up to n entries, newest first. n <= 0 returns all.
func (s *SQLiteStore) MostRecentActions(n int) ([]fo.ActionEntry, error) {
	query := `SELECT id, kind, source, COALESCE(destination, ''), created_at, COALESCE(metadata, '')
	          FROM actions ORDER BY created_at DESC, id DESC`
	var rows *sql.Rows
	var err error
	if n > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", n)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing actions: %w", fo.ErrStorage, err)
	}
	defer rows.Close()

	var entries []fo.ActionEntry
	for rows.Next() {
		var e fo.ActionEntry
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Source, &e.Destination, &e.CreatedAt, &e.Metadata); err != nil {
			return nil, fmt.Errorf("%w: scanning action: %w", fo.ErrStorage, err)
		}
		e.Kind = fo.ActionKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing actions: %w", fo.ErrStorage, err)
	}
	return entries, nil
}

// DeleteActions removes the given entries from the journal.
func (s *SQLiteStore) DeleteActions(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := s.db.Exec(`DELETE FROM actions WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("%w: deleting actions: %w", fo.ErrStorage, err)
	}
	return nil
}

// CountActions returns the current journal length.
func (s *SQLiteStore) CountActions() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM actions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting actions: %w", fo.ErrStorage, err)
	}
	return count, nil
}

// UpsertIndexEntry inserts or refreshes one index row, keyed by path.
func (s *SQLiteStore) UpsertIndexEntry(e fo.IndexEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO files (path, hash, size, mtime, type, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   hash = excluded.hash,
		   size = excluded.size,
		   mtime = excluded.mtime,
		   type = excluded.type,
		   indexed_at = excluded.indexed_at`,
		e.Path, e.Fingerprint, e.Size, e.ModTime.UTC(), e.Type, e.IndexedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: upserting index entry: %w", fo.ErrStorage, err)
	}
	return nil
}

// FindIndexEntry returns the cached index row for path, or nil if the path
// has never been indexed.
func (s *SQLiteStore) FindIndexEntry(path string) (*fo.IndexEntry, error) {
	var e fo.IndexEntry
	err := s.db.QueryRow(
		`SELECT path, hash, size, mtime, type, indexed_at FROM files WHERE path = ?`, path,
	).Scan(&e.Path, &e.Fingerprint, &e.Size, &e.ModTime, &e.Type, &e.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding index entry: %w", fo.ErrStorage, err)
	}
	return &e, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements the store interface.
var _ fo.Store = (*SQLiteStore)(nil)
