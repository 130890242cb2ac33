/*
Package sqlite provides a SQLite-backed entry repository.

PURPOSE:
  Implements timesheet.Repository on a single SQLite file. Several
  collections can share one database; each is scoped by its storage key.

SNAPSHOT SEMANTICS:
  Save replaces every row of the key inside one SQL transaction, so a
  failed Save leaves the previous snapshot intact. The position column
  keeps the snapshot order.

KEY TABLES:
  entries: (storage_key, id) primary key, date/location/time_in/time_out

MIGRATION:
  Schema is versioned with golang-migrate from the embedded migrations/
  directory and applied on New().

CONCURRENCY:
  Uses sync.RWMutex. The connection pool is limited to one connection so
  ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/worklog.db", timesheet.DefaultStorageKey)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timesheet/repository.go: Interface definition
  - store/jsonfile/jsonfile.go: File-backed alternative
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/worklog-engine/engine"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements timesheet.Repository using SQLite.
type Store struct {
	db  *sql.DB
	key string
	mu  sync.RWMutex
}

// New opens the database at dbPath and migrates it. Use ":memory:" for an
// in-memory database.
func New(dbPath, key string) (*Store, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, key: key}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies pending migrations on the store's own connection. The
// migrate instance is not closed: that would close the shared *sql.DB.
func (s *Store) migrate() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// REPOSITORY
// =============================================================================

// Load returns the snapshot for the store's key in saved order.
func (s *Store) Load(ctx context.Context) ([]engine.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, date, location, time_in, time_out
		FROM entries
		WHERE storage_key = ?
		ORDER BY position ASC
	`
	return s.queryEntries(ctx, query, s.key)
}

// Save replaces the snapshot for the store's key.
func (s *Store) Save(ctx context.Context, entries []engine.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM entries WHERE storage_key = ?`, s.key); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO entries (storage_key, id, position, date, location, time_in, time_out)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, s.key, e.ID, i, e.Date.String(), string(e.Location), e.TimeIn, e.TimeOut); err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	return sqlTx.Commit()
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]engine.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []engine.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (engine.TimeEntry, error) {
	var e engine.TimeEntry
	var dateStr, locStr string
	if err := rows.Scan(&e.ID, &dateStr, &locStr, &e.TimeIn, &e.TimeOut); err != nil {
		return engine.TimeEntry{}, fmt.Errorf("failed to scan entry: %w", err)
	}
	day, err := engine.ParseDay(dateStr, nil)
	if err != nil {
		return engine.TimeEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	loc, err := engine.ParseLocation(locStr)
	if err != nil {
		return engine.TimeEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	e.Date, e.Location = day, loc
	return e, nil
}
