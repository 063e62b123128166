package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/fintrack/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// InMemory is the database path that opens a private in-memory store.
const InMemory = ":memory:"

// SQLiteStorage is the ledger's service.Storage, backed by one SQLite file.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

var _ service.Storage = (*SQLiteStorage)(nil)

func dataSourceName(path string) (string, error) {
	if path == InMemory {
		return InMemory, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000", nil
}

// NewSQLiteStorage opens the database at path, creating its directory when
// needed. Call Migrate before use.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}

	dsn, err := dataSourceName(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" to one database and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &SQLiteStorage{db: db, path: path}, nil
}

// Path returns the database location the storage was opened with.
func (s *SQLiteStorage) Path() string { return s.path }

// Close releases the database.
func (s *SQLiteStorage) Close() error { return s.db.Close() }

func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
