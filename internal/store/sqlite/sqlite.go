package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lu-zhengda/mailroles/internal/store"
)

var _ store.Store = (*DB)(nil)

// DB is the SQLite-backed store for accounts, containers, settings and
// queued tasks.
type DB struct {
	db *sql.DB
}

// New opens the database at dsn and brings its schema up to date.
// ":memory:" opens a private in-memory database.
func New(dsn string) (*DB, error) {
	inMemory := dsn == ":memory:"

	db, err := sql.Open("sqlite3", connString(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &DB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func connString(dsn string) string {
	if dsn == ":memory:" {
		return ":memory:?_foreign_keys=on"
	}
	// Transactions take the write lock up front so a read-then-write
	// transaction waits for concurrent writers instead of failing.
	return dsn + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// migrate runs every migration newer than the stored user_version, each in
// its own transaction.
func (s *DB) migrate() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	for i := version; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *DB) schemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}
