// Package storage provides the SQLite-backed persistence layer.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa. All multi-entity writes go through WithTx: the changes of one
// request accumulate in a single transaction and commit together, or roll
// back as a unit on the first error.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite avoids CGO requirements, making it easier to
	// build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a uniqueness rule is violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse is returned when a delete is blocked by rows that still
	// reference the entity.
	ErrInUse = errors.New("still referenced")
)

// querier is satisfied by both *sql.DB and *sql.Tx, so every query helper
// works inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles every entity operation over one querier.
type Queries struct {
	q querier
}

// Store owns the database handle. Its embedded Queries run directly
// against the pool; WithTx yields a Queries bound to a transaction.
type Store struct {
	db *sql.DB
	*Queries
}

// Open opens (or creates) the SQLite database at the given path and
// applies the schema.
//
//	store, err := storage.Open("./data/restoflow.db")
func Open(path string) (*Store, error) {
	// The pure-Go driver uses _pragma query parameters to configure
	// connection state. WAL enables concurrent readers; foreign_keys=on
	// enforces the cascade rules; busy_timeout waits for locks instead of
	// failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db, Queries: &Queries{q: db}}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction. If fn returns an error the
// transaction is rolled back and nothing from this unit of work persists.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(&Queries{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// SQLite has no native datetime type; timestamps are stored as RFC3339
// TEXT and parsed back on scan.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

// nullableTime formats an optional timestamp, mapping nil to NULL.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of an empty TEXT.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
