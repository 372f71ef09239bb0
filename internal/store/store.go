// Package store persists owners, balances and schedules with database/sql.
//
// SQLite (modernc.org/sqlite) is the default backend. A postgres:// or
// postgresql:// DSN selects Postgres through lib/pq instead.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/lib/pq"  // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when an owner or transaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a stored anchor changed underneath a refresh.
	ErrConflict = errors.New("concurrent schedule update")
	// ErrNotSeeded is returned for owners that have not entered starting funds.
	ErrNotSeeded = errors.New("owner has no starting funds; run `runway seed`")
	// ErrExists is returned when creating an owner that already exists.
	ErrExists = errors.New("already exists")
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

const sqlitePragmas = "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_txlock=immediate"

// Store is the runway database.
type Store struct {
	db      *sql.DB
	dialect dialect

	// locks holds one *sync.Mutex per owner so a process never runs two
	// refreshes for the same owner at once.
	locks sync.Map
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the database named by dsn. Anything that is not a
// Postgres URL is treated as a SQLite file path.
func Open(dsn string) (*Store, error) {
	if isPostgres(dsn) {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return initialize(db, dialectPostgres)
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dsn+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	return initialize(db, dialectSQLite)
}

func initialize(db *sql.DB, d dialect) (*Store, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, dialect: d}, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Backend names the driver in use, for status output.
func (s *Store) Backend() string {
	if s.dialect == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate locks the selected row on Postgres. SQLite transactions
// already hold the write lock from BEGIN IMMEDIATE.
func (s *Store) forUpdate() string {
	if s.dialect == dialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func (s *Store) ownerLock(owner string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
