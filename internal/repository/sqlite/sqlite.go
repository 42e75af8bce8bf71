// Package sqlite implements repository.Store on an embedded SQLite file.
//
// WHEN IS SQLITE USED?
// Whenever DATABASE_URL isn't a postgres:// URL. That makes it the default for
// development and single-node deployments, and ":memory:" gives every test its
// own throwaway database without any setup.
//
// WHY modernc.org/sqlite?
// It is SQLite translated to pure Go. No CGo, so no C toolchain in the build
// image and cross-compiling keeps working. It also exposes typed result codes
// (modernc.org/sqlite/lib), which isUniqueViolation relies on.
//
// SCHEMA:
// The tables live in migrations/*.sql, embedded into the binary and applied
// by goose every time New opens a database. Already-applied versions are
// skipped, so reopening an existing file is safe.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/sakif/hodeway/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// memoryDSN is SQLite's name for a private in-memory database.
const memoryDSN = ":memory:"

// pragmas are applied by the driver to every new pool connection.
//
// busy_timeout makes a writer wait for a competing write instead of failing
// with SQLITE_BUSY, which matters when many registrations race.
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DB wraps a sql.DB connection pool and hands out the per-table repositories.
//
// WHY WRAP sql.DB IN A STRUCT?
// 1. We can attach methods to it (Ping, Close, and one accessor per table)
// 2. It implements repository.Store, so the server doesn't care which backend it got
// 3. We control the lifecycle (New creates it, Close destroys it)
type DB struct {
	conn          *sql.DB
	users         *UserDB
	itineraries   *ItineraryDB
	destinations  *DestinationDB
	expenses      *ExpenseDB
	transports    *TransportDB
	collaborators *CollaboratorDB
}

var _ repository.Store = (*DB)(nil)

// New opens (creating if needed) the database named by dsn and migrates it.
//
// dsn examples:
//   - "sqlite://data/hodeway.db" → file-based database (persistent)
//   - "data/hodeway.db"          → same, without the scheme
//   - ":memory:"                 → in-memory database (tests; lost on close)
//
// CONNECTION POOL:
// sql.Open() does NOT actually open a connection — it just creates a pool manager.
// We call PingContext to force an immediate connection and verify it works.
func New(ctx context.Context, dsn string) (*DB, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}

	inMemory := path == memoryDSN
	if !inMemory {
		// os.MkdirAll is a no-op when the directory already exists (like `mkdir -p`).
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}

	// "sqlite" is the driver name registered by modernc.org/sqlite's init().
	conn, err := sql.Open("sqlite", withPragmas(path, inMemory))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database. Pinning the
	// pool to one connection keeps all queries on the migrated one.
	if inMemory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return newDB(conn), nil
}

// newDB wires the table repositories around an open pool.
func newDB(conn *sql.DB) *DB {
	return &DB{
		conn:          conn,
		users:         &UserDB{conn: conn},
		itineraries:   &ItineraryDB{conn: conn},
		destinations:  &DestinationDB{conn: conn},
		expenses:      &ExpenseDB{conn: conn},
		transports:    &TransportDB{conn: conn},
		collaborators: &CollaboratorDB{conn: conn},
	}
}

// withPragmas appends the connection pragmas to the driver DSN. File databases
// also switch to WAL so readers don't block behind a writer.
func withPragmas(path string, inMemory bool) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + pragmas
	if !inMemory {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	return dsn
}

// migrate applies the embedded goose migrations.
//
// MIGRATIONS:
// Each file under migrations/ is numbered; goose records applied versions in
// its goose_db_version table, so running migrate on every start is safe.
// The provider keeps its state per call, not in goose's package globals.
func migrate(ctx context.Context, conn *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// Users returns the user repository.
func (db *DB) Users() repository.UserRepository {
	return db.users
}

// Itineraries returns the itinerary repository.
func (db *DB) Itineraries() repository.ItineraryRepository {
	return db.itineraries
}

func (db *DB) Destinations() repository.DestinationRepository {
	return db.destinations
}

func (db *DB) Expenses() repository.ExpenseRepository {
	return db.expenses
}

func (db *DB) Transports() repository.TransportRepository {
	return db.transports
}

func (db *DB) Collaborators() repository.CollaboratorRepository {
	return db.collaborators
}

// Ping reports whether the database still answers.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
//
// ALWAYS DEFER CLOSE:
//
//	db, err := sqlite.New(ctx, "data/hodeway.db")
//	if err != nil { ... }
//	defer db.Close()
func (db *DB) Close() error {
	return db.conn.Close()
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
