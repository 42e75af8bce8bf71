// Package postgres implements the repository interfaces on PostgreSQL via
// pgx's native connection pool.
//
// Schema changes are goose migrations embedded in the binary and applied by
// New before the store is handed out.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/hodeway/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a pgxpool-backed repository.Store.
type Store struct {
	pool          *pgxpool.Pool
	users         *UserRepository
	itineraries   *ItineraryRepository
	destinations  *DestinationRepository
	expenses      *ExpenseRepository
	transports    *TransportRepository
	collaborators *CollaboratorRepository
}

var _ repository.Store = (*Store)(nil)

// New connects to dsn, verifies the connection and applies migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return &Store{
		pool:          pool,
		users:         &UserRepository{pool: pool},
		itineraries:   &ItineraryRepository{pool: pool},
		destinations:  &DestinationRepository{pool: pool},
		expenses:      &ExpenseRepository{pool: pool},
		transports:    &TransportRepository{pool: pool},
		collaborators: &CollaboratorRepository{pool: pool},
	}, nil
}

// migrate runs the embedded goose migrations through a database/sql view of
// the pool. goose speaks database/sql only; stdlib.OpenDBFromPool borrows
// the pool's connections instead of dialing new ones.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// Users returns the user repository.
func (s *Store) Users() repository.UserRepository {
	return s.users
}

// Itineraries returns the itinerary repository.
func (s *Store) Itineraries() repository.ItineraryRepository {
	return s.itineraries
}

func (s *Store) Destinations() repository.DestinationRepository {
	return s.destinations
}

func (s *Store) Expenses() repository.ExpenseRepository {
	return s.expenses
}

func (s *Store) Transports() repository.TransportRepository {
	return s.transports
}

func (s *Store) Collaborators() repository.CollaboratorRepository {
	return s.collaborators
}

// Ping reports whether the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isUniqueViolation reports whether err is Postgres rejecting a duplicate key
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
