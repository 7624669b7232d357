// Package postgres implements the repository interfaces on PostgreSQL via pgx.
//
// Identities live in the "id" schema and accounts in the "movement" schema.
// The store is selected when DATABASE_URL is set.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sakif/daily-real/internal/migrations"
)

// poolIface is the part of *pgxpool.Pool the stores use. pgxmock satisfies it in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Store owns the connection pool.
type Store struct {
	pool poolIface
	// raw is nil when the store wraps a mock.
	raw *pgxpool.Pool
}

// New connects to the database at url and verifies the connection.
func New(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}
	return &Store{pool: pool, raw: pool}, nil
}

func newWithPool(pool poolIface) *Store {
	return &Store{pool: pool}
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.raw == nil {
		return errors.New("postgres: migrations need a live connection pool")
	}
	db := stdlib.OpenDBFromPool(s.raw)
	defer db.Close()

	if _, err := migrations.Up(ctx, migrations.Postgres, db); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

// MigrationStatus lists the schema migrations and whether each is applied.
func (s *Store) MigrationStatus(ctx context.Context) ([]migrations.Status, error) {
	if s.raw == nil {
		return nil, errors.New("postgres: migrations need a live connection pool")
	}
	db := stdlib.OpenDBFromPool(s.raw)
	defer db.Close()

	return migrations.List(ctx, migrations.Postgres, db)
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Users returns the identity store.
func (s *Store) Users() *UserStore {
	return &UserStore{pool: s.pool}
}

// Accounts returns the account store.
func (s *Store) Accounts() *AccountStore {
	return &AccountStore{pool: s.pool}
}

// withTx runs fn in a transaction, committing on nil and rolling back on
// error or panic.
func withTx(ctx context.Context, pool poolIface, fn func(tx pgx.Tx) error) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(tx)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
