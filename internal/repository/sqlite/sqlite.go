// Package sqlite implements the repository interfaces on an embedded SQLite file.
//
// The driver is modernc.org/sqlite, a pure-Go build of SQLite registered
// with database/sql under the name "sqlite". Pass ":memory:" for a
// throwaway database.
//
// The pool is capped at one connection. SQLite serializes writers anyway,
// and an in-memory database only exists on the connection that created it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sakif/daily-real/internal/migrations"
)

// DB owns the connection pool. Users and Accounts hand out the per-table stores.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and applies the connection pragmas.
// Call Migrate before first use.
func New(ctx context.Context, dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed during a write; foreign keys are off by default in SQLite.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	return &DB{conn: conn}, nil
}

// Migrate applies pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := migrations.Up(ctx, migrations.SQLite, db.conn); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// MigrationStatus lists the schema migrations and whether each is applied.
func (db *DB) MigrationStatus(ctx context.Context) ([]migrations.Status, error) {
	return migrations.List(ctx, migrations.SQLite, db.conn)
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the identity store.
func (db *DB) Users() *UserStore {
	return &UserStore{db: db}
}

// Accounts returns the account store.
func (db *DB) Accounts() *AccountStore {
	return &AccountStore{db: db}
}
