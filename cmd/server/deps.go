package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/sakif/daily-real/internal/config"
	"github.com/sakif/daily-real/internal/migrations"
	"github.com/sakif/daily-real/internal/repository"
	"github.com/sakif/daily-real/internal/repository/postgres"
	"github.com/sakif/daily-real/internal/repository/sqlite"
)

// backend is whichever store the configuration selected, flattened to the
// operations the commands need.
type backend struct {
	name     string
	users    repository.UserRepository
	accounts repository.AccountRepository
	migrate  func(context.Context) error
	status   func(context.Context) ([]migrations.Status, error)
	close    func() error
}

// openBackend opens postgres when DATABASE_URL is set and the sqlite file
// at DBPath otherwise.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.UsePostgres() {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", "postgres").Wrap(err)
		}
		return &backend{
			name:     "postgres",
			users:    store.Users(),
			accounts: store.Accounts(),
			migrate:  store.Migrate,
			status:   store.MigrationStatus,
			close:    store.Close,
		}, nil
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", "sqlite").With("path", cfg.DBPath).Wrap(err)
	}
	return &backend{
		name:     "sqlite",
		users:    db.Users(),
		accounts: db.Accounts(),
		migrate:  db.Migrate,
		status:   db.MigrationStatus,
		close:    db.Close,
	}, nil
}
