package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUp_SQLite(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	n, err := Up(ctx, SQLite, db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// second run is a no-op
	n, err = Up(ctx, SQLite, db)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, table := range []string{"users", "accounts", "bank_details", "credit_details"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		assert.NoError(t, err, "table %s missing", table)
	}
}

func TestList_SQLite(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	_, err := Up(ctx, SQLite, db)
	require.NoError(t, err)

	after, err := List(ctx, SQLite, db)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, int64(1), after[0].Version)
	assert.Equal(t, int64(2), after[1].Version)
	for _, s := range after {
		assert.True(t, s.Applied, "migration %d not applied", s.Version)
	}
}

func TestUnknownDialect(t *testing.T) {
	db := openMemory(t)

	_, err := Up(context.Background(), Dialect("oracle"), db)
	assert.Error(t, err)
}
