// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/dreamwise/dreamwise/internal/db"
)

// New returns an in-memory SQLite database with all migrations applied.
// The database is closed when the test finishes.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	return open(t, ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
}

// NewFile returns a migrated file database in a temporary directory, opened
// through the same path as a deployment so pool and lock settings apply.
func NewFile(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dreamwise.db")
	return open(t, path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite")
}

func open(t *testing.T, connection string) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Init(ctx, db.DriverSQLite, connection)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(ctx, database.DB, db.DriverSQLite))
	return database
}
