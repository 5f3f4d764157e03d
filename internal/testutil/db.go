// Package testutil provides shared test helpers for packages that need a
// migrated Trellis database.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trellisdb/trellis/db"
)

// SetupTestDB creates an in-memory SQLite database with real migrations
// applied (test schema = production schema).
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// :memory: databases are per-connection; pin the pool to one connection
	// so every statement sees the migrated schema.
	testDB.SetMaxOpenConns(1)
	t.Cleanup(func() { testDB.Close() })

	err = db.Migrate(testDB, nil)
	require.NoError(t, err, "Failed to run migrations")

	return testDB
}

// SetupFileTestDB creates a migrated SQLite database backed by a temp file.
// Use this for tests that need concurrent connections; :memory: databases
// are per-connection.
func SetupFileTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trellis-test.db")
	testDB, err := db.Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	err = db.Migrate(testDB, nil)
	require.NoError(t, err, "Failed to run migrations")

	return testDB
}
