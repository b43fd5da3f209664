package storage

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openTestDB(t)

	var version int
	require.NoError(t, db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version))
	require.GreaterOrEqual(t, version, 2)
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	db1, err := Open(dir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	db1.Close()

	db2, err := Open(dir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer db2.Close()

	var version int
	require.NoError(t, db2.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version))
	require.GreaterOrEqual(t, version, 2)
}
