package db

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, database *sqlx.DB, name string) bool {
	t.Helper()
	var n int
	err := database.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name)
	require.NoError(t, err)
	return n == 1
}

func TestMigrateUpAndDown(t *testing.T) {
	ctx := context.Background()
	database, err := Init("sqlite", "file:migrate_up_down?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, RunMigrations(ctx, database.DB, "sqlite"))
	assert.True(t, tableExists(t, database, "registrations"))
	assert.True(t, tableExists(t, database, "oauth_credentials"))

	// a second run has nothing to apply
	require.NoError(t, RunMigrations(ctx, database.DB, "sqlite"))

	require.NoError(t, MigrateDown(ctx, database.DB, "sqlite"))
	assert.False(t, tableExists(t, database, "oauth_credentials"))
	assert.True(t, tableExists(t, database, "registrations"))

	require.NoError(t, MigrateDown(ctx, database.DB, "sqlite"))
	require.NoError(t, MigrateDown(ctx, database.DB, "sqlite"), "rolling back an empty schema is a no-op")
	assert.False(t, tableExists(t, database, "registrations"))
}

func TestUnknownDriver(t *testing.T) {
	_, err := newProvider(nil, "mysql")
	assert.Error(t, err)
}

func TestIsMemorySQLite(t *testing.T) {
	assert.True(t, isMemorySQLite("sqlite", ":memory:"))
	assert.True(t, isMemorySQLite("sqlite", "file:x?mode=memory&cache=shared"))
	assert.False(t, isMemorySQLite("sqlite", "./data/registrations.db"))
	assert.False(t, isMemorySQLite("pgx", "postgres://localhost/db"))
}
