package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pymetra/registration/internal/db"
	"github.com/stretchr/testify/require"
)

// NewDB opens a private in-memory SQLite database with all migrations applied
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(context.Background(), database.DB, "sqlite"))

	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}
