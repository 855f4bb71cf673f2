package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/migrations"
)

func TestFiles(t *testing.T) {
	for _, driver := range []database.Driver{database.DriverSQLite, database.DriverPostgres} {
		names, err := migrations.Files(driver)
		require.NoError(t, err)
		assert.Equal(t, []string{
			driver.String() + "/001_board.up.sql",
			driver.String() + "/002_goals.up.sql",
			driver.String() + "/003_sessions.up.sql",
		}, names)
	}

	_, err := migrations.Files(database.Driver("mysql"))
	assert.Error(t, err)
}

func TestRun_SQLiteIsRepeatable(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: database.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Run(ctx, conn))
	require.NoError(t, migrations.Run(ctx, conn))

	for _, table := range []string{"tasks", "goals", "sessions"} {
		var n int
		err := conn.QueryRow(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}
