package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"lotto/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	defaultPostgresImage = "postgres:16-alpine"

	// The concurrent purchase tests hold one connection per goroutine
	testMaxConns         = 20
	testStatementTimeout = 15 * time.Second
)

// lotteryTables lists every table in dependency order for truncation
var lotteryTables = []string{"transactions", "tickets", "draws", "users"}

// TestDatabase is a migrated lottery schema inside a throwaway postgres container
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	URL       string
}

// SetupTestDatabase starts a postgres container, applies the lottery migrations and
// connects with the same pool options the service uses. TEST_POSTGRES_IMAGE overrides the image.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	image := os.Getenv("TEST_POSTGRES_IMAGE")
	if image == "" {
		image = defaultPostgresImage
	}

	container, err := postgres.Run(ctx,
		image,
		postgres.WithDatabase("lotto_test"),
		postgres.WithUsername("lotto"),
		postgres.WithPassword("lotto"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"app":       "lotto",
			"test-name": t.Name(),
		}),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() { testDB.terminate(t) })

	testDB.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrationsWithURL(testDB.URL))
	status, err := database.GetMigrationStatus(testDB.URL)
	require.NoError(t, err)
	require.True(t, status.Applied, "migrations were not applied")
	require.False(t, status.Dirty, "schema left dirty at version %d", status.Version)

	testDB.DB, err = database.NewConnection(ctx, testDB.URL,
		database.WithMaxConns(testMaxConns),
		database.WithStatementTimeout(testStatementTimeout),
	)
	require.NoError(t, err)

	return testDB
}

// Truncate empties every lottery table and restarts id sequences
func (td *TestDatabase) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range lotteryTables {
		_, err := td.DB.Exec(context.Background(), "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "truncate %s", table)
	}
}

// terminate closes the pool and removes the container, never failing the test
func (td *TestDatabase) terminate(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Logf("recovered during container cleanup: %v", r)
		}
	}()

	if td.DB != nil {
		td.DB.Close()
	}
	if td.Container == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := td.Container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate postgres container: %v", err)
	}
}
