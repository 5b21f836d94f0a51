//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresStore starts a real PostgreSQL container, opens it through
// Open (which runs the goose migrations in internal/audit/migrations/postgres),
// and returns the resulting store. Gated behind the "integration" build tag:
// it needs a Docker daemon, unlike the sqlite-backed tests that run by default.
func setupPostgresStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("sqlguard_test"),
		postgres.WithUsername("sqlguard"),
		postgres.WithPassword("sqlguard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := Open(ctx, Config{Driver: "postgres", DSN: connStr}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresRecordAndListRoundTrips(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	r := Record{RunID: "run-pg-1", MapperID: "mapper.a", SQL: "DELETE FROM users", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "missing WHERE"}
	require.NoError(t, store.Record(ctx, r))

	got, err := store.ListRecords(ctx, Filter{RunID: "run-pg-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "NoWhereClause", got[0].Kind)
}
