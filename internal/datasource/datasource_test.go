package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/dialect"
)

func TestResolveSqliteMapsToMySQLLimitSyntax(t *testing.T) {
	r := NewResolver(dialect.NewFactory())
	strategy, err := r.Resolve(context.Background(), "ds-1", Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "MySQL", strategy.DatabaseType())
}

func TestResolvePassesThroughUnknownDriverNames(t *testing.T) {
	r := NewResolver(dialect.NewFactory())
	strategy, err := r.Resolve(context.Background(), "ds-2", Config{Driver: "sqlserver"})
	require.NoError(t, err)
	assert.Equal(t, "SQL Server", strategy.DatabaseType())
}

func TestResolveRejectsEmptyDriver(t *testing.T) {
	r := NewResolver(dialect.NewFactory())
	_, err := r.Resolve(context.Background(), "ds-3", Config{})
	require.Error(t, err)
	var unsupported *UnsupportedDriverError
	require.ErrorAs(t, err, &unsupported)
}

func TestResolveCachesByID(t *testing.T) {
	factory := dialect.NewFactory()
	r := NewResolver(factory)

	first, err := r.Resolve(context.Background(), "ds-4", Config{Driver: "oracle"})
	require.NoError(t, err)

	second := factory.GetDialect(dialect.DataSource{ID: "ds-4", ProductName: "ignored-because-cached"})
	assert.Equal(t, first, second)
}
