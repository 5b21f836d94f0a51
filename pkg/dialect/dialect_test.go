package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
)

func parseSelect(t *testing.T, sql string) (*sqlast.Statement, *sqlast.Cache) {
	t.Helper()
	facade := sqlast.NewTestFacade()
	cache := facade.NewCache()
	stmt, err := cache.Parse(sql, sqlast.Strict)
	require.NoError(t, err)
	return stmt, cache
}

func TestScenarioS6OracleRownumInjection(t *testing.T) {
	stmt, cache := parseSelect(t, "SELECT * FROM t")
	strategy := CreateDialect("Oracle")

	rewritten, err := strategy.ApplyLimit(stmt, 100, cache)
	require.NoError(t, err)

	got := collapseWhitespace(sqlast.Serialize(rewritten))
	want := collapseWhitespace("SELECT * FROM (SELECT * FROM t) WHERE ROWNUM <= 100")
	assert.Equal(t, want, got)
}

func TestMySQLAppendsLimit(t *testing.T) {
	stmt, cache := parseSelect(t, "SELECT * FROM t")
	strategy := CreateDialect("MySQL")

	rewritten, err := strategy.ApplyLimit(stmt, 50, cache)
	require.NoError(t, err)
	assert.Contains(t, sqlast.Serialize(rewritten), "limit 50")
}

func TestSQLServerInjectsTop(t *testing.T) {
	stmt, cache := parseSelect(t, "SELECT id, name FROM t")
	strategy := CreateDialect("Microsoft SQL Server")

	rewritten, err := strategy.ApplyLimit(stmt, 25, cache)
	require.NoError(t, err)
	assert.Contains(t, collapseWhitespace(sqlast.Serialize(rewritten)), "top 25")
}

func TestDB2AppendsFetchFirst(t *testing.T) {
	stmt, cache := parseSelect(t, "SELECT * FROM t")
	strategy := CreateDialect("DB2/LINUXX8664")

	rewritten, err := strategy.ApplyLimit(stmt, 10, cache)
	require.NoError(t, err)
	assert.Contains(t, collapseWhitespace(sqlast.Serialize(rewritten)), "fetch first 10 rows only")
}

func TestApplyLimitNoOpWhenLimitPresent(t *testing.T) {
	stmt, cache := parseSelect(t, "SELECT * FROM t LIMIT 5")
	strategy := CreateDialect("MySQL")

	rewritten, err := strategy.ApplyLimit(stmt, 50, cache)
	require.NoError(t, err)
	assert.Same(t, stmt, rewritten)
}

func TestUnknownProductFallsBackToMySQL(t *testing.T) {
	strategy := CreateDialect("SomeExoticEngine")
	assert.Equal(t, "MySQL", strategy.DatabaseType())
}

func TestFactoryCachesByDataSourceID(t *testing.T) {
	f := NewFactory()
	a := f.GetDialect(DataSource{ID: "ds1", ProductName: "Oracle"})
	b := f.GetDialect(DataSource{ID: "ds1", ProductName: "PostgreSQL"})
	assert.Equal(t, a.DatabaseType(), b.DatabaseType(), "second lookup with same ID must hit the cache")
}

func collapseWhitespace(s string) string {
	out := make([]byte, 0, len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' {
			if !prevSpace {
				out = append(out, ' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out = append(out, c)
	}
	return string(out)
}
