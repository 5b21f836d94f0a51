package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheParseVariants(t *testing.T) {
	f := NewTestFacade()

	cases := []struct {
		sql     string
		variant Variant
	}{
		{"SELECT id FROM users WHERE id = 1", VariantSelect},
		{"UPDATE users SET name = 'x' WHERE id = 1", VariantUpdate},
		{"DELETE FROM users WHERE id = 1", VariantDelete},
		{"INSERT INTO users (id, name) VALUES (1, 'x')", VariantInsert},
		{"CALL sp_archive_users()", VariantCall},
		{"CREATE TABLE t (id INT)", VariantDDL},
		{"SET SESSION sql_mode = 'STRICT_ALL_TABLES'", VariantSetVar},
		{"SHOW TABLES", VariantShow},
		{"USE analytics", VariantUse},
	}

	for _, tc := range cases {
		c := f.NewCache()
		stmt, err := c.Parse(tc.sql, Strict)
		require.NoError(t, err, tc.sql)
		assert.Equal(t, tc.variant, stmt.Variant(), tc.sql)
	}
}

func TestCacheParseLenientDegradesToUnparsed(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	stmt, err := c.Parse("SELECT FROM WHERE garbage )))", Lenient)
	require.NoError(t, err)
	assert.Equal(t, VariantUnparsed, stmt.Variant())
	assert.True(t, stmt.IsUnparsed())
}

func TestCacheParseStrictPropagatesError(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	_, err := c.Parse("SELECT FROM WHERE garbage )))", Strict)
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCacheParseMemoizesByText(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	sql := "SELECT id FROM users WHERE id = 1"
	first, err := c.Parse(sql, Strict)
	require.NoError(t, err)
	second, err := c.Parse(sql, Strict)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCacheParseMultiSplitsStatements(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	stmt, err := c.ParseMulti("SELECT 1; SELECT 2;")
	require.NoError(t, err)
	assert.Equal(t, VariantMultiStatement, stmt.Variant())
	assert.Len(t, stmt.SubStatements(), 2)
}

func TestCacheParseMultiSingleStatementIsNotMulti(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	stmt, err := c.ParseMulti("SELECT 1;")
	require.NoError(t, err)
	assert.NotEqual(t, VariantMultiStatement, stmt.Variant())
}

func TestStatementHasWhereClause(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	withWhere, err := c.Parse("SELECT id FROM users WHERE id = 1", Strict)
	require.NoError(t, err)
	assert.True(t, withWhere.HasWhereClause())

	withoutWhere, err := c.Parse("SELECT id FROM users", Strict)
	require.NoError(t, err)
	assert.False(t, withoutWhere.HasWhereClause())
}

func TestStatementTables(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	stmt, err := c.Parse("SELECT u.id FROM users u JOIN orders o ON u.id = o.user_id", Strict)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "orders"}, stmt.Tables())
}

func TestStatementLimitLiteralVsParam(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	lit, err := c.Parse("SELECT id FROM users LIMIT 20 OFFSET 100000", Strict)
	require.NoError(t, err)
	lc := lit.Limit()
	require.NotNil(t, lc.RowcountLiteral)
	assert.Equal(t, 20, *lc.RowcountLiteral)
	require.NotNil(t, lc.OffsetLiteral)
	assert.Equal(t, 100000, *lc.OffsetLiteral)

	param, err := c.Parse("SELECT id FROM users LIMIT :limit OFFSET :offset", Strict)
	require.NoError(t, err)
	lp := param.Limit()
	assert.True(t, lp.RowcountIsParam || lp.RowcountLiteral == nil)
}

func TestStatementFunctionCalls(t *testing.T) {
	f := NewTestFacade()
	c := f.NewCache()

	stmt, err := c.Parse("SELECT SLEEP(5) FROM dual", Strict)
	require.NoError(t, err)
	assert.Contains(t, stmt.FunctionCalls(), "sleep")
}

func TestNormalizedRawCollapsesWhitespaceAndCase(t *testing.T) {
	a := NormalizedRaw("SELECT  *\nFROM   users WHERE 1=1")
	b := NormalizedRaw("select * from users where 1=1")
	assert.Equal(t, a, b)
}
