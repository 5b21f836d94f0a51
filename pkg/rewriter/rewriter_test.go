package rewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/dialect"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

func parse(t *testing.T, cache *sqlast.Cache, sql string) *sqlast.Statement {
	t.Helper()
	stmt, err := cache.Parse(sql, sqlast.Strict)
	require.NoError(t, err)
	return stmt
}

func newCache() *sqlast.Cache {
	return sqlast.NewTestFacade().NewCache()
}

func buildCtx(t *testing.T, sql string, params map[string]any) *sqlcontext.SqlContext {
	t.Helper()
	ctx, err := sqlcontext.NewBuilder().SQL(sql).MapperID("test.query").Params(params).Build()
	require.NoError(t, err)
	return ctx
}

func TestTenantIsolationInjectsAndCombinesWithExistingWhere(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders WHERE status = 'open'")
	ctx := buildCtx(t, "SELECT * FROM orders WHERE status = 'open'", map[string]any{"tenant_id": 42})

	rw := NewTenantIsolationRewriter(TenantIsolationConfig{Enabled: true})
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)

	sql := sqlast.Serialize(out)
	assert.Contains(t, sql, "tenant_id = 42")
	assert.Contains(t, sql, "status = 'open'")
}

func TestTenantIsolationIdempotentWhenColumnAlreadyPresent(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders WHERE tenant_id = 42")
	ctx := buildCtx(t, "SELECT * FROM orders WHERE tenant_id = 42", map[string]any{"tenant_id": 42})

	rw := NewTenantIsolationRewriter(TenantIsolationConfig{Enabled: true})
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)
	assert.Same(t, stmt, out)
}

func TestTenantIsolationNoOpWithoutParam(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx := buildCtx(t, "SELECT * FROM orders", nil)

	rw := NewTenantIsolationRewriter(TenantIsolationConfig{Enabled: true})
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)
	assert.Same(t, stmt, out)
}

func TestSoftDeleteInjectsWhereAbsent(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx := buildCtx(t, "SELECT * FROM orders", nil)

	rw := NewSoftDeleteRewriter(SoftDeleteConfig{Enabled: true})
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)
	assert.Contains(t, sqlast.Serialize(out), "deleted = 0")
}

func TestSoftDeleteIdempotentOnSecondApplication(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx := buildCtx(t, "SELECT * FROM orders", nil)

	rw := NewSoftDeleteRewriter(SoftDeleteConfig{Enabled: true})
	once, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)

	twice, err := rw.Rewrite(once, ctx, cache)
	require.NoError(t, err)
	assert.Same(t, once, twice, "applying the rewriter to its own output must be a no-op")
}

func TestLimitInjectionAddsDefaultLimit(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx := buildCtx(t, "SELECT * FROM orders", nil)

	rw := NewLimitInjectionRewriter(LimitInjectionConfig{Enabled: true, DefaultLimit: 500}, dialect.CreateDialect("MySQL"))
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)
	assert.Contains(t, sqlast.Serialize(out), "limit 500")
}

func TestLimitInjectionSkippedWhenPageParamHintPresent(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx, err := sqlcontext.NewBuilder().SQL("SELECT * FROM orders").MapperID("test.query").
		ExecutionHints(sqlcontext.ExecutionHints{PageParam: &sqlcontext.PageParam{Page: 1, PageSize: 20}}).
		Build()
	require.NoError(t, err)

	rw := NewLimitInjectionRewriter(LimitInjectionConfig{Enabled: true}, dialect.CreateDialect("MySQL"))
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)
	assert.Same(t, stmt, out)
}

func TestLimitInjectionSkippedWhenLimitAlreadyPresent(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders LIMIT 10")
	ctx := buildCtx(t, "SELECT * FROM orders LIMIT 10", nil)

	rw := NewLimitInjectionRewriter(LimitInjectionConfig{Enabled: true}, dialect.CreateDialect("MySQL"))
	out, err := rw.Rewrite(stmt, ctx, cache)
	require.NoError(t, err)
	assert.Same(t, stmt, out)
}

func TestPipelineSkipsDisabledRewriters(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx := buildCtx(t, "SELECT * FROM orders", map[string]any{"tenant_id": 7})

	tenant := NewTenantIsolationRewriter(TenantIsolationConfig{Enabled: false})
	softDelete := NewSoftDeleteRewriter(SoftDeleteConfig{Enabled: true})

	pipeline := New([]Rewriter{tenant, softDelete}, cache, nil)
	out := pipeline.Rewrite(stmt, ctx)

	sql := sqlast.Serialize(out)
	assert.NotContains(t, sql, "tenant_id")
	assert.Contains(t, sql, "deleted = 0")
}

func TestPipelineContinuesAfterRewriterFailure(t *testing.T) {
	cache := newCache()
	stmt := parse(t, cache, "SELECT * FROM orders")
	ctx := buildCtx(t, "SELECT * FROM orders", nil)

	pipeline := New([]Rewriter{failingRewriter{}, NewSoftDeleteRewriter(SoftDeleteConfig{Enabled: true})}, cache, nil)
	out := pipeline.Rewrite(stmt, ctx)

	assert.Contains(t, sqlast.Serialize(out), "deleted = 0")
}

type failingRewriter struct{}

func (failingRewriter) Name() string  { return "Failing" }
func (failingRewriter) Enabled() bool { return true }
func (failingRewriter) Rewrite(stmt *sqlast.Statement, ctx *sqlcontext.SqlContext, cache *sqlast.Cache) (*sqlast.Statement, error) {
	return nil, assertError
}

var assertError = &rewriteTestError{}

type rewriteTestError struct{}

func (*rewriteTestError) Error() string { return "synthetic rewriter failure" }
