package rewriter

import (
	"fmt"
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// TenantIsolationConfig configures the tenant-isolation rewriter (§4.6
// "Tenant isolation").
type TenantIsolationConfig struct {
	Enabled bool
	// Column is the tenant column name injected into WHERE, defaulting
	// to "tenant_id".
	Column string
	// ParamKey looks up the tenant value in the SqlContext's Params map.
	// Defaults to the same name as Column.
	ParamKey string
}

func (c TenantIsolationConfig) column() string {
	if c.Column == "" {
		return "tenant_id"
	}
	return c.Column
}

func (c TenantIsolationConfig) paramKey() string {
	if c.ParamKey != "" {
		return c.ParamKey
	}
	return c.column()
}

// TenantIsolationRewriter injects `AND <column> = <value>` into
// SELECT/UPDATE/DELETE statements, combining with any existing WHERE via
// AND (§4.6). It is idempotent: if the column already appears anywhere in
// the WHERE predicate it returns stmt unchanged (§4.6 invariant 1, "by
// checking for the column's presence").
type TenantIsolationRewriter struct {
	cfg TenantIsolationConfig
}

func NewTenantIsolationRewriter(cfg TenantIsolationConfig) *TenantIsolationRewriter {
	return &TenantIsolationRewriter{cfg: cfg}
}

func (r *TenantIsolationRewriter) Name() string  { return "TenantIsolation" }
func (r *TenantIsolationRewriter) Enabled() bool { return r.cfg.Enabled }

func (r *TenantIsolationRewriter) Rewrite(stmt *sqlast.Statement, ctx *sqlcontext.SqlContext, cache *sqlast.Cache) (*sqlast.Statement, error) {
	switch stmt.Variant() {
	case sqlast.VariantSelect, sqlast.VariantUpdate, sqlast.VariantDelete:
	default:
		return stmt, nil
	}

	value, ok := ctx.Params()[r.cfg.paramKey()]
	if !ok {
		return stmt, nil
	}

	column := r.cfg.column()
	for _, col := range stmt.WhereColumnRefs() {
		if strings.EqualFold(col, column) {
			return stmt, nil
		}
	}

	predicate := fmt.Sprintf("%s = %s", column, literalSQL(value))
	return cache.MutateWhereAnd(stmt, predicate)
}

// literalSQL renders a Go value as a SQL literal for injection into the
// rewritten WHERE predicate. Strings are single-quoted with embedded
// quotes doubled; everything else uses its default formatting.
func literalSQL(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	default:
		return fmt.Sprintf("%v", val)
	}
}
