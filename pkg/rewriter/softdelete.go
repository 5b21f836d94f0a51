package rewriter

import (
	"fmt"
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// SoftDeleteConfig configures the soft-delete filter rewriter (§4.6
// "Soft-delete filter").
type SoftDeleteConfig struct {
	Enabled bool
	// Column defaults to "deleted"; Value defaults to "0" (rendered
	// verbatim, unquoted, matching the common `deleted = 0` convention).
	Column string
	Value  string
	// Tables restricts the rewrite to specific tables; empty applies to
	// every SELECT/UPDATE/DELETE.
	Tables []string
}

func (c SoftDeleteConfig) column() string {
	if c.Column == "" {
		return "deleted"
	}
	return c.Column
}

func (c SoftDeleteConfig) value() string {
	if c.Value == "" {
		return "0"
	}
	return c.Value
}

// SoftDeleteRewriter injects `AND deleted = 0` (or the configured
// column/value) into SELECT/UPDATE/DELETE WHERE clauses, idempotent by
// column presence exactly like TenantIsolationRewriter (§4.6).
type SoftDeleteRewriter struct {
	cfg SoftDeleteConfig
}

func NewSoftDeleteRewriter(cfg SoftDeleteConfig) *SoftDeleteRewriter {
	return &SoftDeleteRewriter{cfg: cfg}
}

func (r *SoftDeleteRewriter) Name() string  { return "SoftDelete" }
func (r *SoftDeleteRewriter) Enabled() bool { return r.cfg.Enabled }

func (r *SoftDeleteRewriter) Rewrite(stmt *sqlast.Statement, ctx *sqlcontext.SqlContext, cache *sqlast.Cache) (*sqlast.Statement, error) {
	switch stmt.Variant() {
	case sqlast.VariantSelect, sqlast.VariantUpdate, sqlast.VariantDelete:
	default:
		return stmt, nil
	}

	if len(r.cfg.Tables) > 0 && !tableMatch(stmt.Tables(), r.cfg.Tables) {
		return stmt, nil
	}

	column := r.cfg.column()
	for _, col := range stmt.WhereColumnRefs() {
		if strings.EqualFold(col, column) {
			return stmt, nil
		}
	}

	predicate := fmt.Sprintf("%s = %s", column, r.cfg.value())
	return cache.MutateWhereAnd(stmt, predicate)
}

func tableMatch(tables, allowed []string) bool {
	for _, t := range tables {
		for _, a := range allowed {
			if strings.EqualFold(t, a) {
				return true
			}
		}
	}
	return false
}
