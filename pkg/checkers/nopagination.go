package checkers

import (
	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// NoPaginationConfig is the typed config for NoPagination (§4.3.B, §6
// "noPagination: whitelistMapperIds, whitelistTables, uniqueKeyFields,
// enforceForAllQueries").
type NoPaginationConfig struct {
	sqlcontext.CheckerConfig
	WhitelistMapperIDs   []string
	WhitelistTables      []string
	UniqueKeyFields      []string
	EnforceForAllQueries bool
	BlacklistFields      []string
}

func (c NoPaginationConfig) uniqueKeyFields() []string {
	if len(c.UniqueKeyFields) == 0 {
		return []string{"id"}
	}
	return c.UniqueKeyFields
}

func (c NoPaginationConfig) blacklistFields() []string {
	if len(c.BlacklistFields) == 0 {
		return defaultBlacklistFields
	}
	return c.BlacklistFields
}

// NoPaginationChecker flags unpaginated SELECTs with risk stratified by
// how exposed the scan is: CRITICAL with no WHERE at all, HIGH when the
// WHERE is made up entirely of blacklisted flag columns, MEDIUM for an
// otherwise-normal WHERE when enforceForAllQueries is on (§4.3.B).
// A WHERE that references any unique-key column, whitelisted tables, and
// whitelisted mapper ids are exempt outright; for the unique-key exemption
// the comparison operator is not examined (`id > 5` is exempt too).
type NoPaginationChecker struct {
	cfg NoPaginationConfig
}

func NewNoPaginationChecker(cfg NoPaginationConfig) *NoPaginationChecker {
	return &NoPaginationChecker{cfg: cfg}
}

func (c *NoPaginationChecker) Name() string                  { return "NoPagination" }
func (c *NoPaginationChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *NoPaginationChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *NoPaginationChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if ctx.SqlType() != sqlcontext.SqlSelect {
		return
	}
	class, _, ok := classify(ctx)
	if class != pagination.None || !ok {
		return
	}

	if matchAnyWildcard(c.cfg.WhitelistMapperIDs, ctx.MapperID()) {
		return
	}

	stmt, _ := Statement(ctx)
	for _, table := range stmt.Tables() {
		if matchAnyWildcard(c.cfg.WhitelistTables, table) {
			return
		}
	}

	if c.isUniqueKeyLookup(stmt) {
		return
	}

	if !stmt.HasWhereClause() {
		c.emit(result, sqlcontext.RiskCritical, "statement has no pagination and no WHERE clause: risks a full table scan")
		return
	}

	cols := stmt.WhereColumnRefs()
	if len(cols) > 0 && allMatch(cols, c.cfg.blacklistFields()) {
		c.emit(result, sqlcontext.RiskHigh, "statement has no pagination and its WHERE clause filters only on blacklisted flag columns")
		return
	}

	if c.cfg.EnforceForAllQueries {
		c.emit(result, sqlcontext.RiskMedium, "statement has no pagination")
	}
}

func (c *NoPaginationChecker) isUniqueKeyLookup(stmt *sqlast.Statement) bool {
	cols := stmt.WhereColumnRefs()
	if len(cols) == 0 {
		return false
	}
	for _, col := range cols {
		if matchAnyWildcard(c.cfg.uniqueKeyFields(), col) {
			return true
		}
	}
	return false
}

func allMatch(values, patterns []string) bool {
	for _, v := range values {
		if !matchAnyWildcard(patterns, v) {
			return false
		}
	}
	return true
}

func (c *NoPaginationChecker) emit(result *sqlcontext.ValidationResult, risk sqlcontext.RiskLevel, message string) {
	addViolation(result, risk, c.Name(), message,
		"add LIMIT/OFFSET pagination or a selective unique-key condition",
		nil)
}
