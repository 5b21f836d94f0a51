package checkers

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// NoWhereClauseConfig is the typed config for NoWhereClause (§4.3.A).
type NoWhereClauseConfig struct {
	sqlcontext.CheckerConfig
}

// NoWhereClause flags SELECT/UPDATE/DELETE statements with no WHERE
// clause at all. INSERT is skipped; a WHERE that is only a dummy
// condition still passes here and is caught by DummyCondition instead
// (§4.4 rule 1: NoWhereClause runs before DummyCondition).
type NoWhereClauseChecker struct {
	cfg NoWhereClauseConfig
}

func NewNoWhereClauseChecker(cfg NoWhereClauseConfig) *NoWhereClauseChecker {
	return &NoWhereClauseChecker{cfg: cfg}
}

func (c *NoWhereClauseChecker) Name() string                       { return "NoWhereClause" }
func (c *NoWhereClauseChecker) Enabled() bool                       { return c.cfg.Enabled }
func (c *NoWhereClauseChecker) RiskLevel() sqlcontext.RiskLevel      { return c.cfg.RiskLevel }

func (c *NoWhereClauseChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	switch ctx.SqlType() {
	case sqlcontext.SqlSelect, sqlcontext.SqlUpdate, sqlcontext.SqlDelete:
	default:
		return
	}

	stmt, ok := Statement(ctx)
	if !ok {
		return
	}
	if stmt.HasWhereClause() {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement has no WHERE clause",
		"add a WHERE clause scoping the affected rows",
		nil)
}
