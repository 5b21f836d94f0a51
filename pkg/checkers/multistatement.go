package checkers

import (
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// MultiStatementConfig is the typed config for MultiStatement (§4.3.A).
type MultiStatementConfig struct {
	sqlcontext.CheckerConfig
}

// MultiStatement flags more than one top-level statement after parseMulti
// — the classic stacked-query injection shape (§4.3.A).
type MultiStatementChecker struct {
	cfg MultiStatementConfig
}

func NewMultiStatementChecker(cfg MultiStatementConfig) *MultiStatementChecker {
	return &MultiStatementChecker{cfg: cfg}
}

func (c *MultiStatementChecker) Name() string                  { return "MultiStatement" }
func (c *MultiStatementChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *MultiStatementChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *MultiStatementChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}
	if stmt.Variant() != sqlast.VariantMultiStatement {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"input contains more than one top-level statement",
		"submit exactly one statement per call; reject stacked queries at the boundary",
		map[string]any{"statementCount": len(stmt.SubStatements())})
}
