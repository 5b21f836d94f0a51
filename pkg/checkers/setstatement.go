package checkers

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// SetStatementConfig is the typed config for SetStatement (§4.3.A).
type SetStatementConfig struct {
	sqlcontext.CheckerConfig
}

// SetStatementChecker flags session variable modification
// (`SET @var=...`, `SET SESSION ...`) (§4.3.A): session state changes
// can alter how subsequent statements on the same connection behave.
type SetStatementChecker struct {
	cfg SetStatementConfig
}

func NewSetStatementChecker(cfg SetStatementConfig) *SetStatementChecker {
	return &SetStatementChecker{cfg: cfg}
}

func (c *SetStatementChecker) Name() string                  { return "SetStatement" }
func (c *SetStatementChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *SetStatementChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *SetStatementChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if ctx.SqlType() != sqlcontext.SqlSet {
		return
	}
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement modifies session state",
		"scope session variable changes outside of guarded query mappers",
		nil)
}
