package checkers

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// CallStatementConfig is the typed config for CallStatement (§4.3.A).
// It carries only the base Enabled and RiskLevel fields; there is no
// per-checker strategy, pkg/validator applies the global
// ViolationStrategy to its violations like any other checker's.
type CallStatementConfig struct {
	sqlcontext.CheckerConfig
}

// CallStatementChecker flags CALL/EXECUTE/EXEC statements (§4.3.A):
// stored-procedure invocation bypasses structural analysis of whatever
// the procedure itself does.
type CallStatementChecker struct {
	cfg CallStatementConfig
}

func NewCallStatementChecker(cfg CallStatementConfig) *CallStatementChecker {
	return &CallStatementChecker{cfg: cfg}
}

func (c *CallStatementChecker) Name() string                  { return "CallStatement" }
func (c *CallStatementChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *CallStatementChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *CallStatementChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if ctx.SqlType() != sqlcontext.SqlCall {
		return
	}
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement invokes a stored procedure",
		"review the procedure body separately; SqlGuard cannot see inside it",
		nil)
}
