package checkers

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// DdlOperationConfig is the typed config for DdlOperation (§4.3.A).
type DdlOperationConfig struct {
	sqlcontext.CheckerConfig
}

// DdlOperationChecker flags CREATE/ALTER/DROP/TRUNCATE/RENAME statements
// (§4.3.A): schema mutation is almost never a legitimate runtime query.
type DdlOperationChecker struct {
	cfg DdlOperationConfig
}

func NewDdlOperationChecker(cfg DdlOperationConfig) *DdlOperationChecker {
	return &DdlOperationChecker{cfg: cfg}
}

func (c *DdlOperationChecker) Name() string                  { return "DdlOperation" }
func (c *DdlOperationChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *DdlOperationChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *DdlOperationChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if ctx.SqlType() != sqlcontext.SqlDDL {
		return
	}
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement performs a schema-mutating DDL operation",
		"run DDL through a migration tool, not the runtime query path",
		nil)
}
