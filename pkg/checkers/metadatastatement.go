package checkers

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// MetadataStatementConfig is the typed config for MetadataStatement
// (§4.3.A).
type MetadataStatementConfig struct {
	sqlcontext.CheckerConfig
}

// MetadataStatementChecker flags SHOW / DESCRIBE / EXPLAIN / USE
// statements reaching the validator (§4.3.A): informational and
// connection-scoping statements that legitimate runtime traffic rarely
// sends through a guarded mapper path.
type MetadataStatementChecker struct {
	cfg MetadataStatementConfig
}

func NewMetadataStatementChecker(cfg MetadataStatementConfig) *MetadataStatementChecker {
	return &MetadataStatementChecker{cfg: cfg}
}

func (c *MetadataStatementChecker) Name() string                  { return "MetadataStatement" }
func (c *MetadataStatementChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *MetadataStatementChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *MetadataStatementChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	switch ctx.SqlType() {
	case sqlcontext.SqlShow, sqlcontext.SqlUse:
	default:
		return
	}
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement is a metadata/connection-scoping statement",
		"metadata statements should not reach the guarded query path",
		nil)
}
