package checkers

import (
	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// MissingOrderByConfig is the typed config for MissingOrderBy (§4.3.B).
type MissingOrderByConfig struct {
	sqlcontext.CheckerConfig
}

// MissingOrderByChecker flags a PHYSICAL-paginated statement with no
// ORDER BY clause: without one, which rows land on which page is
// undefined across calls (§4.3.B, presence check only — column
// uniqueness is not evaluated). Skips when NoConditionPagination already
// fired.
type MissingOrderByChecker struct {
	cfg MissingOrderByConfig
}

func NewMissingOrderByChecker(cfg MissingOrderByConfig) *MissingOrderByChecker {
	return &MissingOrderByChecker{cfg: cfg}
}

func (c *MissingOrderByChecker) Name() string                  { return "MissingOrderBy" }
func (c *MissingOrderByChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *MissingOrderByChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *MissingOrderByChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if result.EarlyReturnSet() {
		return
	}
	class, _, ok := classify(ctx)
	if class != pagination.Physical || !ok {
		return
	}

	stmt, _ := Statement(ctx)
	if stmt.HasOrderBy() {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"paginated statement has no ORDER BY clause",
		"add an ORDER BY so page boundaries are deterministic",
		nil)
}
