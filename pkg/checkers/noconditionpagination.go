package checkers

import (
	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// NoConditionPaginationConfig is the typed config for
// NoConditionPagination (§4.3.B).
type NoConditionPaginationConfig struct {
	sqlcontext.CheckerConfig
}

// NoConditionPaginationChecker flags a PHYSICAL-paginated statement with
// no real WHERE condition: LIMIT/OFFSET alone does not bound which rows
// are scanned to produce the page. Sets details.earlyReturn=true so
// DeepPagination, LargePageSize, and MissingOrderBy skip — their
// observations would be redundant once this fires (§4.3.B, §4.4 rule 2,
// §8 invariant 6).
type NoConditionPaginationChecker struct {
	cfg NoConditionPaginationConfig
}

func NewNoConditionPaginationChecker(cfg NoConditionPaginationConfig) *NoConditionPaginationChecker {
	return &NoConditionPaginationChecker{cfg: cfg}
}

func (c *NoConditionPaginationChecker) Name() string                  { return "NoConditionPagination" }
func (c *NoConditionPaginationChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *NoConditionPaginationChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *NoConditionPaginationChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	class, _, ok := classify(ctx)
	if class != pagination.Physical || !ok {
		return
	}

	stmt, _ := Statement(ctx)
	if !whereIsAbsentOrDummy(stmt) {
		return
	}

	result.SetDetail(sqlcontext.EarlyReturn, true)
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement paginates with no real WHERE condition bounding the scanned rows",
		"add a selective WHERE condition alongside pagination",
		nil)
}
