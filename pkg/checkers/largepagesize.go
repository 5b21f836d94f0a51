package checkers

import (
	"fmt"

	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

const defaultMaxPageSize = 1000

// LargePageSizeConfig is the typed config for LargePageSize (§4.3.B, §6
// "paginationAbuse: maxPageSize").
type LargePageSizeConfig struct {
	sqlcontext.CheckerConfig
	MaxPageSize int
}

func (c LargePageSizeConfig) maxPageSize() int {
	if c.MaxPageSize <= 0 {
		return defaultMaxPageSize
	}
	return c.MaxPageSize
}

// LargePageSizeChecker flags a PHYSICAL-paginated statement whose
// extracted row count exceeds maxPageSize (§4.3.B). Skips when
// NoConditionPagination already fired.
type LargePageSizeChecker struct {
	cfg LargePageSizeConfig
}

func NewLargePageSizeChecker(cfg LargePageSizeConfig) *LargePageSizeChecker {
	return &LargePageSizeChecker{cfg: cfg}
}

func (c *LargePageSizeChecker) Name() string                  { return "LargePageSize" }
func (c *LargePageSizeChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *LargePageSizeChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *LargePageSizeChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if result.EarlyReturnSet() {
		return
	}
	class, limit, ok := classify(ctx)
	if class != pagination.Physical || !ok {
		return
	}

	rowcount := effectiveRowcount(ctx, limit)
	if rowcount == nil || *rowcount <= c.cfg.maxPageSize() {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		fmt.Sprintf("page size %d exceeds the configured maximum of %d", *rowcount, c.cfg.maxPageSize()),
		"reduce the page size or paginate in smaller batches",
		map[string]any{"pageSize": *rowcount})
}

// effectiveRowcount prefers the AST-derived literal row count; falls
// back to the host-supplied page size when the AST has none.
func effectiveRowcount(ctx *sqlcontext.SqlContext, limit sqlast.LimitClause) *int {
	if limit.RowcountIsParam {
		return nil
	}
	if limit.RowcountLiteral != nil {
		return limit.RowcountLiteral
	}
	hints := ctx.ExecutionHints()
	if hints.RowBounds != nil && !hints.RowBounds.IsInfinite {
		n := hints.RowBounds.Limit
		return &n
	}
	if hints.PageParam != nil {
		n := hints.PageParam.PageSize
		return &n
	}
	return nil
}
