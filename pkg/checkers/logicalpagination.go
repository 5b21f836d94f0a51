package checkers

import (
	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// LogicalPaginationConfig is the typed config for LogicalPagination
// (§4.3.B).
type LogicalPaginationConfig struct {
	sqlcontext.CheckerConfig
}

// LogicalPaginationChecker flags LOGICAL classification: pagination
// parameters are present but nothing truncates the result set at the
// database — the host would have to page in memory (§4.3.B).
type LogicalPaginationChecker struct {
	cfg LogicalPaginationConfig
}

func NewLogicalPaginationChecker(cfg LogicalPaginationConfig) *LogicalPaginationChecker {
	return &LogicalPaginationChecker{cfg: cfg}
}

func (c *LogicalPaginationChecker) Name() string                  { return "LogicalPagination" }
func (c *LogicalPaginationChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *LogicalPaginationChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *LogicalPaginationChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	class, _, _ := classify(ctx)
	if class != pagination.Logical {
		return
	}

	diagnostics := map[string]any{}
	hints := ctx.ExecutionHints()
	if hints.PageParam != nil {
		diagnostics["page"] = hints.PageParam.Page
		diagnostics["pageSize"] = hints.PageParam.PageSize
	}
	if hints.RowBounds != nil {
		diagnostics["offset"] = hints.RowBounds.Offset
		diagnostics["limit"] = hints.RowBounds.Limit
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"pagination parameters are present but no database-level LIMIT or pagination plugin will apply them",
		"apply the page parameters as a database LIMIT/OFFSET or enable the pagination plugin",
		diagnostics)
}
