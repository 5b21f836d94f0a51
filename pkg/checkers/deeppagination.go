package checkers

import (
	"fmt"

	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

const defaultMaxOffset = 10_000

// DeepPaginationConfig is the typed config for DeepPagination (§4.3.B,
// §6 "paginationAbuse: maxOffset").
type DeepPaginationConfig struct {
	sqlcontext.CheckerConfig
	MaxOffset int
}

func (c DeepPaginationConfig) maxOffset() int {
	if c.MaxOffset <= 0 {
		return defaultMaxOffset
	}
	return c.MaxOffset
}

// DeepPaginationChecker flags a PHYSICAL-paginated statement whose
// literal OFFSET exceeds maxOffset — a deep-offset scan that gets more
// expensive the further a client pages (§4.3.B). Non-literal (bound
// parameter) offsets are skipped: the checker can't reason about a value
// it can't see at validation time. Skips when NoConditionPagination
// already fired (§4.4 rule 2, §8 invariant 6).
type DeepPaginationChecker struct {
	cfg DeepPaginationConfig
}

func NewDeepPaginationChecker(cfg DeepPaginationConfig) *DeepPaginationChecker {
	return &DeepPaginationChecker{cfg: cfg}
}

func (c *DeepPaginationChecker) Name() string                  { return "DeepPagination" }
func (c *DeepPaginationChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *DeepPaginationChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *DeepPaginationChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if result.EarlyReturnSet() {
		return
	}
	class, limit, ok := classify(ctx)
	if class != pagination.Physical || !ok {
		return
	}

	offset := effectiveOffset(ctx, limit)
	if offset == nil || *offset <= c.cfg.maxOffset() {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		fmt.Sprintf("pagination offset %d exceeds the configured maximum of %d", *offset, c.cfg.maxOffset()),
		"use keyset pagination instead of a deep OFFSET for large result sets",
		map[string]any{"offset": *offset})
}

// effectiveOffset prefers the AST-derived literal offset; falls back to
// the host-supplied RowBounds offset when the AST has none (e.g. the
// offset is injected by a pagination plugin rather than written in SQL).
// A non-literal (bound parameter) AST offset is treated as unknown, not
// as "no offset" (§4.3.B "non-literal offsets are skipped").
func effectiveOffset(ctx *sqlcontext.SqlContext, limit sqlast.LimitClause) *int {
	if limit.OffsetIsParam {
		return nil
	}
	if limit.OffsetLiteral != nil {
		return limit.OffsetLiteral
	}
	if rb := ctx.ExecutionHints().RowBounds; rb != nil && !rb.IsInfinite {
		offset := rb.Offset
		return &offset
	}
	return nil
}
