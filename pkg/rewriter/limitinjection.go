package rewriter

import (
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// LimitApplier is the shape a dialect strategy must satisfy to plug into
// LimitInjectionRewriter. pkg/dialect.Strategy already implements this
// structurally; declaring it locally keeps pkg/rewriter from depending on
// pkg/dialect's concrete types, only on the method shape it actually uses.
type LimitApplier interface {
	ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error)
}

// LimitInjectionConfig configures the limit-injection rewriter (§4.6
// "Limit injection").
type LimitInjectionConfig struct {
	Enabled      bool
	DefaultLimit int
}

func (c LimitInjectionConfig) defaultLimit() int {
	if c.DefaultLimit <= 0 {
		return 1000
	}
	return c.DefaultLimit
}

// LimitInjectionRewriter injects a dialect-appropriate row limit into a
// SELECT that has neither a LIMIT clause nor a host-supplied pagination
// descriptor, deferring to the host when one is present (§4.6: "cause
// limit injection to be skipped").
type LimitInjectionRewriter struct {
	cfg      LimitInjectionConfig
	strategy LimitApplier
}

func NewLimitInjectionRewriter(cfg LimitInjectionConfig, strategy LimitApplier) *LimitInjectionRewriter {
	return &LimitInjectionRewriter{cfg: cfg, strategy: strategy}
}

func (r *LimitInjectionRewriter) Name() string  { return "LimitInjection" }
func (r *LimitInjectionRewriter) Enabled() bool { return r.cfg.Enabled }

func (r *LimitInjectionRewriter) Rewrite(stmt *sqlast.Statement, ctx *sqlcontext.SqlContext, cache *sqlast.Cache) (*sqlast.Statement, error) {
	if stmt.Variant() != sqlast.VariantSelect {
		return stmt, nil
	}
	if stmt.Limit().HasLimit {
		return stmt, nil
	}

	hints := ctx.ExecutionHints()
	if hints.PageParam != nil {
		return stmt, nil
	}
	if rb := hints.RowBounds; rb != nil && !rb.IsInfinite {
		return stmt, nil
	}

	return r.strategy.ApplyLimit(stmt, r.cfg.defaultLimit(), cache)
}
