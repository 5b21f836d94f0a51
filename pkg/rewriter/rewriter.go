// Package rewriter implements C6: the ordered pipeline of AST rewrites
// (tenant isolation, soft-delete filter, limit injection) applied after
// validation succeeds (§4.6).
package rewriter

import (
	"log/slog"

	"github.com/sqlguard/sqlguard/internal/obsmetrics"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// Rewriter is the C6 plugin contract (§6 "Rewriter plugin contract").
// Returning the same *sqlast.Statement reference signals "no change"
// (§4.6 invariant 1, §8 invariant 7 rewriter idempotence). Implementations
// must clone-then-mutate rather than mutate the AST they were handed
// (§9 "Ownership").
type Rewriter interface {
	Name() string
	Enabled() bool
	Rewrite(stmt *sqlast.Statement, ctx *sqlcontext.SqlContext, cache *sqlast.Cache) (*sqlast.Statement, error)
}

// Pipeline applies a configured ordered list of enabled rewriters
// sequentially, each receiving the output of the previous step (§4.6).
type Pipeline struct {
	rewriters []Rewriter
	cache     *sqlast.Cache
	logger    *slog.Logger
	metrics   *obsmetrics.Metrics
}

// New builds a Pipeline. cache is the same per-call statement cache
//(pkg/sqlast.Cache) the validator used to parse the original statement,
// so rewrites and re-caches stay coherent within one call (§9 "Rewriter
// ↔ parser coupling").
func New(rewriters []Rewriter, cache *sqlast.Cache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{rewriters: rewriters, cache: cache, logger: logger}
}

// WithMetrics attaches a Prometheus collector set; every subsequent
// Rewrite call records applied rewrites and recovered failures against
// it. Optional.
func (p *Pipeline) WithMetrics(m *obsmetrics.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Rewrite runs the pipeline over stmt, short-circuiting re-serialization
// whenever a rewriter returns the same reference it was given (§4.6
// invariant 1). A rewriter that errors is logged and skipped; the
// pipeline continues with the AST unchanged from before that step
// (§4.6 "Failure", §7 RewriterFailure).
func (p *Pipeline) Rewrite(stmt *sqlast.Statement, ctx *sqlcontext.SqlContext) *sqlast.Statement {
	current := stmt
	for _, rw := range p.rewriters {
		if !rw.Enabled() {
			continue
		}
		current = p.applyOne(rw, current, ctx)
	}
	return current
}

func (p *Pipeline) applyOne(rw Rewriter, stmt *sqlast.Statement, ctx *sqlcontext.SqlContext) (result *sqlast.Statement) {
	result = stmt
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("rewriter panicked, passing statement through unchanged",
				"rewriter", rw.Name(), "panic", r)
			if p.metrics != nil {
				p.metrics.RewriterFailuresTotal.WithLabelValues(rw.Name()).Inc()
			}
			result = stmt
		}
	}()

	next, err := rw.Rewrite(stmt, ctx, p.cache)
	if err != nil {
		p.logger.Error("rewriter failed, passing statement through unchanged",
			"rewriter", rw.Name(), "error", err)
		if p.metrics != nil {
			p.metrics.RewriterFailuresTotal.WithLabelValues(rw.Name()).Inc()
		}
		return stmt
	}
	if p.metrics != nil && next != stmt {
		p.metrics.RewritesAppliedTotal.WithLabelValues(rw.Name()).Inc()
	}
	return next
}
