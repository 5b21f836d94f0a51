// Package orchestrator implements C4: it invokes every registered
// checker against one (context, result) pair, honoring the fixed
// ordering rules of §4.4 and failing open when a checker panics.
package orchestrator

import (
	"log/slog"
	"sort"

	"github.com/sqlguard/sqlguard/internal/obsmetrics"
	"github.com/sqlguard/sqlguard/pkg/checkers"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// paginationFamily names the checkers whose verdicts depend on
// call-level ExecutionHints (host-supplied RowBounds/PageParam/plugin
// flags) rather than purely on the statement in front of them
// (pkg/pagination.Classify has no SQL-type gate at all). Replaying them
// against an arbitrary sub-statement of a MultiStatement blob — e.g. the
// "DROP TABLE u" half of scenario S5 — would let a host's pagination
// hints for the overall call fire false positives against a statement
// they were never about, so sub-statement replay skips this family.
var paginationFamily = map[string]bool{
	"LogicalPagination":     true,
	"NoConditionPagination": true,
	"DeepPagination":        true,
	"LargePageSize":         true,
	"MissingOrderBy":        true,
	"NoPagination":          true,
}

// precedence pairs encode §4.4 rules 1 and 2: (before, after) means
// "before" must be invoked ahead of "after" whenever both are
// registered. These are enforced independent of risk level so a custom
// config that reassigns risk levels can't silently break the documented
// early-return/WHERE dependency.
var precedence = [][2]string{
	{"NoWhereClause", "DummyCondition"},
	{"NoConditionPagination", "DeepPagination"},
	{"NoConditionPagination", "LargePageSize"},
	{"NoConditionPagination", "MissingOrderBy"},
}

// Orchestrator holds the fixed invocation order computed once at
// construction time from the registered checkers (§4.4: "every enabled
// checker is invoked at most once per call").
type Orchestrator struct {
	order   []checkers.Checker
	logger  *slog.Logger
	metrics *obsmetrics.Metrics
}

// WithMetrics attaches a Prometheus collector set; every subsequent Run
// records recovered checker panics against it. Optional.
func (o *Orchestrator) WithMetrics(m *obsmetrics.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// New builds an Orchestrator, computing the fixed order from registered
// in registration order: risk level descending (CRITICAL → LOW) as the
// primary key, registration order as the deterministic tie-break
// (§4.4 rule 3), then adjusted to satisfy the explicit precedence pairs
// above (§4.4 rules 1–2).
func New(registered []checkers.Checker, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	ordered := append([]checkers.Checker{}, registered...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RiskLevel() > ordered[j].RiskLevel()
	})
	ordered = enforcePrecedence(ordered)
	return &Orchestrator{order: ordered, logger: logger}
}

// enforcePrecedence applies each (before, after) pair: if "after" sits
// ahead of "before" in the list, "after" is moved to immediately follow
// "before". Idempotent and stable for the default checker set, where
// risk-descending order already satisfies every pair.
func enforcePrecedence(ordered []checkers.Checker) []checkers.Checker {
	indexOf := func(name string) int {
		for i, c := range ordered {
			if c.Name() == name {
				return i
			}
		}
		return -1
	}
	for _, pair := range precedence {
		beforeIdx := indexOf(pair[0])
		afterIdx := indexOf(pair[1])
		if beforeIdx == -1 || afterIdx == -1 || afterIdx > beforeIdx {
			continue
		}
		moved := ordered[afterIdx]
		ordered = append(ordered[:afterIdx], ordered[afterIdx+1:]...)
		beforeIdx = indexOf(pair[0])
		rest := append([]checkers.Checker{moved}, ordered[beforeIdx+1:]...)
		ordered = append(ordered[:beforeIdx+1], rest...)
	}
	return ordered
}

// Run invokes every enabled checker in fixed order against ctx and
// result. A checker that panics is logged and treated as having
// produced no violations; execution continues with the remaining
// checkers (§4.4 invariant b, §7 CheckerFailure). The orchestrator never
// mutates ctx (§4.4 invariant c); the emitted violations list preserves
// invocation order (§4.4 invariant d).
func (o *Orchestrator) Run(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	for _, checker := range o.order {
		if !checker.Enabled() {
			continue
		}
		o.runOne(checker, ctx, result)
	}
	o.runSubStatements(ctx, result)
}

// runSubStatements replays the structural, non-pagination checkers over
// each piece of a VariantMultiStatement blob, deriving a per-piece
// SqlContext with its own correctly-inferred SqlType and parsed AST
// (§4.3.A, §8 scenario S5: "SELECT * FROM u WHERE id=1; DROP TABLE u"
// must raise both MultiStatement and DdlOperation). Without this, every
// checker besides MultiStatementChecker only ever sees the call-level
// SqlType inferred from the whole blob's leading keyword, never the
// embedded DDL (or denied-table, or set-operation) sub-statement.
func (o *Orchestrator) runSubStatements(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := checkers.Statement(ctx)
	if !ok || stmt.Variant() != sqlast.VariantMultiStatement {
		return
	}
	for _, sub := range stmt.SubStatements() {
		subCtx := ctx.WithParsedStatement(sub).WithSqlType(sqlcontext.InferSqlType(sub.Raw()))
		for _, checker := range o.order {
			if !checker.Enabled() || paginationFamily[checker.Name()] {
				continue
			}
			o.runOne(checker, subCtx, result)
		}
	}
}

func (o *Orchestrator) runOne(checker checkers.Checker, ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("checker panicked, treating as no violation",
				"checker", checker.Name(), "panic", r)
			if o.metrics != nil {
				o.metrics.CheckerPanicsTotal.WithLabelValues(checker.Name()).Inc()
			}
		}
	}()
	checker.Check(ctx, result)
}

// Order exposes the computed fixed invocation order; tests use it to
// check the order a violation list comes out in.
func (o *Orchestrator) Order() []checkers.Checker {
	return append([]checkers.Checker{}, o.order...)
}
