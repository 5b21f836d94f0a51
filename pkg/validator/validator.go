// Package validator implements C7, the single public facade the host
// calls: validate(context) → ValidationResult, and rewrite(statement,
// context) → statement for hosts that opt into the rewriter pipeline
// (§4.7).
package validator

import (
	"context"
	"log/slog"
	"time"

	"github.com/sqlguard/sqlguard/internal/obsmetrics"
	"github.com/sqlguard/sqlguard/pkg/checkers"
	"github.com/sqlguard/sqlguard/pkg/dedup"
	"github.com/sqlguard/sqlguard/pkg/orchestrator"
	"github.com/sqlguard/sqlguard/pkg/rewriter"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// Config is the root configuration surface of §6 ("Configuration shape
// (recognized options)"), minus the per-checker fields that live on
// checkers.Config.
type Config struct {
	Enabled  bool
	Strategy sqlcontext.ViolationStrategy
	Checkers checkers.Config
}

// Validator is the C7 facade. Safe for concurrent use: the parser facade
// and orchestrator are immutable after construction, and every call
// allocates its own statement cache and ValidationResult (§5 "per-call
// state ... effectively thread-local").
type Validator struct {
	cfg     Config
	parser  *sqlast.Facade
	dedup   dedup.Cache
	orc     *orchestrator.Orchestrator
	logger  *slog.Logger
	metrics *obsmetrics.Metrics
}

// WithMetrics attaches a Prometheus collector set; every subsequent
// Validate call records its outcome and duration against it. Optional —
// a Validator with no metrics attached behaves identically, just without
// the side recordings.
func (v *Validator) WithMetrics(m *obsmetrics.Metrics) *Validator {
	v.metrics = m
	v.orc.WithMetrics(m)
	return v
}

// New builds a Validator. dedupCache may be nil, in which case dedup is
// skipped entirely (step 2 of §4.7 is a no-op).
func New(cfg Config, parser *sqlast.Facade, dedupCache dedup.Cache, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Strategy.Valid() {
		cfg.Strategy = sqlcontext.StrategyBlock
	}
	return &Validator{
		cfg:    cfg,
		parser: parser,
		dedup:  dedupCache,
		orc:    orchestrator.New(checkers.DefaultRegistrationOrder(cfg.Checkers), logger),
		logger: logger,
	}
}

// Validate runs the §4.7 procedure to completion, returning a
// SqlSafetyViolation only when the effective strategy is BLOCK and at
// least one violation was found; WARN and LOG strategies never return an
// error, they log and return the result instead.
func (v *Validator) Validate(ctx context.Context, sc *sqlcontext.SqlContext) (*sqlcontext.ValidationResult, error) {
	start := time.Now()
	passing := sqlcontext.NewResult()

	// Step 1: global disable / empty SQL short-circuit.
	if !v.cfg.Enabled || sc.SQL() == "" {
		v.observe("disabled", start)
		return passing, nil
	}

	// Step 2: dedup check. A skip implies equivalent recent verification,
	// so the cached answer is "passing" (§4.2, §4.7).
	if v.dedup != nil {
		key := dedup.Key(sc.MapperID(), sc.SQL(), string(sc.SqlType()))
		skip, err := v.dedup.ShouldSkip(ctx, key)
		if err != nil {
			v.logger.Warn("dedup cache unavailable, proceeding without dedup", "error", err)
		} else if skip {
			if v.metrics != nil {
				v.metrics.DedupSkipsTotal.Inc()
			}
			v.observe("dedup_skip", start)
			return passing, nil
		}
	}

	// Step 3: parse, strict or lenient per the context's parse mode. A
	// semicolon-delimited blob is split first so a MultiStatement blob
	// (§3, §8 scenario S5) reaches the orchestrator as a
	// VariantMultiStatement rather than failing as a single statement
	// with trailing garbage; a split that does not yield multiple pieces
	// falls through to the normal single-statement parse so strict mode
	// still reports genuine syntax errors instead of swallowing them.
	cache := v.parser.NewCache()
	defer cache.Clear()

	stmt, err := cache.ParseMulti(sc.SQL())
	if err != nil || stmt.Variant() != sqlast.VariantMultiStatement {
		mode := sqlast.Lenient
		if sc.ParseMode() == sqlcontext.ParseStrict {
			mode = sqlast.Strict
		}
		stmt, err = cache.Parse(sc.SQL(), mode)
		if err != nil {
			if v.metrics != nil {
				v.metrics.ParseFailuresTotal.Inc()
			}
			result := sqlcontext.NewResult()
			result.AddViolation(sqlcontext.ViolationInfo{
				RiskLevel: sqlcontext.RiskCritical,
				Kind:      "ParseError",
				Message:   err.Error(),
			})
			return v.applyStrategy(result, start)
		}
	}
	sc = sc.WithParsedStatement(stmt)

	// Step 4: orchestrate over all registered checkers.
	result := sqlcontext.NewResult()
	v.orc.Run(sc, result)

	// Step 5/6: apply strategy and return.
	return v.applyStrategy(result, start)
}

func (v *Validator) applyStrategy(result *sqlcontext.ValidationResult, start time.Time) (*sqlcontext.ValidationResult, error) {
	if v.metrics != nil {
		for _, viol := range result.Violations {
			v.metrics.ObserveViolation(viol.Kind, viol.RiskLevel.String())
		}
	}
	if result.Passed() {
		v.observe("passed", start)
		return result, nil
	}

	switch v.cfg.Strategy {
	case sqlcontext.StrategyBlock:
		v.observe("blocked", start)
		return result, &SqlSafetyViolation{Violations: result.Violations}
	case sqlcontext.StrategyWarn:
		for _, viol := range result.Violations {
			v.logger.Warn("sql violation", "kind", viol.Kind, "risk", viol.RiskLevel.String(), "message", viol.Message)
		}
		v.observe("warned", start)
	case sqlcontext.StrategyLog:
		for _, viol := range result.Violations {
			v.logger.Info("sql violation", "kind", viol.Kind, "risk", viol.RiskLevel.String(), "message", viol.Message)
		}
		v.observe("logged", start)
	}
	return result, nil
}

func (v *Validator) observe(outcome string, start time.Time) {
	if v.metrics != nil {
		v.metrics.ObserveValidation(outcome, time.Since(start))
	}
}

// Rewrite runs the rewriter pipeline over sc's already-parsed statement
// (populated by a prior Validate call in the same call cycle, §4.7
// cross-component invariant a), returning the final rewritten statement.
// Safe to call even when sc carries no parsed statement: it reparses
// leniently first.
func (v *Validator) Rewrite(sc *sqlcontext.SqlContext, pipeline *rewriter.Pipeline) *sqlast.Statement {
	stmt, ok := sc.ParsedStatement().(*sqlast.Statement)
	if !ok {
		cache := v.parser.NewCache()
		defer cache.Clear()
		stmt, _ = cache.Parse(sc.SQL(), sqlast.Lenient)
	}
	return pipeline.Rewrite(stmt, sc)
}
