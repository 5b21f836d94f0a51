package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// defaultDummyPatterns is the default tautology pattern set (§4.3.A).
var defaultDummyPatterns = []string{"1=1", "1 = 1", "'1'='1'", "true", "'a'='a'"}

// DummyConditionConfig is the typed config for DummyCondition (§4.3.A,
// §6 "dummyCondition: patterns, customPatterns").
type DummyConditionConfig struct {
	sqlcontext.CheckerConfig
	Patterns       []string
	CustomPatterns []string
}

func (c DummyConditionConfig) patterns() []string {
	if len(c.Patterns) == 0 {
		return append(append([]string{}, defaultDummyPatterns...), c.CustomPatterns...)
	}
	return append(append([]string{}, c.Patterns...), c.CustomPatterns...)
}

// DummyCondition flags a WHERE clause that is textually or structurally
// a tautology. Detected on SELECT/UPDATE/DELETE (§4.3.A). Operates in
// both AST mode (IsTautologicalWhere) and text-pattern mode so it still
// fires against lenient-mode Unparsed statements (§4.3.C, §8 invariant 9).
type DummyConditionChecker struct {
	cfg DummyConditionConfig
}

func NewDummyConditionChecker(cfg DummyConditionConfig) *DummyConditionChecker {
	return &DummyConditionChecker{cfg: cfg}
}

func (c *DummyConditionChecker) Name() string                  { return "DummyCondition" }
func (c *DummyConditionChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *DummyConditionChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *DummyConditionChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	switch ctx.SqlType() {
	case sqlcontext.SqlSelect, sqlcontext.SqlUpdate, sqlcontext.SqlDelete:
	default:
		return
	}

	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	if stmt.Variant() != sqlast.VariantUnparsed {
		if !stmt.HasWhereClause() {
			return
		}
		if stmt.IsTautologicalWhere() || c.matchesPattern(stmt) {
			c.emit(result)
		}
		return
	}

	if c.matchesRawPattern(stmt.Raw()) {
		c.emit(result)
	}
}

func (c *DummyConditionChecker) matchesPattern(stmt *sqlast.Statement) bool {
	where, ok := stmt.WhereText()
	if !ok {
		return false
	}
	return matchesNormalized(where, c.cfg.patterns())
}

func (c *DummyConditionChecker) matchesRawPattern(raw string) bool {
	return matchesNormalized(raw, c.cfg.patterns())
}

func matchesNormalized(text string, patterns []string) bool {
	normalized := sqlast.NormalizedRaw(text)
	for _, p := range patterns {
		needle := sqlast.NormalizedRaw(p)
		if needle == "" {
			continue
		}
		if strings.Contains(normalized, needle) {
			return true
		}
	}
	return false
}

func (c *DummyConditionChecker) emit(result *sqlcontext.ValidationResult) {
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"WHERE clause is a tautology and does not filter any rows",
		"replace the dummy condition with a real filter",
		nil)
}
