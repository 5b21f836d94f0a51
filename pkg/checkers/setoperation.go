package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// SetOperationConfig is the typed config for SetOperation (§4.3.A, §6
// "setOperation: allowedOperations"). Empty AllowedOperations means all
// set operations are blocked, the default-deny posture.
type SetOperationConfig struct {
	sqlcontext.CheckerConfig
	AllowedOperations []string
}

// SetOperationChecker flags UNION / UNION ALL / INTERSECT / EXCEPT /
// MINUS combinations not present in the configured allow-set (§4.3.A).
type SetOperationChecker struct {
	cfg SetOperationConfig
}

func NewSetOperationChecker(cfg SetOperationConfig) *SetOperationChecker {
	return &SetOperationChecker{cfg: cfg}
}

func (c *SetOperationChecker) Name() string                  { return "SetOperation" }
func (c *SetOperationChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *SetOperationChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *SetOperationChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}
	op, ok := stmt.SetOperation()
	if !ok {
		return
	}

	canonical := canonicalSetOp(op.Op)
	for _, allowed := range c.cfg.AllowedOperations {
		if canonicalSetOp(allowed) == canonical {
			return
		}
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement uses the set operation "+canonical+" which is not in the allowed set",
		"split into separate queries or add "+canonical+" to allowedOperations if intentional",
		map[string]any{"operation": canonical})
}

func canonicalSetOp(op string) string {
	op = strings.ToUpper(strings.TrimSpace(op))
	op = strings.ReplaceAll(op, " ", "_")
	switch op {
	case "UNION_ALL":
		return "UNION_ALL"
	case "UNION":
		return "UNION"
	case "INTERSECT":
		return "INTERSECT"
	case "EXCEPT":
		return "EXCEPT"
	case "MINUS":
		return "MINUS"
	default:
		return op
	}
}
