package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// ReadOnlyTableConfig is the typed config for ReadOnlyTable (§4.3.A, §6
// "readOnlyTable: readonlyTables").
type ReadOnlyTableConfig struct {
	sqlcontext.CheckerConfig
	ReadonlyTables []string
}

// ReadOnlyTableChecker flags UPDATE/DELETE/INSERT statements whose
// target table matches a configured read-only pattern (§4.3.A).
type ReadOnlyTableChecker struct {
	cfg ReadOnlyTableConfig
}

func NewReadOnlyTableChecker(cfg ReadOnlyTableConfig) *ReadOnlyTableChecker {
	return &ReadOnlyTableChecker{cfg: cfg}
}

func (c *ReadOnlyTableChecker) Name() string                  { return "ReadOnlyTable" }
func (c *ReadOnlyTableChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *ReadOnlyTableChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *ReadOnlyTableChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	switch ctx.SqlType() {
	case sqlcontext.SqlUpdate, sqlcontext.SqlDelete, sqlcontext.SqlInsert:
	default:
		return
	}

	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	var matched []string
	for _, table := range stmt.Tables() {
		if matchAnyWildcard(c.cfg.ReadonlyTables, table) {
			matched = append(matched, table)
		}
	}
	if len(matched) == 0 {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement mutates a read-only table: "+strings.Join(matched, ", "),
		"this table may only be read through this query path",
		map[string]any{"tables": matched})
}
