package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// DeniedTableConfig is the typed config for DeniedTable (§4.3.A, §6
// "deniedTable: deniedTables").
type DeniedTableConfig struct {
	sqlcontext.CheckerConfig
	DeniedTables []string
}

// DeniedTableChecker flags any referenced table matching a configured
// denied pattern, wildcard supported (§4.3.A).
type DeniedTableChecker struct {
	cfg DeniedTableConfig
}

func NewDeniedTableChecker(cfg DeniedTableConfig) *DeniedTableChecker {
	return &DeniedTableChecker{cfg: cfg}
}

func (c *DeniedTableChecker) Name() string                  { return "DeniedTable" }
func (c *DeniedTableChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *DeniedTableChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *DeniedTableChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	var matched []string
	for _, table := range stmt.Tables() {
		if matchAnyWildcard(c.cfg.DeniedTables, table) {
			matched = append(matched, table)
		}
	}
	if len(matched) == 0 {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement references a denied table: "+strings.Join(matched, ", "),
		"this table may not be accessed through this query path",
		map[string]any{"tables": matched})
}
