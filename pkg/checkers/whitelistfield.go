package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// WhitelistFieldConfig is the typed config for WhitelistField (§4.3.A,
// §6 "whitelistFields: fields, byTable, enforceForUnknownTables").
type WhitelistFieldConfig struct {
	sqlcontext.CheckerConfig
	Fields                  []string
	ByTable                 map[string][]string
	EnforceForUnknownTables bool
}

// WhitelistField requires that WHERE-clause columns for each referenced
// table come from that table's declared column whitelist; a per-table
// whitelist overrides the global one. When a table has no per-table
// whitelist, EnforceForUnknownTables decides whether the global
// whitelist still applies or the table is exempt (§4.3.A).
type WhitelistFieldChecker struct {
	cfg WhitelistFieldConfig
}

func NewWhitelistFieldChecker(cfg WhitelistFieldConfig) *WhitelistFieldChecker {
	return &WhitelistFieldChecker{cfg: cfg}
}

func (c *WhitelistFieldChecker) Name() string                  { return "WhitelistField" }
func (c *WhitelistFieldChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *WhitelistFieldChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *WhitelistFieldChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	cols := stmt.WhereColumnRefs()
	if len(cols) == 0 {
		return
	}

	var applicable []string
	hasPerTable := false
	for _, table := range stmt.Tables() {
		if list, ok := c.cfg.ByTable[strings.ToLower(table)]; ok {
			hasPerTable = true
			applicable = append(applicable, list...)
		}
	}
	if !hasPerTable {
		if !c.cfg.EnforceForUnknownTables {
			return
		}
		applicable = c.cfg.Fields
	}
	if len(applicable) == 0 {
		return
	}

	var disallowed []string
	for _, col := range cols {
		if !matchAnyWildcard(applicable, col) {
			disallowed = append(disallowed, col)
		}
	}
	if len(disallowed) == 0 {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"WHERE clause references columns outside the table's whitelist: "+strings.Join(disallowed, ", "),
		"filter only on whitelisted columns for this table, or extend the whitelist",
		map[string]any{"fields": disallowed})
}
