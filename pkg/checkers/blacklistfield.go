package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

var defaultBlacklistFields = []string{"deleted", "del_flag", "status", "is_deleted", "enabled", "type"}

// BlacklistFieldConfig is the typed config for BlacklistField (§4.3.A,
// §6 "blacklistFields: fields").
type BlacklistFieldConfig struct {
	sqlcontext.CheckerConfig
	Fields []string
}

func (c BlacklistFieldConfig) fields() []string {
	if len(c.Fields) == 0 {
		return defaultBlacklistFields
	}
	return c.Fields
}

// BlacklistField flags a WHERE clause whose referenced columns are
// drawn entirely from a configured blacklist (e.g. soft-delete/status
// flags): a mixed WHERE referencing at least one non-blacklisted column
// passes (§4.3.A).
type BlacklistFieldChecker struct {
	cfg BlacklistFieldConfig
}

func NewBlacklistFieldChecker(cfg BlacklistFieldConfig) *BlacklistFieldChecker {
	return &BlacklistFieldChecker{cfg: cfg}
}

func (c *BlacklistFieldChecker) Name() string                  { return "BlacklistField" }
func (c *BlacklistFieldChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *BlacklistFieldChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *BlacklistFieldChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	cols := stmt.WhereColumnRefs()
	if len(cols) == 0 {
		return
	}

	var matched []string
	for _, col := range cols {
		if matchAnyWildcard(c.cfg.fields(), col) {
			matched = append(matched, col)
		} else {
			return // a non-blacklisted column is present: mixed WHERE passes
		}
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"WHERE clause filters only on blacklisted flag columns: "+strings.Join(matched, ", "),
		"add a condition on a real identifying column in addition to the flag columns",
		map[string]any{"fields": matched})
}
