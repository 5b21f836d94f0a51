package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

var defaultDeniedFunctions = []string{"load_file", "sleep", "benchmark", "sys_exec", "sys_eval", "xp_cmdshell"}

// DangerousFunctionConfig is the typed config for DangerousFunction
// (§4.3.A, §6 "dangerousFunction: deniedFunctions").
type DangerousFunctionConfig struct {
	sqlcontext.CheckerConfig
	DeniedFunctions []string
}

func (c DangerousFunctionConfig) deniedFunctions() []string {
	if len(c.DeniedFunctions) == 0 {
		return defaultDeniedFunctions
	}
	return c.DeniedFunctions
}

// DangerousFunctionChecker flags any function call matching a
// configured denied-function set, case-insensitive (§4.3.A).
type DangerousFunctionChecker struct {
	cfg DangerousFunctionConfig
}

func NewDangerousFunctionChecker(cfg DangerousFunctionConfig) *DangerousFunctionChecker {
	return &DangerousFunctionChecker{cfg: cfg}
}

func (c *DangerousFunctionChecker) Name() string                  { return "DangerousFunction" }
func (c *DangerousFunctionChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *DangerousFunctionChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *DangerousFunctionChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	denied := c.cfg.deniedFunctions()
	var matched []string
	for _, fn := range stmt.FunctionCalls() {
		for _, d := range denied {
			if strings.EqualFold(fn, d) {
				matched = append(matched, fn)
				break
			}
		}
	}
	if len(matched) == 0 {
		return
	}

	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"statement calls a denied function: "+strings.Join(matched, ", "),
		"remove the call or add it to an explicit exception list",
		map[string]any{"functions": matched})
}
