package checkers

import (
	"regexp"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

var intoOutfilePattern = regexp.MustCompile(`(?i)\bINTO\s+(OUTFILE|DUMPFILE)\b`)

// IntoOutfileConfig is the typed config for IntoOutfile (§4.3.A).
type IntoOutfileConfig struct {
	sqlcontext.CheckerConfig
}

// IntoOutfileChecker flags `SELECT ... INTO OUTFILE`/`DUMPFILE`, a
// classic file-write exfiltration primitive (§4.3.A). Falls back to a
// regex scan of the raw text for lenient-mode Unparsed statements
// (§4.3.C).
type IntoOutfileChecker struct {
	cfg IntoOutfileConfig
}

func NewIntoOutfileChecker(cfg IntoOutfileConfig) *IntoOutfileChecker {
	return &IntoOutfileChecker{cfg: cfg}
}

func (c *IntoOutfileChecker) Name() string                  { return "IntoOutfile" }
func (c *IntoOutfileChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *IntoOutfileChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *IntoOutfileChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	stmt, ok := Statement(ctx)
	if !ok {
		return
	}

	if stmt.Variant() == sqlast.VariantUnparsed {
		if intoOutfilePattern.MatchString(stmt.Raw()) {
			c.emit(result)
		}
		return
	}

	if _, ok := stmt.IntoOutfile(); ok {
		c.emit(result)
	}
}

func (c *IntoOutfileChecker) emit(result *sqlcontext.ValidationResult) {
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"SELECT writes its result set to a file on the database host",
		"remove INTO OUTFILE/DUMPFILE; export data through the application layer",
		nil)
}
