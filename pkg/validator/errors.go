package validator

import (
	"fmt"
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// SqlSafetyViolation is the single aggregate error the core ever raises
// to the host (§6 "Error propagation to host", §7 "SafetyViolation
// (aggregate)"): one or more violations gathered under the BLOCK
// strategy. WARN and LOG never return this; they log and return a
// normal result instead.
type SqlSafetyViolation struct {
	Violations []sqlcontext.ViolationInfo
}

func (e *SqlSafetyViolation) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("sql rejected: %s: %s", e.Violations[0].Kind, e.Violations[0].Message)
	}
	kinds := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		kinds[i] = v.Kind
	}
	return fmt.Sprintf("sql rejected: %d violations (%s)", len(e.Violations), strings.Join(kinds, ", "))
}

// ConfigurationError is raised at startup by config validation, never on
// the validate() hot path (§7 "ConfigurationError").
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sqlguard: invalid configuration for %s: %s", e.Field, e.Reason)
}
