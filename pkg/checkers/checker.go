// Package checkers implements C3, the twenty-one rule checkers of §4.3,
// each owning a typed config that extends sqlcontext.CheckerConfig
// (§4.3 "Checker configuration policy"). Checkers are pure with respect
// to SqlContext and the parsed AST: no mutation, safe for concurrent use
// against different contexts (§5 "shared state").
package checkers

import (
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// Checker is the C3 plugin contract (§6 "Checker plugin contract").
// Implementations must never panic for normal control flow; a panic is
// treated by the orchestrator (C4) as "skip this checker" (§4.4
// invariant b, §7 CheckerFailure).
type Checker interface {
	// Name identifies the checker; it is also the ViolationInfo.Kind
	// emitted on a violation and the tie-break key for orchestrator
	// registration order (§4.4 rule 3).
	Name() string
	Enabled() bool
	RiskLevel() sqlcontext.RiskLevel
	Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult)
}

// Statement recovers the parsed AST handle from a SqlContext, returning
// (nil, false) when validate() ran in lenient mode and parsing failed,
// or when no parse has happened yet. sqlcontext.SqlContext stores the
// AST as `any` specifically so pkg/sqlcontext has no dependency on
// pkg/sqlast (§9 "Ownership").
func Statement(ctx *sqlcontext.SqlContext) (*sqlast.Statement, bool) {
	stmt, ok := ctx.ParsedStatement().(*sqlast.Statement)
	if !ok || stmt == nil {
		return nil, false
	}
	return stmt, true
}

// matchWildcard reports whether name matches pattern, where pattern may
// carry a single trailing `*` meaning "starts with" (§4.3.A BlacklistField
// "supports `*` suffix wildcards", §6 DeniedTable/ReadOnlyTable "wildcard
// `*` supported"). Matching is case-insensitive throughout checkers.
func matchWildcard(pattern, name string) bool {
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == name
}

func matchAnyWildcard(patterns []string, name string) bool {
	for _, p := range patterns {
		if matchWildcard(p, name) {
			return true
		}
	}
	return false
}

func addViolation(result *sqlcontext.ValidationResult, risk sqlcontext.RiskLevel, kind, message, suggestion string, diagnostics map[string]any) {
	result.AddViolation(sqlcontext.ViolationInfo{
		RiskLevel:   risk,
		Kind:        kind,
		Message:     message,
		Suggestion:  suggestion,
		Diagnostics: diagnostics,
	})
}
