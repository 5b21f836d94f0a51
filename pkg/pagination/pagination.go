// Package pagination implements C5, the pure classifier that labels a
// statement's pagination shape as NONE, PHYSICAL, or LOGICAL so the
// pagination-family checkers (§4.3.B) can reason about it without each
// re-deriving the same three structural facts.
package pagination

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// Classification is the output of Classify (§4.5).
type Classification int

const (
	None Classification = iota
	Physical
	Logical
)

func (c Classification) String() string {
	switch c {
	case Physical:
		return "PHYSICAL"
	case Logical:
		return "LOGICAL"
	default:
		return "NONE"
	}
}

// Inputs is the structural evidence Classify reasons over. hasLimit
// comes from the AST (or the dialect-equivalent TOP/ROWNUM, supplied by
// the caller); hasPageParam and hasPlugin come from the host's execution
// hints on SqlContext (§4.5: "the detector MUST NOT bind to any specific
// runtime class; it operates on structural descriptors").
type Inputs struct {
	HasLimit     bool
	HasPageParam bool
	HasPlugin    bool
}

// InputsFromHints derives HasPageParam/HasPlugin from the host-supplied
// execution hints, leaving HasLimit for the caller to set from the AST.
func InputsFromHints(hints sqlcontext.ExecutionHints) Inputs {
	hasPageParam := hints.PageParam != nil
	if rb := hints.RowBounds; rb != nil && !rb.IsInfinite {
		hasPageParam = true
	}
	return Inputs{HasPageParam: hasPageParam, HasPlugin: hints.PaginationPluginActive}
}

// Classify implements the §4.5 decision procedure exactly:
//
//	LOGICAL  ⇔ hasPageParam ∧ ¬hasLimit ∧ ¬hasPlugin
//	PHYSICAL ⇔ hasLimit ∨ (hasPageParam ∧ hasPlugin)
//	NONE     otherwise
func Classify(in Inputs) Classification {
	switch {
	case in.HasPageParam && !in.HasLimit && !in.HasPlugin:
		return Logical
	case in.HasLimit || (in.HasPageParam && in.HasPlugin):
		return Physical
	default:
		return None
	}
}
