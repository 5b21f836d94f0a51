// Package sqlast wraps vitess.io/vitess/go/vt/sqlparser behind a
// Statement facade: a tagged variant over
// {Select, Update, Delete, Insert, Call, Ddl, SetVar, Show, Use,
// MultiStatement, Unparsed}, with accessors for tables, WHERE, ORDER
// BY/LIMIT/OFFSET, function calls, set operations, and subqueries.
// Checkers never import vitess.io/vitess directly — only this package's
// stable wrapper — so a future parser swap touches one package.
package sqlast

import (
	"strings"

	vsqlparser "vitess.io/vitess/go/vt/sqlparser"
)

// Variant is the tagged-union discriminant of §9 ("Polymorphism over AST
// variants"): checkers pattern-match on Variant rather than relying on
// dynamic dispatch over a class hierarchy.
type Variant int

const (
	VariantSelect Variant = iota
	VariantUpdate
	VariantDelete
	VariantInsert
	VariantCall
	VariantDDL
	VariantSetVar
	VariantShow
	VariantUse
	VariantMultiStatement
	VariantUnparsed
	VariantOther
)

func (v Variant) String() string {
	switch v {
	case VariantSelect:
		return "Select"
	case VariantUpdate:
		return "Update"
	case VariantDelete:
		return "Delete"
	case VariantInsert:
		return "Insert"
	case VariantCall:
		return "Call"
	case VariantDDL:
		return "Ddl"
	case VariantSetVar:
		return "SetVar"
	case VariantShow:
		return "Show"
	case VariantUse:
		return "Use"
	case VariantMultiStatement:
		return "MultiStatement"
	case VariantUnparsed:
		return "Unparsed"
	default:
		return "Other"
	}
}

// Statement is the read-only AST handle shared across all checkers for a
// single validation call, owned by the per-call statement cache (§3, §9
// "Ownership").
type Statement struct {
	variant Variant
	raw     string
	inner   vsqlparser.Statement
	multi   []*Statement
}

func newUnparsed(raw string) *Statement {
	return &Statement{variant: VariantUnparsed, raw: raw}
}

func newMultiStatement(raw string, parts []*Statement) *Statement {
	return &Statement{variant: VariantMultiStatement, raw: raw, multi: parts}
}

// wrap classifies a parsed vitess Statement into our Variant tagging.
func wrap(stmt vsqlparser.Statement, raw string) *Statement {
	s := &Statement{raw: raw, inner: stmt}
	switch stmt.(type) {
	case *vsqlparser.Select, *vsqlparser.Union:
		s.variant = VariantSelect
	case *vsqlparser.Update:
		s.variant = VariantUpdate
	case *vsqlparser.Delete:
		s.variant = VariantDelete
	case *vsqlparser.Insert:
		s.variant = VariantInsert
	case *vsqlparser.CallProc:
		s.variant = VariantCall
	case vsqlparser.DDLStatement:
		s.variant = VariantDDL
	case *vsqlparser.Set, *vsqlparser.SetTransaction:
		s.variant = VariantSetVar
	case *vsqlparser.Show, *vsqlparser.ExplainStmt, *vsqlparser.ExplainTab:
		s.variant = VariantShow
	case *vsqlparser.Use:
		s.variant = VariantUse
	default:
		s.variant = VariantOther
	}
	return s
}

func (s *Statement) Variant() Variant { return s.variant }
func (s *Statement) Raw() string      { return s.raw }

// IsUnparsed reports whether the statement is the lenient-mode Unparsed
// sentinel carrying only raw text.
func (s *Statement) IsUnparsed() bool { return s.variant == VariantUnparsed }

// Vitess exposes the underlying vitess AST node for callers (rewriters,
// the dialect strategy) that need full structural access beyond the
// wrapper's accessors. nil for Unparsed and MultiStatement variants.
func (s *Statement) Vitess() vsqlparser.Statement { return s.inner }

// SubStatements returns the top-level statements of a MultiStatement
// variant (§3: `MultiStatement(list)`), nil otherwise.
func (s *Statement) SubStatements() []*Statement { return s.multi }

// NormalizedRaw lowercases and collapses whitespace in the raw SQL text,
// used by DummyCondition's pattern-matching mode (§4.3.A) and by
// property tests asserting whitespace/comment-variant equivalence (§8).
func NormalizedRaw(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, " ")
}
