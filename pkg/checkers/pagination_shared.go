package checkers

import (
	"github.com/sqlguard/sqlguard/pkg/pagination"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// classify runs the C5 pagination detector for ctx, deriving hasLimit
// from the statement's LIMIT clause (or the absence of a statement, for
// lenient-mode Unparsed input, which never classifies as PHYSICAL from
// the AST alone) and hasPageParam/hasPlugin from execution hints
// (§4.5).
func classify(ctx *sqlcontext.SqlContext) (pagination.Classification, sqlast.LimitClause, bool) {
	in := pagination.InputsFromHints(ctx.ExecutionHints())

	stmt, ok := Statement(ctx)
	var limit sqlast.LimitClause
	if ok {
		limit = stmt.Limit()
		in.HasLimit = limit.HasLimit
	}
	return pagination.Classify(in), limit, ok
}

// whereIsAbsentOrDummy reports whether a statement's WHERE clause is
// missing entirely or is nothing but a tautology, the trigger condition
// for NoConditionPagination (§4.3.B).
func whereIsAbsentOrDummy(stmt *sqlast.Statement) bool {
	if !stmt.HasWhereClause() {
		return true
	}
	if stmt.IsTautologicalWhere() {
		return true
	}
	where, ok := stmt.WhereText()
	return ok && matchesNormalized(where, defaultDummyPatterns)
}
