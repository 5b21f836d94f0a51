package sqlast

import (
	"strings"

	vsqlparser "vitess.io/vitess/go/vt/sqlparser"
)

// Tables enumerates the table names referenced by the statement's FROM /
// target clause (§4.3: DeniedTable, ReadOnlyTable). Best-effort: derived
// tables and subqueries contribute their own nested Tables() only when
// walked explicitly, not flattened in here.
func (s *Statement) Tables() []string {
	var names []string
	add := func(n vsqlparser.TableName) {
		if !n.IsEmpty() {
			names = append(names, n.Name.String())
		}
	}
	switch n := s.inner.(type) {
	case *vsqlparser.Select:
		for _, te := range n.From {
			collectTableExpr(te, add)
		}
	case *vsqlparser.Update:
		for _, te := range n.TableExprs {
			collectTableExpr(te, add)
		}
	case *vsqlparser.Delete:
		for _, te := range n.TableExprs {
			collectTableExpr(te, add)
		}
		for _, tn := range n.Targets {
			add(tn)
		}
	case *vsqlparser.Insert:
		add(n.Table)
	case vsqlparser.DDLStatement:
		add(n.GetTable())
		if n.GetToTables() != nil {
			for _, tn := range n.GetToTables() {
				add(tn)
			}
		}
	}
	return names
}

func collectTableExpr(te vsqlparser.TableExpr, add func(vsqlparser.TableName)) {
	switch t := te.(type) {
	case *vsqlparser.AliasedTableExpr:
		if tn, ok := t.Expr.(vsqlparser.TableName); ok {
			add(tn)
		}
	case *vsqlparser.JoinTableExpr:
		collectTableExpr(t.LeftExpr, add)
		collectTableExpr(t.RightExpr, add)
	case *vsqlparser.ParenTableExpr:
		for _, inner := range t.Exprs {
			collectTableExpr(inner, add)
		}
	}
}

// WhereExpr returns the statement's WHERE predicate, when present.
func (s *Statement) WhereExpr() (vsqlparser.Expr, bool) {
	var where *vsqlparser.Where
	switch n := s.inner.(type) {
	case *vsqlparser.Select:
		where = n.Where
	case *vsqlparser.Update:
		where = n.Where
	case *vsqlparser.Delete:
		where = n.Where
	}
	if where == nil || where.Expr == nil {
		return nil, false
	}
	return where.Expr, true
}

// HasWhereClause reports whether the statement carries any WHERE
// predicate at all, ignoring its content (§4.3.A: NoWhereClause).
func (s *Statement) HasWhereClause() bool {
	_, ok := s.WhereExpr()
	return ok
}

// WhereText renders the WHERE predicate back to SQL text, for
// DummyCondition's normalized-pattern matching (§4.3.A).
func (s *Statement) WhereText() (string, bool) {
	expr, ok := s.WhereExpr()
	if !ok {
		return "", false
	}
	return vsqlparser.String(expr), true
}

// IsTautologicalWhere reports whether the WHERE predicate is a single
// constant-vs-constant comparison (e.g. `1 = 1`, `'a' = 'a'`), the AST
// half of DummyCondition's detection (§4.3.A: "or AST inspection reveals
// a tautological constant-vs-constant equality").
func (s *Statement) IsTautologicalWhere() bool {
	expr, ok := s.WhereExpr()
	if !ok {
		return false
	}
	cmp, ok := expr.(*vsqlparser.ComparisonExpr)
	if !ok || cmp.Operator != vsqlparser.EqualOp {
		return false
	}
	_, leftLit := cmp.Left.(*vsqlparser.Literal)
	_, rightLit := cmp.Right.(*vsqlparser.Literal)
	if leftLit && rightLit {
		return true
	}
	leftBool := isBoolLiteral(cmp.Left)
	rightBool := isBoolLiteral(cmp.Right)
	return (leftLit || leftBool) && (rightLit || rightBool)
}

func isBoolLiteral(e vsqlparser.Expr) bool {
	switch v := e.(type) {
	case vsqlparser.BoolVal:
		return bool(v)
	case *vsqlparser.Literal:
		return strings.EqualFold(v.Val, "true")
	}
	return false
}

// HasOrderBy reports a non-empty ORDER BY (§4.3.B: MissingOrderBy).
func (s *Statement) HasOrderBy() bool {
	switch n := s.inner.(type) {
	case *vsqlparser.Select:
		return len(n.OrderBy) > 0
	case *vsqlparser.Union:
		return len(n.OrderBy) > 0
	}
	return false
}

// LimitClause describes a SQL-level LIMIT/OFFSET clause, distinguishing
// literal constants from bound parameters (§4.3.B "Non-literal offsets
// (parameters) are skipped" for DeepPagination).
type LimitClause struct {
	HasLimit         bool
	RowcountLiteral  *int
	RowcountIsParam  bool
	OffsetLiteral    *int
	OffsetIsParam    bool
}

// Limit extracts the SQL-level LIMIT/OFFSET clause, when present.
func (s *Statement) Limit() LimitClause {
	var limit *vsqlparser.Limit
	switch n := s.inner.(type) {
	case *vsqlparser.Select:
		limit = n.Limit
	case *vsqlparser.Union:
		limit = n.Limit
	}
	if limit == nil {
		return LimitClause{}
	}
	lc := LimitClause{HasLimit: true}
	if limit.Rowcount != nil {
		if lit, ok := limit.Rowcount.(*vsqlparser.Literal); ok {
			lc.RowcountLiteral = parseIntLiteral(lit)
		} else {
			lc.RowcountIsParam = true
		}
	}
	if limit.Offset != nil {
		if lit, ok := limit.Offset.(*vsqlparser.Literal); ok {
			lc.OffsetLiteral = parseIntLiteral(lit)
		} else {
			lc.OffsetIsParam = true
		}
	}
	return lc
}

func parseIntLiteral(lit *vsqlparser.Literal) *int {
	if lit == nil || lit.Type != vsqlparser.IntVal {
		return nil
	}
	n := 0
	for _, c := range lit.Val {
		if c < '0' || c > '9' {
			return nil
		}
		n = n*10 + int(c-'0')
	}
	return &n
}

// SetOperation describes a UNION/INTERSECT/EXCEPT combination, when the
// statement is one (§4.3.A: SetOperation).
type SetOperation struct {
	Op string
}

func (s *Statement) SetOperation() (SetOperation, bool) {
	u, ok := s.inner.(*vsqlparser.Union)
	if !ok {
		return SetOperation{}, false
	}
	return SetOperation{Op: u.Type}, true
}

// Comments returns the leading and trailing comment text attached to the
// statement. SqlComment does not use it; that checker scans the raw text.
func (s *Statement) Comments() []string {
	commented, ok := s.inner.(vsqlparser.Commented)
	if !ok {
		return nil
	}
	parsed := commented.GetParsedComments()
	if parsed == nil {
		return nil
	}
	var out []string
	for _, c := range parsed.GetComments() {
		out = append(out, string(c))
	}
	return out
}

// FunctionCalls walks the statement's expression trees, returning the
// lowercased names of every function invocation found (§4.3.C:
// DangerousFunction).
func (s *Statement) FunctionCalls() []string {
	var names []string
	_ = vsqlparser.Walk(func(node vsqlparser.SQLNode) (bool, error) {
		switch f := node.(type) {
		case *vsqlparser.FuncExpr:
			names = append(names, f.Name.Lowered())
		case *vsqlparser.LockingFunc:
			names = append(names, "get_lock")
		}
		return true, nil
	}, s.inner)
	return names
}

// ContainsSubquery reports whether any subquery appears anywhere in the
// statement's expression trees.
func (s *Statement) ContainsSubquery() bool {
	found := false
	_ = vsqlparser.Walk(func(node vsqlparser.SQLNode) (bool, error) {
		if _, ok := node.(*vsqlparser.Subquery); ok {
			found = true
			return false, nil
		}
		return true, nil
	}, s.inner)
	return found
}

// IntoOutfile reports whether the statement is a SELECT ... INTO OUTFILE
// / DUMPFILE form (§4.3.C: IntoOutfile).
func (s *Statement) IntoOutfile() (string, bool) {
	sel, ok := s.inner.(*vsqlparser.Select)
	if !ok || sel.Into == nil {
		return "", false
	}
	return vsqlparser.String(sel.Into), true
}
