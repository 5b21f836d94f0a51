package sqlast

import (
	vsqlparser "vitess.io/vitess/go/vt/sqlparser"
)

// ColumnRefs walks the statement's expression trees and returns every
// column name referenced, unqualified and lowercased (§4.3.A:
// BlacklistField / WhitelistField).
func (s *Statement) ColumnRefs() []string {
	var cols []string
	_ = vsqlparser.Walk(func(node vsqlparser.SQLNode) (bool, error) {
		if col, ok := node.(*vsqlparser.ColName); ok {
			cols = append(cols, col.Name.Lowered())
		}
		return true, nil
	}, s.inner)
	return cols
}

// WhereColumnRefs returns the lowercased, unqualified column names
// referenced within the WHERE predicate only, used by BlacklistField and
// NoPagination's unique-key exemption (§4.3.A, §4.3.B).
func (s *Statement) WhereColumnRefs() []string {
	expr, ok := s.WhereExpr()
	if !ok {
		return nil
	}
	var cols []string
	_ = vsqlparser.Walk(func(node vsqlparser.SQLNode) (bool, error) {
		if col, ok := node.(*vsqlparser.ColName); ok {
			cols = append(cols, col.Name.Lowered())
		}
		return true, nil
	}, expr)
	return cols
}

// SelectedColumns returns the projection's column names for a Select
// statement; "*" for a star projection, the expression's rendered text
// for anything else (derived columns, aggregates).
func (s *Statement) SelectedColumns() []string {
	sel, ok := s.inner.(*vsqlparser.Select)
	if !ok {
		return nil
	}
	var names []string
	for _, expr := range sel.SelectExprs.Exprs {
		switch e := expr.(type) {
		case *vsqlparser.StarExpr:
			names = append(names, "*")
		case *vsqlparser.AliasedExpr:
			if col, ok := e.Expr.(*vsqlparser.ColName); ok {
				names = append(names, col.Name.Lowered())
			} else {
				names = append(names, vsqlparser.String(e.Expr))
			}
		}
	}
	return names
}

// WalkExprs invokes visit for every expression node anywhere in the
// statement (select list, WHERE, ON, HAVING and so on), stopping early if
// visit returns false. No checker in this module calls it.
func (s *Statement) WalkExprs(visit func(vsqlparser.Expr) bool) {
	_ = vsqlparser.Walk(func(node vsqlparser.SQLNode) (bool, error) {
		if expr, ok := node.(vsqlparser.Expr); ok {
			if !visit(expr) {
				return false, nil
			}
		}
		return true, nil
	}, s.inner)
}
