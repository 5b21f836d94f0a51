package sqlast

import (
	"fmt"
	"strconv"
	"strings"

	vsqlparser "vitess.io/vitess/go/vt/sqlparser"
)

// MutateWhereAnd combines predicate into stmt's WHERE clause via AND,
// synthesizing one if stmt carries none, by mutating the AST directly
// rather than splicing the already-serialized SQL text (§4.6 invariant
// 3). stmt itself is left untouched: the mutation runs against a private
// reparse of stmt's raw text (§9 "Ownership": rewriters clone-then-
// mutate), and the result is serialized exactly once. Used by the
// tenant-isolation and soft-delete rewriters.
func (c *Cache) MutateWhereAnd(stmt *Statement, predicate string) (*Statement, error) {
	expr, err := c.parser.ParseExpr(predicate)
	if err != nil {
		return nil, fmt.Errorf("sqlast: parsing injected predicate %q: %w", predicate, err)
	}
	clone, err := c.parser.Parse(stmt.raw)
	if err != nil {
		return nil, fmt.Errorf("sqlast: cloning statement for WHERE injection: %w", err)
	}
	switch node := clone.(type) {
	case *vsqlparser.Select:
		node.Where = addWhereAnd(node.Where, expr)
	case *vsqlparser.Update:
		node.Where = addWhereAnd(node.Where, expr)
	case *vsqlparser.Delete:
		node.Where = addWhereAnd(node.Where, expr)
	default:
		return nil, fmt.Errorf("sqlast: cannot inject WHERE into %T", clone)
	}
	return finish(clone), nil
}

func addWhereAnd(w *vsqlparser.Where, expr vsqlparser.Expr) *vsqlparser.Where {
	if w == nil {
		return &vsqlparser.Where{Type: vsqlparser.WhereClause, Expr: expr}
	}
	return &vsqlparser.Where{Type: w.Type, Expr: &vsqlparser.AndExpr{Left: w.Expr, Right: expr}}
}

// SetLimit mutates a private clone of stmt's AST to carry a `LIMIT n`
// clause, returning stmt unchanged if a limit is already present. Used
// by the MySQL-family dialect strategies (§4.8): LIMIT is a first-class
// vitess AST field, so this never touches serialized text at all.
func (c *Cache) SetLimit(stmt *Statement, n int) (*Statement, error) {
	if stmt.Limit().HasLimit {
		return stmt, nil
	}
	clone, err := c.parser.Parse(stmt.raw)
	if err != nil {
		return nil, fmt.Errorf("sqlast: cloning statement for LIMIT injection: %w", err)
	}
	limit := &vsqlparser.Limit{Rowcount: &vsqlparser.Literal{Type: vsqlparser.IntVal, Val: strconv.Itoa(n)}}
	switch node := clone.(type) {
	case *vsqlparser.Select:
		node.Limit = limit
	case *vsqlparser.Union:
		node.Limit = limit
	default:
		return nil, fmt.Errorf("sqlast: cannot inject LIMIT into %T", clone)
	}
	return finish(clone), nil
}

// WrapRownum wraps stmt as a derived table filtered by `ROWNUM <= n`,
// Oracle's row-limiting idiom (§4.8). vitess's grammar is MySQL-family
// and has no ROWNUM-aware node, so ROWNUM is represented as a plain
// column reference inside a generic comparison — the outer SELECT and
// its WHERE predicate are genuine AST nodes, not a text template; the
// inner statement's own AST is embedded unchanged as a derived table
// rather than re-parsed from its serialized text.
func (c *Cache) WrapRownum(stmt *Statement, n int) (*Statement, error) {
	if stmt.Limit().HasLimit {
		return stmt, nil
	}
	inner, ok := stmt.inner.(*vsqlparser.Select)
	if !ok {
		return nil, fmt.Errorf("sqlast: cannot wrap %T as a derived table", stmt.inner)
	}
	outer := &vsqlparser.Select{
		SelectExprs: vsqlparser.SelectExprs{Exprs: []vsqlparser.SelectExpr{&vsqlparser.StarExpr{}}},
		From: vsqlparser.TableExprs{&vsqlparser.AliasedTableExpr{
			Expr: &vsqlparser.DerivedTable{Select: inner},
		}},
		Where: &vsqlparser.Where{
			Type: vsqlparser.WhereClause,
			Expr: &vsqlparser.ComparisonExpr{
				Left:     &vsqlparser.ColName{Name: vsqlparser.NewIdentifierCI("ROWNUM")},
				Operator: vsqlparser.LessEqualOp,
				Right:    &vsqlparser.Literal{Type: vsqlparser.IntVal, Val: strconv.Itoa(n)},
			},
		},
	}
	return finish(outer), nil
}

// SelectSubject exposes the one Select this statement wraps, for the
// dialect strategies whose target syntax (SQL Server TOP, Informix
// FIRST) has no corresponding vitess AST field at all — vitess's grammar
// is MySQL-family and doesn't model these row-limit keywords.
func (s *Statement) SelectSubject() (*vsqlparser.Select, bool) {
	sel, ok := s.inner.(*vsqlparser.Select)
	return sel, ok
}

// WithPrefixModifier renders sel with modifier inserted immediately
// after the SELECT keyword (e.g. "TOP 10", "FIRST 10"). Built by
// rendering the statement once with its real projection swapped for a
// single placeholder star — whose rendered form is known exactly — and
// splicing the modifier into that known, self-produced boundary, rather
// than pattern-matching keyword positions in the arbitrary original SQL
// text (§4.6 invariant 3).
func WithPrefixModifier(sel *vsqlparser.Select, modifier string) string {
	placeholder := *sel
	placeholder.SelectExprs = vsqlparser.SelectExprs{Exprs: []vsqlparser.SelectExpr{&vsqlparser.StarExpr{}}}
	rendered := vsqlparser.String(&placeholder)
	rest := strings.TrimPrefix(rendered, "select *")
	return fmt.Sprintf("select %s %s%s", modifier, vsqlparser.String(sel.SelectExprs), rest)
}

// WithSuffixClause appends clause after sel's own rendering (e.g.
// "FETCH FIRST 10 ROWS ONLY"), a plain concatenation at a fixed position
// rather than a search over the rendered text.
func WithSuffixClause(sel *vsqlparser.Select, clause string) string {
	return vsqlparser.String(sel) + " " + clause
}

func finish(stmt vsqlparser.Statement) *Statement {
	s := wrap(stmt, "")
	s.raw = vsqlparser.String(stmt)
	return s
}
