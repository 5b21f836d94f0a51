// Package dialect implements C8: a pluggable strategy for injecting a
// row limit into a SELECT in the target database's own syntax, plus a
// factory that resolves a strategy from a driver/product name and
// caches the result per DataSource identity (§4.8).
package dialect

import (
	"fmt"
	"strings"

	"github.com/sqlguard/sqlguard/pkg/sqlast"
)

// Strategy is the C8 plugin contract (§6 "Dialect strategy contract").
// ApplyLimit returns the statement unchanged (same reference) if a limit
// is already present, otherwise a statement carrying the dialect's
// row-limit syntax, built by mutating the AST (not by splicing the
// already-serialized SQL text, §4.6 invariant 3) wherever vitess's
// grammar can represent the target syntax as a real node.
type Strategy interface {
	ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error)
	DatabaseType() string
}

// limitStrategy appends `LIMIT n` (MySQL, MariaDB, PostgreSQL,
// openGauss, GaussDB, Kingbase, DM, Oscar — §4.8 table row 1). LIMIT is
// a first-class vitess AST field, so this is a direct AST mutation.
type limitStrategy struct{ name string }

func (s limitStrategy) DatabaseType() string { return s.name }

func (s limitStrategy) ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error) {
	return cache.SetLimit(stmt, n)
}

// topStrategy injects `TOP n` immediately after SELECT (SQL Server). SQL
// Server's TOP has no vitess AST representation (vitess's grammar is
// MySQL-family), so the result is assembled from the statement's own
// rendered sub-fields rather than regexed out of it (see
// sqlast.WithPrefixModifier). The text is re-read leniently, so the
// result is an Unparsed statement carrying it.
type topStrategy struct{}

func (topStrategy) DatabaseType() string { return "SQL Server" }

func (topStrategy) ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error) {
	if stmt.Limit().HasLimit {
		return stmt, nil
	}
	sel, ok := stmt.SelectSubject()
	if !ok {
		return stmt, fmt.Errorf("dialect: TOP only applies to SELECT, got %s", stmt.Variant())
	}
	sql := sqlast.WithPrefixModifier(sel, fmt.Sprintf("TOP %d", n))
	return cache.Parse(sql, sqlast.Lenient)
}

// rownumStrategy wraps the statement as a derived table filtered by
// ROWNUM (Oracle), constructed as a genuine AST derived-table wrap
// (sqlast.WrapRownum) rather than a text template.
type rownumStrategy struct{}

func (rownumStrategy) DatabaseType() string { return "Oracle" }

func (rownumStrategy) ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error) {
	return cache.WrapRownum(stmt, n)
}

// fetchFirstStrategy appends `FETCH FIRST n ROWS ONLY` (DB2), another
// syntax with no vitess AST field; appended after the statement's own
// rendering rather than located by pattern match, and re-read leniently
// like topStrategy's result.
type fetchFirstStrategy struct{}

func (fetchFirstStrategy) DatabaseType() string { return "DB2" }

func (fetchFirstStrategy) ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error) {
	if stmt.Limit().HasLimit {
		return stmt, nil
	}
	sel, ok := stmt.SelectSubject()
	if !ok {
		return stmt, fmt.Errorf("dialect: FETCH FIRST only applies to SELECT, got %s", stmt.Variant())
	}
	sql := sqlast.WithSuffixClause(sel, fmt.Sprintf("FETCH FIRST %d ROWS ONLY", n))
	return cache.Parse(sql, sqlast.Lenient)
}

// firstStrategy injects `FIRST n` immediately after SELECT (Informix),
// the same prefix-modifier construction as topStrategy.
type firstStrategy struct{}

func (firstStrategy) DatabaseType() string { return "Informix" }

func (firstStrategy) ApplyLimit(stmt *sqlast.Statement, n int, cache *sqlast.Cache) (*sqlast.Statement, error) {
	if stmt.Limit().HasLimit {
		return stmt, nil
	}
	sel, ok := stmt.SelectSubject()
	if !ok {
		return stmt, fmt.Errorf("dialect: FIRST only applies to SELECT, got %s", stmt.Variant())
	}
	sql := sqlast.WithPrefixModifier(sel, fmt.Sprintf("FIRST %d", n))
	return cache.Parse(sql, sqlast.Lenient)
}

// CreateDialect instantiates a Strategy directly from a product name
// (§6 "createDialect(productName) for direct instantiation"), string-
// matching case-insensitively by substring containment; an unrecognized
// name falls back to MySQL (§4.8 factory rule).
func CreateDialect(productName string) Strategy {
	p := strings.ToLower(productName)
	switch {
	case strings.Contains(p, "sql server") || strings.Contains(p, "sqlserver") || strings.Contains(p, "mssql"):
		return topStrategy{}
	case strings.Contains(p, "oracle"):
		return rownumStrategy{}
	case strings.Contains(p, "db2"):
		return fetchFirstStrategy{}
	case strings.Contains(p, "informix"):
		return firstStrategy{}
	case strings.Contains(p, "postgres"):
		return limitStrategy{name: "PostgreSQL"}
	case strings.Contains(p, "opengauss"):
		return limitStrategy{name: "openGauss"}
	case strings.Contains(p, "gaussdb"):
		return limitStrategy{name: "GaussDB"}
	case strings.Contains(p, "kingbase"):
		return limitStrategy{name: "Kingbase"}
	case strings.Contains(p, "dm database") || p == "dm":
		return limitStrategy{name: "DM"}
	case strings.Contains(p, "oscar"):
		return limitStrategy{name: "Oscar"}
	case strings.Contains(p, "mariadb"):
		return limitStrategy{name: "MariaDB"}
	default:
		return limitStrategy{name: "MySQL"}
	}
}
