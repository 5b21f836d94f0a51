package sqlast

import (
	"fmt"
	"strings"

	vsqlparser "vitess.io/vitess/go/vt/sqlparser"
)

// ParseMode mirrors sqlcontext.ParseMode without importing it, keeping
// sqlast free of a dependency on the context package (§9: "the parser
// facade is the lowest layer, it depends on nothing above it").
type ParseMode int

const (
	Strict ParseMode = iota
	Lenient
)

// ParseError wraps the underlying vitess parse error so callers can
// unwrap to it without importing vitess.io/vitess themselves.
type ParseError struct {
	SQL   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sqlast: failed to parse statement: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Facade is the C1 parser entry point (§4.1). It is safe to share across
// goroutines: it holds no mutable state beyond the immutable vitess
// parser it wraps. Per-call statement caching is handled separately by
// Cache, which is not goroutine-safe and is meant to live for exactly
// one validate() call.
type Facade struct {
	parser *vsqlparser.Parser
}

// Options configures the underlying vitess parser. MySQLServerVersion
// controls version-gated grammar (e.g. window functions, CTEs);
// truncation lengths bound how much SQL text appears in parser error
// messages and the UI-facing error surface.
type Options struct {
	MySQLServerVersion string
	TruncateUILen      int
	TruncateErrLen     int
}

// NewFacade builds a parser facade from Options, falling back to the
// vitess defaults for any zero-valued field.
func NewFacade(opts Options) (*Facade, error) {
	p, err := vsqlparser.New(vsqlparser.Options{
		MySQLServerVersion: opts.MySQLServerVersion,
		TruncateUILen:      opts.TruncateUILen,
		TruncateErrLen:     opts.TruncateErrLen,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlast: building parser: %w", err)
	}
	return &Facade{parser: p}, nil
}

// NewTestFacade wraps vitess's NewTestParser, used by checker and
// orchestrator tests that don't care about server-version gating.
func NewTestFacade() *Facade {
	return &Facade{parser: vsqlparser.NewTestParser()}
}

// NewCache returns a fresh per-call statement cache bound to this
// facade's parser (§4.1 "statement caching … scoped per call/thread").
func (f *Facade) NewCache() *Cache {
	return &Cache{parser: f.parser, entries: map[string]*Statement{}}
}

// Cache memoizes Parse results by raw SQL text for the lifetime of a
// single validate() call. It is intentionally a bare map: call scope is
// single-goroutine in every call site in this module (§4.1, §9
// "Concurrency").
type Cache struct {
	parser  *vsqlparser.Parser
	entries map[string]*Statement
}

// Parse parses sql, caching by exact text (a cached Unparsed sentinel is
// not reused for a Strict parse, which re-parses). In Lenient mode, a parse
// failure degrades to an Unparsed sentinel carrying the raw text rather
// than propagating an error, so callers can still run text-pattern
// checkers against statements the structural checkers can't see into
// (§4.1 "lenient mode").
func (c *Cache) Parse(sql string, mode ParseMode) (*Statement, error) {
	if cached, ok := c.entries[sql]; ok && !(mode == Strict && cached.variant == VariantUnparsed) {
		return cached, nil
	}
	stmt, err := c.parser.Parse(sql)
	if err != nil {
		if mode == Lenient {
			s := newUnparsed(sql)
			c.entries[sql] = s
			return s, nil
		}
		return nil, &ParseError{SQL: sql, Cause: err}
	}
	wrapped := wrap(stmt, sql)
	c.entries[sql] = wrapped
	return wrapped, nil
}

// ParseMulti splits a semicolon-delimited blob into individual
// statements and parses each leniently, skipping blank fragments. Used
// for the MultiStatement variant (§3, §4.3.A: MultiStatement checker).
func (c *Cache) ParseMulti(sql string) (*Statement, error) {
	pieces, err := c.parser.SplitStatementToPieces(sql)
	if err != nil {
		return nil, fmt.Errorf("sqlast: splitting multi-statement blob: %w", err)
	}
	var parts []*Statement
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		st, err := c.Parse(piece, Lenient)
		if err != nil {
			continue
		}
		parts = append(parts, st)
	}
	if len(parts) <= 1 {
		if len(parts) == 1 {
			return parts[0], nil
		}
		return newUnparsed(sql), nil
	}
	return newMultiStatement(sql, parts), nil
}

// Serialize renders a statement back to SQL text, used by the rewriter
// pipeline to re-stringify a mutated AST before re-caching (§4.6).
func Serialize(stmt *Statement) string {
	if stmt.inner == nil {
		return stmt.raw
	}
	return vsqlparser.String(stmt.inner)
}

// Clear releases the cache's entries at call-boundary teardown.
func (c *Cache) Clear() {
	c.entries = map[string]*Statement{}
}
