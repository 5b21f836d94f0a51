package sqlcontext

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidate = validator.New()

// RowBounds mirrors the shape of a physical-pagination descriptor (e.g. a
// MyBatis RowBounds) without binding to any host runtime type: only the
// structural fields the pagination detector (§4.5) needs.
type RowBounds struct {
	Offset     int
	Limit      int
	IsInfinite bool
}

// PageParam is a structural page-descriptor: any host value whose shape
// "names it a page descriptor" (§4.5.2) can be adapted into this without
// the detector binding to a concrete runtime class.
type PageParam struct {
	Page     int
	PageSize int
}

// ExecutionHints carries host-supplied pagination context that cannot be
// recovered from the SQL text alone.
type ExecutionHints struct {
	RowBounds            *RowBounds
	PageParam            *PageParam
	PaginationPluginActive bool
}

// SqlContext is the immutable, call-scoped value threaded through every
// checker, the orchestrator, and the rewriter pipeline. Construct it with
// NewBuilder; once Build succeeds the value is never mutated (§3).
type SqlContext struct {
	sql             string
	params          map[string]any
	mapperID        string
	sqlType         SqlType
	datasource      string
	hasDatasource   bool
	parsedStatement any
	hints           ExecutionHints
	parseMode       ParseMode
}

// ParseMode selects strict (parse errors propagate) or lenient (parse
// errors degrade to an Unparsed sentinel) parsing for this call (§4.1):
// a per-call option, not a process-global.
type ParseMode int

const (
	ParseStrict ParseMode = iota
	ParseLenient
)

func (c *SqlContext) SQL() string               { return c.sql }
func (c *SqlContext) Params() map[string]any     { return c.params }
func (c *SqlContext) MapperID() string           { return c.mapperID }
func (c *SqlContext) SqlType() SqlType           { return c.sqlType }
func (c *SqlContext) ParseMode() ParseMode        { return c.parseMode }
func (c *SqlContext) ExecutionHints() ExecutionHints { return c.hints }

func (c *SqlContext) Datasource() (string, bool) { return c.datasource, c.hasDatasource }

// ParsedStatement returns the AST handle populated by the parser facade
// (pkg/sqlast) during validate() step 3. Opaque here to keep sqlcontext
// free of a dependency on the AST package; checkers type-assert it to
// *sqlast.Statement.
func (c *SqlContext) ParsedStatement() any { return c.parsedStatement }

// WithParsedStatement returns a shallow copy of c with the parsed AST
// attached. Used internally by pkg/validator after a successful parse;
// SqlContext itself stays otherwise immutable once built.
func (c *SqlContext) WithParsedStatement(stmt any) *SqlContext {
	cp := *c
	cp.parsedStatement = stmt
	return &cp
}

// WithSqlType returns a shallow copy of c with sqlType overridden. Used
// by the orchestrator to derive a per-sub-statement context when
// replaying checkers over a MultiStatement's pieces (§4.3.A, §8 scenario
// S5): each sub-statement gets its own correctly-inferred type instead
// of inheriting the call-level type inferred from the whole blob.
func (c *SqlContext) WithSqlType(t SqlType) *SqlContext {
	cp := *c
	cp.sqlType = t
	return &cp
}

// Builder constructs a SqlContext, enforcing the contract of §6: sql
// non-empty, mapperId non-empty and dotted, sqlType set or inferable.
type Builder struct {
	ctx SqlContext
	err error
}

func NewBuilder() *Builder {
	return &Builder{ctx: SqlContext{params: map[string]any{}, parseMode: ParseStrict}}
}

func (b *Builder) SQL(sql string) *Builder {
	b.ctx.sql = sql
	return b
}

func (b *Builder) Params(params map[string]any) *Builder {
	if params != nil {
		b.ctx.params = params
	}
	return b
}

func (b *Builder) MapperID(id string) *Builder {
	b.ctx.mapperID = id
	return b
}

func (b *Builder) SqlType(t SqlType) *Builder {
	b.ctx.sqlType = t
	return b
}

func (b *Builder) Datasource(name string) *Builder {
	b.ctx.datasource = name
	b.ctx.hasDatasource = true
	return b
}

func (b *Builder) ExecutionHints(h ExecutionHints) *Builder {
	b.ctx.hints = h
	return b
}

func (b *Builder) ParseMode(m ParseMode) *Builder {
	b.ctx.parseMode = m
	return b
}

// buildContract is the struct go-playground/validator enforces for the
// builder contract; it mirrors SqlContext's exported shape rather than
// validating the unexported struct directly.
type buildContract struct {
	SQL      string `validate:"required"`
	MapperID string `validate:"required"`
}

// Build finalizes the SqlContext, inferring sqlType from the SQL prefix
// when the caller did not set one, and enforcing the non-empty/dotted
// mapperId contract of §6.
func (b *Builder) Build() (*SqlContext, error) {
	inferred := false
	if b.ctx.sqlType == "" {
		b.ctx.sqlType = InferSqlType(b.ctx.sql)
		inferred = true
	}

	if err := structValidate.Struct(buildContract{SQL: b.ctx.sql, MapperID: b.ctx.mapperID}); err != nil {
		return nil, fmt.Errorf("sqlcontext: %w", err)
	}
	if err := validateMapperID(b.ctx.mapperID); err != nil {
		return nil, err
	}
	if inferred && b.ctx.sqlType == SqlUnknown {
		return nil, fmt.Errorf("sqlcontext: sqlType not set and not inferable from the sql prefix")
	}

	ctx := b.ctx
	return &ctx, nil
}

func validateMapperID(id string) error {
	dot := strings.IndexByte(id, '.')
	if dot <= 0 || dot == len(id)-1 {
		return fmt.Errorf("sqlcontext: mapperId %q must contain a dot separating a non-empty namespace from a method", id)
	}
	return nil
}
