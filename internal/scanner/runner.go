package scanner

import (
	"context"
	"fmt"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

// Finding pairs one extracted statement with the validation outcome the
// host's validator.Validator entry point produced for it, the same
// facade the runtime interceptor calls (§4.7's validate(context)).
type Finding struct {
	Statement Statement
	Result    *sqlcontext.ValidationResult
	Err       error
}

// ValidateAll builds a SqlContext for every scanned statement and runs it
// through v, one at a time, never stopping early: a BLOCK-strategy error
// from one mapper statement must not prevent the rest of the tree from
// being scanned, since a scan's job is to surface every violation in one
// pass, unlike the runtime interceptor which fails a single call.
func ValidateAll(ctx context.Context, v *validator.Validator, statements []Statement) []Finding {
	findings := make([]Finding, 0, len(statements))
	for _, stmt := range statements {
		findings = append(findings, validateOne(ctx, v, stmt))
	}
	return findings
}

func validateOne(ctx context.Context, v *validator.Validator, stmt Statement) Finding {
	sc, err := sqlcontext.NewBuilder().
		SQL(stmt.SQL).
		MapperID(stmt.MapperID).
		SqlType(sqlcontext.SqlType(stmt.SqlType)).
		ParseMode(sqlcontext.ParseLenient).
		Build()
	if err != nil {
		return Finding{Statement: stmt, Err: fmt.Errorf("sqlguard: building context for %s: %w", stmt.MapperID, err)}
	}

	result, err := v.Validate(ctx, sc)
	return Finding{Statement: stmt, Result: result, Err: err}
}
