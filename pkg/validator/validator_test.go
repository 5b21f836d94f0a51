package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/checkers"
	"github.com/sqlguard/sqlguard/pkg/dedup"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

func enabled(risk sqlcontext.RiskLevel) sqlcontext.CheckerConfig {
	return sqlcontext.CheckerConfig{Enabled: true, RiskLevel: risk}
}

func fullCheckerConfig() checkers.Config {
	return checkers.Config{
		NoWhereClause:         checkers.NoWhereClauseConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		DummyCondition:        checkers.DummyConditionConfig{CheckerConfig: enabled(sqlcontext.RiskHigh)},
		BlacklistField:        checkers.BlacklistFieldConfig{CheckerConfig: enabled(sqlcontext.RiskHigh)},
		WhitelistField:        checkers.WhitelistFieldConfig{CheckerConfig: enabled(sqlcontext.RiskMedium)},
		MultiStatement:        checkers.MultiStatementConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		SetOperation:          checkers.SetOperationConfig{CheckerConfig: enabled(sqlcontext.RiskHigh)},
		DdlOperation:          checkers.DdlOperationConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		CallStatement:         checkers.CallStatementConfig{CheckerConfig: enabled(sqlcontext.RiskHigh)},
		MetadataStatement:     checkers.MetadataStatementConfig{CheckerConfig: enabled(sqlcontext.RiskMedium)},
		SetStatement:          checkers.SetStatementConfig{CheckerConfig: enabled(sqlcontext.RiskHigh)},
		DeniedTable:           checkers.DeniedTableConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		ReadOnlyTable:         checkers.ReadOnlyTableConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		IntoOutfile:           checkers.IntoOutfileConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		DangerousFunction:     checkers.DangerousFunctionConfig{CheckerConfig: enabled(sqlcontext.RiskHigh)},
		SqlComment:            checkers.SqlCommentConfig{CheckerConfig: enabled(sqlcontext.RiskMedium)},
		LogicalPagination:     checkers.LogicalPaginationConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		NoConditionPagination: checkers.NoConditionPaginationConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		DeepPagination:        checkers.DeepPaginationConfig{CheckerConfig: enabled(sqlcontext.RiskMedium)},
		LargePageSize:         checkers.LargePageSizeConfig{CheckerConfig: enabled(sqlcontext.RiskMedium)},
		MissingOrderBy:        checkers.MissingOrderByConfig{CheckerConfig: enabled(sqlcontext.RiskLow)},
		NoPagination:          checkers.NoPaginationConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
	}
}

func newTestValidator(t *testing.T, strategy sqlcontext.ViolationStrategy, dedupCache dedup.Cache) *Validator {
	t.Helper()
	cfg := Config{Enabled: true, Strategy: strategy, Checkers: fullCheckerConfig()}
	return New(cfg, sqlast.NewTestFacade(), dedupCache, nil)
}

func TestValidateBlockStrategyReturnsSafetyViolation(t *testing.T) {
	v := newTestValidator(t, sqlcontext.StrategyBlock, nil)
	sc, err := sqlcontext.NewBuilder().SQL("DELETE FROM users").MapperID("test.query").Build()
	require.NoError(t, err)

	result, err := v.Validate(context.Background(), sc)
	require.Error(t, err)
	var safety *SqlSafetyViolation
	require.ErrorAs(t, err, &safety)
	assert.NotEmpty(t, safety.Violations)
	assert.False(t, result.Passed())
}

func TestValidateWarnStrategyReturnsNoError(t *testing.T) {
	v := newTestValidator(t, sqlcontext.StrategyWarn, nil)
	sc, err := sqlcontext.NewBuilder().SQL("DELETE FROM users").MapperID("test.query").Build()
	require.NoError(t, err)

	result, err := v.Validate(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Passed())
}

func TestValidatePassingSQLReturnsEmptyResult(t *testing.T) {
	v := newTestValidator(t, sqlcontext.StrategyBlock, nil)
	sc, err := sqlcontext.NewBuilder().SQL("SELECT id FROM users WHERE id = 1").MapperID("test.query").Build()
	require.NoError(t, err)

	result, err := v.Validate(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Passed())
}

func TestValidateDisabledGloballyShortCircuits(t *testing.T) {
	cfg := Config{Enabled: false, Strategy: sqlcontext.StrategyBlock, Checkers: fullCheckerConfig()}
	v := New(cfg, sqlast.NewTestFacade(), nil, nil)
	sc, err := sqlcontext.NewBuilder().SQL("DELETE FROM users").MapperID("test.query").Build()
	require.NoError(t, err)

	result, err := v.Validate(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Passed())
}

func TestValidateStrictParseFailureEmitsParseErrorViolation(t *testing.T) {
	v := newTestValidator(t, sqlcontext.StrategyBlock, nil)
	sc, err := sqlcontext.NewBuilder().SQL("SELECT FROM FROM (((").MapperID("test.query").
		ParseMode(sqlcontext.ParseStrict).Build()
	require.NoError(t, err)

	result, validateErr := v.Validate(context.Background(), sc)
	require.Error(t, validateErr)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "ParseError", result.Violations[0].Kind)
	assert.Equal(t, sqlcontext.RiskCritical, result.Violations[0].RiskLevel)
}

func TestValidateDedupSkipReturnsPassingWithoutRunningCheckers(t *testing.T) {
	cache := dedup.NewLRUCache(dedup.Config{})
	v := newTestValidator(t, sqlcontext.StrategyBlock, cache)
	sc, err := sqlcontext.NewBuilder().SQL("DELETE FROM users").MapperID("test.query").Build()
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), sc)
	require.Error(t, err, "first call must run checkers and block")

	result, err := v.Validate(context.Background(), sc)
	require.NoError(t, err, "second call within the dedup window must be skipped and pass")
	assert.True(t, result.Passed())
}
