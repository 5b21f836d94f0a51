package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/checkers"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

func enabled(risk sqlcontext.RiskLevel) sqlcontext.CheckerConfig {
	return sqlcontext.CheckerConfig{Enabled: true, RiskLevel: risk}
}

func newTestValidator(t *testing.T, strategy sqlcontext.ViolationStrategy) *validator.Validator {
	t.Helper()
	cfg := validator.Config{
		Enabled:  true,
		Strategy: strategy,
		Checkers: checkers.Config{
			NoWhereClause: checkers.NoWhereClauseConfig{CheckerConfig: enabled(sqlcontext.RiskCritical)},
		},
	}
	return validator.New(cfg, sqlast.NewTestFacade(), nil, nil)
}

func TestValidateAllNeverStopsAtFirstBlock(t *testing.T) {
	v := newTestValidator(t, sqlcontext.StrategyBlock)
	statements := []Statement{
		{MapperID: "m.unsafeDelete", SQL: "DELETE FROM users", SqlType: "DELETE"},
		{MapperID: "m.safeSelect", SQL: "SELECT * FROM users WHERE id = 1", SqlType: "SELECT"},
	}

	findings := ValidateAll(context.Background(), v, statements)
	require.Len(t, findings, 2)

	assert.Error(t, findings[0].Err)
	assert.NotNil(t, findings[0].Result)
	assert.False(t, findings[0].Result.Passed())

	assert.NoError(t, findings[1].Err)
	assert.True(t, findings[1].Result.Passed())
}

func TestValidateAllWarnStrategyCollectsAllFindings(t *testing.T) {
	v := newTestValidator(t, sqlcontext.StrategyWarn)
	statements := []Statement{
		{MapperID: "m.a", SQL: "DELETE FROM users", SqlType: "DELETE"},
		{MapperID: "m.b", SQL: "UPDATE users SET x = 1", SqlType: "UPDATE"},
	}

	findings := ValidateAll(context.Background(), v, statements)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.NoError(t, f.Err)
		assert.False(t, f.Result.Passed())
	}
}
