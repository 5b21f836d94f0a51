package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(context.Background(), Config{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFromViolationBuildsRecord(t *testing.T) {
	v := sqlcontext.ViolationInfo{Kind: "NoWhereClause", RiskLevel: sqlcontext.RiskCritical, Message: "missing WHERE"}
	r := FromViolation("run-1", "mapper.query", "DELETE FROM users", "DELETE", sqlcontext.StrategyBlock, v)

	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "mapper.query", r.MapperID)
	assert.Equal(t, "NoWhereClause", r.Kind)
	assert.Equal(t, "CRITICAL", r.RiskLevel)
	assert.Equal(t, "BLOCK", r.Strategy)
}

func TestRecordAndListRoundTrips(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	r := Record{MapperID: "mapper.a", SQL: "DELETE FROM users", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "missing WHERE"}
	require.NoError(t, store.Record(ctx, r))

	got, err := store.ListRecords(ctx, Filter{MapperID: "mapper.a"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NoWhereClause", got[0].Kind)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestListRecordsFiltersByKindAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordBatch(ctx, []Record{
		{MapperID: "m", SQL: "DELETE FROM a", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "x"},
		{MapperID: "m", SQL: "SELECT * FROM a", SqlType: "SELECT", Strategy: "WARN", Kind: "MissingOrderBy", RiskLevel: "LOW", Message: "y"},
		{MapperID: "m", SQL: "DELETE FROM b", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "z"},
	}))

	got, err := store.ListRecords(ctx, Filter{Kind: "NoWhereClause", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NoWhereClause", got[0].Kind)
}

func TestCountByKind(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordBatch(ctx, []Record{
		{MapperID: "m", SQL: "DELETE FROM a", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "x"},
		{MapperID: "m", SQL: "DELETE FROM b", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "y"},
	}))

	counts, err := store.CountByKind(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, counts["NoWhereClause"])
}

func TestListRecordsFiltersByRunID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordBatch(ctx, []Record{
		{RunID: "scan-1", MapperID: "m", SQL: "DELETE FROM a", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "x"},
		{RunID: "scan-2", MapperID: "m", SQL: "DELETE FROM b", SqlType: "DELETE", Strategy: "BLOCK", Kind: "NoWhereClause", RiskLevel: "CRITICAL", Message: "y"},
	}))

	got, err := store.ListRecords(ctx, Filter{RunID: "scan-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "scan-1", got[0].RunID)
}

func TestRecordBatchEmptyIsNoOp(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.RecordBatch(context.Background(), nil))
}
