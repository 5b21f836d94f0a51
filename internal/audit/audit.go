// Package audit persists SqlGuard's violation history: every blocked,
// warned, or logged SqlSafetyViolation a host chooses to record, so an
// operator can later answer "what has this mapper id been rejected for"
// without grepping application logs. Built around a driver-switch
// Database construction (postgres or sqlite), scoped down to one
// append-only violations table rather than a full CRUD schema.
package audit

import (
	"context"
	"time"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// Record is one persisted violation occurrence, one row per
// ViolationInfo raised during a single validate() call.
type Record struct {
	ID        int64
	RunID     string
	MapperID  string
	SQL       string
	SqlType   string
	Strategy  string
	Kind      string
	RiskLevel string
	Message   string
	CreatedAt time.Time
}

// FromViolation builds a Record from one call's violation, ready for
// Store.Record. runID groups every record produced by one host-assigned
// unit of work (one `sqlguard scan` invocation) and is otherwise opaque to
// this package; cmd/sqlguard's scan command mints it with google/uuid.
func FromViolation(runID, mapperID, sql, sqlType string, strategy sqlcontext.ViolationStrategy, v sqlcontext.ViolationInfo) Record {
	return Record{
		RunID:     runID,
		MapperID:  mapperID,
		SQL:       sql,
		SqlType:   sqlType,
		Strategy:  string(strategy),
		Kind:      v.Kind,
		RiskLevel: v.RiskLevel.String(),
		Message:   v.Message,
	}
}

// Filter narrows ListRecords; zero-value fields are unfiltered.
type Filter struct {
	RunID     string
	MapperID  string
	Kind      string
	RiskLevel string
	Since     time.Time
	Limit     int
}

// Store is the violation-history persistence contract, implemented by
// SQLStore against either PostgreSQL or SQLite.
type Store interface {
	Record(ctx context.Context, r Record) error
	RecordBatch(ctx context.Context, rs []Record) error
	ListRecords(ctx context.Context, f Filter) ([]Record, error)
	CountByKind(ctx context.Context, since time.Time) (map[string]int, error)
	Close() error
}
