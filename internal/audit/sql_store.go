package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Config configures SQLStore's connection, mirroring
// internal/infrastructure.Config's {Driver, DSN} shape.
type Config struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
}

// SQLStore is the database/sql-backed Store, covering both PostgreSQL
// (via pgx's stdlib adapter) and SQLite (via the modernc driver), the
// same two backends internal/infrastructure's postgres_adapter.go and
// sqlite_adapter.go supported.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects, runs pending migrations, and returns a ready SQLStore.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlguard: opening audit store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlguard: pinging audit store: %w", err)
	}

	if err := migrate(ctx, db, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit store ready", "driver", cfg.Driver)
	return &SQLStore{db: db, driver: cfg.Driver, logger: logger}, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("sqlguard: unsupported audit store driver %q", driver)
	}
}

// placeholder renders the nth (1-based) bind parameter in the store's
// driver dialect: $1, $2, ... for postgres, ? for sqlite.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Record(ctx context.Context, r Record) error {
	return s.RecordBatch(ctx, []Record{r})
}

func (s *SQLStore) RecordBatch(ctx context.Context, rs []Record) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlguard: beginning audit transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"INSERT INTO sqlguard_violations (run_id, mapper_id, sql_text, sql_type, strategy, kind, risk_level, message) VALUES (%s, %s, %s, %s, %s, %s, %s, %s)",
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5), s.placeholder(6), s.placeholder(7), s.placeholder(8),
	)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sqlguard: preparing audit insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, r.RunID, r.MapperID, r.SQL, r.SqlType, r.Strategy, r.Kind, r.RiskLevel, r.Message); err != nil {
			return fmt.Errorf("sqlguard: recording violation: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListRecords(ctx context.Context, f Filter) ([]Record, error) {
	var conds []string
	var args []any
	add := func(cond string, val any) {
		conds = append(conds, fmt.Sprintf(cond, s.placeholder(len(args)+1)))
		args = append(args, val)
	}
	if f.RunID != "" {
		add("run_id = %s", f.RunID)
	}
	if f.MapperID != "" {
		add("mapper_id = %s", f.MapperID)
	}
	if f.Kind != "" {
		add("kind = %s", f.Kind)
	}
	if f.RiskLevel != "" {
		add("risk_level = %s", f.RiskLevel)
	}
	if !f.Since.IsZero() {
		add("created_at >= %s", f.Since)
	}

	query := "SELECT id, run_id, mapper_id, sql_text, sql_type, strategy, kind, risk_level, message, created_at FROM sqlguard_violations"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlguard: listing violations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.RunID, &r.MapperID, &r.SQL, &r.SqlType, &r.Strategy, &r.Kind, &r.RiskLevel, &r.Message, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlguard: scanning violation row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountByKind(ctx context.Context, since time.Time) (map[string]int, error) {
	query := fmt.Sprintf("SELECT kind, COUNT(*) FROM sqlguard_violations WHERE created_at >= %s GROUP BY kind", s.placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("sqlguard: counting violations by kind: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("sqlguard: scanning violation count row: %w", err)
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
