// Package datasource resolves a host's configured database connection
// into the pkg/dialect.DataSource identity C8 caches strategies against,
// adapted from internal/infrastructure's driver-switch Database
// construction (postgres via pgxpool, sqlite via the mattn/go-sqlite3
// cgo driver — internal/audit uses the pure-Go modernc driver instead,
// since that package links sqlite into the audit store's long-lived
// process rather than a one-shot startup probe).
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sqlguard/sqlguard/pkg/dialect"
)

// Config names the connection a host wants SqlGuard's dialect resolver
// to probe, mirroring internal/infrastructure.Config's {Driver, DSN}
// shape but scoped to what dialect resolution needs.
type Config struct {
	// Driver is one of "postgres", "sqlite", or any other product name
	// recognized by pkg/dialect.CreateDialect ("sqlserver", "oracle",
	// "db2", "informix", "mariadb", "opengauss", "gaussdb", "kingbase",
	// "dm", "oscar") for hosts whose driver SqlGuard doesn't link itself.
	Driver string
	DSN    string
}

// UnsupportedDriverError mirrors internal/infrastructure's
// UnsupportedDriverError; Resolve returns it when Config.Driver is empty.
// Any other driver name is passed on to pkg/dialect's name matching.
type UnsupportedDriverError struct {
	Driver string
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("sqlguard: unsupported datasource driver %q", e.Driver)
}

// Resolver turns a Config into a cached pkg/dialect.Strategy, probing the
// live connection for postgres/sqlite (where several distinct dialect
// products share one wire protocol, e.g. PostgreSQL/openGauss/GaussDB/
// Kingbase all being Postgres-wire-compatible) and falling back to a
// direct driver-name mapping for every other configured driver.
type Resolver struct {
	factory *dialect.Factory
}

// NewResolver builds a Resolver sharing factory's per-DataSource cache.
func NewResolver(factory *dialect.Factory) *Resolver {
	return &Resolver{factory: factory}
}

// Resolve returns the Strategy for id/cfg. It probes the live connection
// (postgres/sqlite drivers) on every call; pkg/dialect.Factory then caches
// the Strategy by id, so later calls for the same id get the first one.
func (r *Resolver) Resolve(ctx context.Context, id string, cfg Config) (dialect.Strategy, error) {
	productName, err := productNameFor(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return r.factory.GetDialect(dialect.DataSource{ID: id, ProductName: productName}), nil
}

func productNameFor(ctx context.Context, cfg Config) (string, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql", "pgx":
		return probePostgresFamily(ctx, cfg.DSN)
	case "sqlite", "sqlite3":
		// SQLite speaks the same LIMIT syntax as MySQL; no live probe
		// needed, but opening once surfaces a bad DSN at startup rather
		// than at the first validate() call.
		if err := probeOpen(ctx, "sqlite3", cfg.DSN); err != nil {
			return "", err
		}
		return "MySQL", nil
	case "":
		return "", &UnsupportedDriverError{Driver: cfg.Driver}
	default:
		// Any other configured name (sqlserver, oracle, db2, informix,
		// mariadb, opengauss, gaussdb, kingbase, dm, oscar) is passed
		// through to CreateDialect's own substring matching unchanged;
		// SqlGuard does not link a driver for these, the host's own
		// connection pool does.
		return cfg.Driver, nil
	}
}

// probePostgresFamily opens a short-lived connection and inspects
// SELECT version() to distinguish vanilla PostgreSQL from the
// Postgres-wire-compatible products §4.8's dialect table lists
// separately (openGauss, GaussDB, Kingbase).
func probePostgresFamily(ctx context.Context, dsn string) (string, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("sqlguard: connecting to resolve postgres dialect: %w", err)
	}
	defer pool.Close()

	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("sqlguard: querying version() to resolve postgres dialect: %w", err)
	}

	v := strings.ToLower(version)
	switch {
	case strings.Contains(v, "opengauss"):
		return "openGauss", nil
	case strings.Contains(v, "gaussdb"):
		return "GaussDB", nil
	case strings.Contains(v, "kingbase"):
		return "Kingbase", nil
	default:
		return "PostgreSQL", nil
	}
}

func probeOpen(ctx context.Context, driverName, dsn string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("sqlguard: opening %s datasource: %w", driverName, err)
	}
	defer db.Close()
	return db.PingContext(ctx)
}
