package audit

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

func migrationsFor(driver string) (fs.FS, string, error) {
	switch driver {
	case "postgres":
		sub, err := fs.Sub(postgresMigrations, "migrations/postgres")
		return sub, "postgres", err
	case "sqlite":
		sub, err := fs.Sub(sqliteMigrations, "migrations/sqlite")
		return sub, "sqlite3", err
	default:
		return nil, "", fmt.Errorf("sqlguard: no audit migrations for driver %q", driver)
	}
}

// migrate runs every pending goose migration for driver against db,
// mirroring internal/database/migrations.go's SetDialect-then-Up
// sequence but reading from an embedded filesystem instead of a
// migrations/ directory on disk.
func migrate(ctx context.Context, db *sql.DB, driver string) error {
	migrations, gooseDialect, err := migrationsFor(driver)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.Dialect(gooseDialect), db, migrations)
	if err != nil {
		return fmt.Errorf("sqlguard: building goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("sqlguard: running audit migrations: %w", err)
	}
	return nil
}
