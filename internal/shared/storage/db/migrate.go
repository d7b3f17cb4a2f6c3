package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"screening-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// gooseLogger routes goose output into telemetry instead of the stdlib logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	telemetry.Debug("db.migration", map[string]any{"detail": fmt.Sprintf(format, v...)})
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	telemetry.Error("db.migration_fatal", map[string]any{"detail": fmt.Sprintf(format, v...)})
	panic(fmt.Sprintf(format, v...))
}

// RunMigrations brings the screening_sessions schema up to date. A nil database means the
// session store is in memory and nothing is migrated.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}

// Migrate runs one goose command (up, down, status or version) against the embedded
// migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, database, "migrations")
	case "down":
		err = goose.DownContext(ctx, database, "migrations")
	case "status":
		err = goose.StatusContext(ctx, database, "migrations")
	case "version":
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	version, err := goose.GetDBVersion(database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}
