package main

// Manage the screening_sessions schema:
//   go run ./cmd/migrate [up|down|status|version]

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"screening-backend/internal/shared/config"
	"screening-backend/internal/shared/storage/db"
	"screening-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if logger, err := telemetry.New(cfg.LogFormat, cfg.LogLevel == "debug"); err == nil {
		telemetry.SetLogger(logger)
	}
	defer telemetry.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", map[string]any{"command": command})
}
