package main

import (
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/mnemos-app/mnemos-api/internal/config"
	"github.com/mnemos-app/mnemos-api/internal/platform/postgres"
)

// handleMigrations runs the requested goose command against the
// configured database using the embedded migration files.
func handleMigrations(cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("migrations require database.url to be configured")
	}

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("failed to close database", slog.String("error", closeErr.Error()))
		}
	}()

	goose.SetTableName("schema_migrations")
	goose.SetBaseFS(postgres.MigrationsFS)

	logger.Info("running migrations", slog.String("command", command))

	switch command {
	case "up":
		return goose.Up(db, "migrations")
	case "down":
		return goose.Down(db, "migrations")
	case "status":
		return goose.Status(db, "migrations")
	default:
		return fmt.Errorf("unknown migration command %q (want up, down or status)", command)
	}
}
