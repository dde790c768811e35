// Package main implements the entry point for the Mnemos API server,
// which schedules spaced repetition reviews and manages per-user
// notification queues.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/mnemos-app/mnemos-api/internal/config"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	cfg, appLogger, err := initialize()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := handleMigrations(cfg, *migrateCmd, appLogger); err != nil {
			appLogger.Error("migration failed",
				slog.String("command", *migrateCmd),
				slog.String("error", redact.Error(err)))
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to build application", slog.String("error", redact.Error(err)))
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.run(context.Background()); err != nil {
		appLogger.Error("server exited with error", slog.String("error", redact.Error(err)))
		log.Fatalf("Server error: %v", err)
	}
}

// initialize loads configuration and sets up structured logging.
func initialize() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("database_configured", cfg.Database.URL != ""),
		slog.Duration("sweep_interval", cfg.Notification.SweepInterval))
	if cfg.Database.URL != "" {
		appLogger.Debug("database configuration",
			slog.String("url", redact.URL(cfg.Database.URL)))
	}

	return cfg, appLogger, nil
}
