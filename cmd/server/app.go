package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnemos-app/mnemos-api/internal/config"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/domain/srs"
	"github.com/mnemos-app/mnemos-api/internal/events"
	"github.com/mnemos-app/mnemos-api/internal/platform/memory"
	"github.com/mnemos-app/mnemos-api/internal/platform/postgres"
	"github.com/mnemos-app/mnemos-api/internal/service/notification"
	"github.com/mnemos-app/mnemos-api/internal/service/review"
	"github.com/mnemos-app/mnemos-api/internal/service/streak"
	"github.com/mnemos-app/mnemos-api/internal/store"
	"github.com/mnemos-app/mnemos-api/internal/task"
)

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when no database is configured; stores are then in-memory.
	db *sql.DB

	cardStore  store.CardStore
	queueStore store.QueueStore

	srsService srs.Service
	emitter    *events.InMemoryEventEmitter

	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool

	manager             *notification.Manager
	notificationService notification.NotificationService
	reviewService       review.ReviewService
	sweeper             *notification.Sweeper
}

// newApplication wires every component from configuration.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if cfg.Database.URL != "" {
		db, err := setupDatabase(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up database: %w", err)
		}
		app.db = db
		app.cardStore = postgres.NewPostgresCardStore(db, logger)
		app.queueStore = postgres.NewPostgresQueueStore(db, logger)
	} else {
		logger.Warn("no database configured, using in-memory stores")
		app.cardStore = memory.NewCardStore()
		app.queueStore = memory.NewQueueStore()
	}

	app.srsService = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		FailedRetryStep: time.Duration(cfg.Scheduler.FailedRetryStepMinutes) * time.Minute,
		MaxInterval:     time.Duration(cfg.Scheduler.MaxIntervalDays) * 24 * time.Hour,
	}))

	// Delivery machinery: bounded queue drained by the worker pool.
	app.taskQueue = task.NewTaskQueue(cfg.Notification.DeliveryQueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Notification.DeliveryWorkers,
	}, logger)

	dispatcher := notification.NewDispatcher(app.taskQueue, logger)
	dispatcher.RegisterChannel(notification.NewLogChannel(domain.ChannelEmail, logger))
	dispatcher.RegisterChannel(notification.NewLogChannel(domain.ChannelPush, logger))

	app.manager = notification.NewManager(app.queueStore, logger)
	app.notificationService = notification.NewNotificationService(
		app.cardStore,
		app.manager,
		notification.NewInMemoryPreferences(),
		dispatcher,
		notification.ReminderOptions{
			BatchLimit: cfg.Notification.ReminderBatchLimit,
			Expiry:     cfg.Notification.ReminderExpiry,
		},
		logger,
	)

	// Completed reviews feed the streak tracker through the event bus.
	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(streak.NewTracker(app.manager, logger))

	app.reviewService = review.NewReviewService(
		app.cardStore,
		app.srsService,
		app.emitter,
		app.db,
		logger,
	)

	app.sweeper = notification.NewSweeper(
		app.notificationService,
		app.manager,
		notification.SweeperConfig{
			Interval:    cfg.Notification.SweepInterval,
			Concurrency: cfg.Notification.SweepConcurrency,
		},
		logger,
	)

	return app, nil
}

// run starts the background machinery and the HTTP server, blocking
// until shutdown.
func (app *application) run(ctx context.Context) error {
	app.workerPool.Start()
	app.sweeper.Start(ctx)

	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup stops background work and releases resources, in reverse
// start order so no component outlives what it depends on.
func (app *application) cleanup() {
	app.sweeper.Stop()
	app.taskQueue.Close()
	app.workerPool.Stop()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}
}
