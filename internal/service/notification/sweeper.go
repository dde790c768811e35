package notification

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sweeper periodically delivers due notifications for every user with
// pending queue entries. Fan-out across users is bounded so a large user
// base cannot starve the scheduler.
type Sweeper struct {
	service     NotificationService
	manager     *Manager
	interval    time.Duration
	concurrency int
	logger      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// SweeperConfig tunes the background sweep.
type SweeperConfig struct {
	// Interval between sweep passes. Zero or negative defaults to 30s.
	Interval time.Duration

	// Concurrency bounds how many users are processed at once.
	// Zero or negative defaults to 4.
	Concurrency int
}

// NewSweeper creates a sweeper over the given service and manager.
func NewSweeper(
	service NotificationService,
	manager *Manager,
	cfg SweeperConfig,
	logger *slog.Logger,
) *Sweeper {
	if service == nil {
		panic("service cannot be nil")
	}
	if manager == nil {
		panic("manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Sweeper{
		service:     service,
		manager:     manager,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "sweeper")),
	}
}

// Start launches the sweep loop. It returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.logger.Info("starting notification sweeper",
		slog.Duration("interval", s.interval),
		slog.Int("concurrency", s.concurrency))

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("notification sweeper stopped")
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Sweep runs one delivery pass over every user with pending
// notifications. Failures for one user never block the others.
func (s *Sweeper) Sweep(ctx context.Context) {
	users := s.manager.ActiveUsers()
	if len(users) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			delivered, err := s.service.ProcessDue(ctx, userID)
			if err != nil {
				s.logger.Warn("sweep failed for user",
					slog.String("user_id", userID.String()),
					slog.String("error", err.Error()))
				// Errors are logged per user; the pass itself continues.
				return nil
			}
			if len(delivered) > 0 {
				s.logger.Debug("sweep delivered notifications",
					slog.String("user_id", userID.String()),
					slog.Int("count", len(delivered)))
			}
			return nil
		})
	}

	// Goroutines never return errors, so Wait only synchronizes.
	_ = g.Wait()
}
