package streak

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/events"
)

// achievementNamespace is the UUIDv5 namespace for streak achievement
// notification IDs. A milestone reached twice on the same day maps to
// the same ID, which the queue deduplicates.
var achievementNamespace = uuid.MustParse("b4de57aa-7c8e-45e9-9a31-0e6f24c7d4a2")

// Milestones are the streak lengths, in days, that earn an achievement
// notification.
var Milestones = []int{3, 7, 14, 30, 100}

// Enqueuer accepts produced notifications. The notification queue
// manager satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, n *domain.Notification) (bool, error)
}

// streakState is one user's running review streak.
type streakState struct {
	current int
	lastDay time.Time
}

// Tracker consumes review_completed events and maintains per-user daily
// review streaks. Hitting a milestone enqueues an achievement
// notification. State is in memory only; a restart resets streaks but
// never duplicates already-enqueued achievements within a day.
type Tracker struct {
	queue  Enqueuer
	logger *slog.Logger

	mu      sync.Mutex
	streaks map[uuid.UUID]*streakState
}

// NewTracker creates a streak tracker that enqueues achievements on the
// given queue.
func NewTracker(queue Enqueuer, logger *slog.Logger) *Tracker {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		queue:   queue,
		logger:  logger.With(slog.String("component", "streak_tracker")),
		streaks: make(map[uuid.UUID]*streakState),
	}
}

var _ events.EventHandler = (*Tracker)(nil)

// HandleEvent implements events.EventHandler. Events other than
// review_completed are ignored.
func (t *Tracker) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTypeReviewCompleted {
		return nil
	}

	var payload events.ReviewCompletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		t.logger.Error("failed to unmarshal review payload",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("failed to unmarshal review payload: %w", err)
	}

	streak, advanced := t.record(payload.UserID, payload.ReviewedAt)
	if !advanced {
		return nil
	}

	if !milestone(streak) {
		return nil
	}

	return t.enqueueAchievement(ctx, payload.UserID, streak, payload.ReviewedAt)
}

// Current reports the user's streak length in days.
func (t *Tracker) Current(userID uuid.UUID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.streaks[userID]; ok {
		return s.current
	}
	return 0
}

// record folds a review into the user's streak. It returns the streak
// length and whether this review advanced it to a new day.
func (t *Tracker) record(userID uuid.UUID, reviewedAt time.Time) (int, bool) {
	day := reviewedAt.UTC().Truncate(24 * time.Hour)

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.streaks[userID]
	if !ok {
		s = &streakState{}
		t.streaks[userID] = s
	}

	switch {
	case s.lastDay.Equal(day):
		return s.current, false
	case s.lastDay.Equal(day.AddDate(0, 0, -1)):
		s.current++
	default:
		s.current = 1
	}
	s.lastDay = day

	return s.current, true
}

// enqueueAchievement builds and enqueues the milestone notification.
func (t *Tracker) enqueueAchievement(
	ctx context.Context,
	userID uuid.UUID,
	streak int,
	reviewedAt time.Time,
) error {
	day := reviewedAt.UTC().Truncate(24 * time.Hour)
	name := fmt.Sprintf("%s@%d@%s", userID, streak, day.Format("2006-01-02"))

	n, err := domain.NewNotification(
		uuid.NewSHA1(achievementNamespace, []byte(name)),
		userID,
		domain.NotificationTypeAchievement,
		fmt.Sprintf("%d day streak!", streak),
		fmt.Sprintf("You have reviewed cards %d days in a row. Keep it up!", streak),
		domain.NotificationPriorityLow,
		reviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to build achievement notification: %w", err)
	}

	added, err := t.queue.Enqueue(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to enqueue achievement: %w", err)
	}
	if added {
		t.logger.Info("streak milestone reached",
			slog.String("user_id", userID.String()),
			slog.Int("streak_days", streak))
	}
	return nil
}

// milestone reports whether the streak length earns an achievement.
func milestone(streak int) bool {
	for _, m := range Milestones {
		if streak == m {
			return true
		}
	}
	return false
}
