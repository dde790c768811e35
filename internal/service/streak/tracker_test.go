package streak

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/events"
)

// captureQueue records enqueued notifications, deduplicating by ID like
// the real queue manager.
type captureQueue struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Notification
}

func newCaptureQueue() *captureQueue {
	return &captureQueue{items: make(map[uuid.UUID]*domain.Notification)}
}

func (q *captureQueue) Enqueue(ctx context.Context, n *domain.Notification) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.items[n.ID]; ok {
		return false, nil
	}
	q.items[n.ID] = n
	return true, nil
}

func (q *captureQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reviewEvent(t *testing.T, userID uuid.UUID, reviewedAt time.Time) *events.Event {
	t.Helper()
	event, err := events.NewEvent(events.EventTypeReviewCompleted, events.ReviewCompletedPayload{
		UserID:     userID,
		CardID:     uuid.New(),
		Quality:    4,
		Successful: true,
		ReviewedAt: reviewedAt,
	})
	require.NoError(t, err)
	return event
}

func TestTrackerBuildsStreakAcrossDays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	queue := newCaptureQueue()
	tracker := NewTracker(queue, testLogger())
	userID := uuid.New()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		event := reviewEvent(t, userID, start.AddDate(0, 0, day))
		require.NoError(t, tracker.HandleEvent(ctx, event))
	}

	assert.Equal(t, 3, tracker.Current(userID))
	// Day 3 is a milestone.
	assert.Equal(t, 1, queue.count())
}

func TestTrackerSameDayDoesNotAdvance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	queue := newCaptureQueue()
	tracker := NewTracker(queue, testLogger())
	userID := uuid.New()

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, userID, at)))
	require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, userID, at.Add(4*time.Hour))))

	assert.Equal(t, 1, tracker.Current(userID))
	assert.Zero(t, queue.count())
}

func TestTrackerGapResetsStreak(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	queue := newCaptureQueue()
	tracker := NewTracker(queue, testLogger())
	userID := uuid.New()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, userID, start)))
	require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, userID, start.AddDate(0, 0, 1))))

	// Two days missed: back to one.
	require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, userID, start.AddDate(0, 0, 4))))
	assert.Equal(t, 1, tracker.Current(userID))
}

func TestTrackerIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	queue := newCaptureQueue()
	tracker := NewTracker(queue, testLogger())

	event, err := events.NewEvent("something_else", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, tracker.HandleEvent(ctx, event))
	assert.Zero(t, queue.count())
}

func TestTrackerStreaksAreIndependentPerUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	queue := newCaptureQueue()
	tracker := NewTracker(queue, testLogger())

	alice := uuid.New()
	bob := uuid.New()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for day := 0; day < 2; day++ {
		require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, alice, start.AddDate(0, 0, day))))
	}
	require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, bob, start)))

	assert.Equal(t, 2, tracker.Current(alice))
	assert.Equal(t, 1, tracker.Current(bob))
}

func TestTrackerMilestoneNotificationShape(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	queue := newCaptureQueue()
	tracker := NewTracker(queue, testLogger())
	userID := uuid.New()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		require.NoError(t, tracker.HandleEvent(ctx, reviewEvent(t, userID, start.AddDate(0, 0, day))))
	}

	require.Equal(t, 1, queue.count())
	for _, n := range queue.items {
		assert.Equal(t, domain.NotificationTypeAchievement, n.Type)
		assert.Equal(t, domain.NotificationPriorityLow, n.Priority)
		assert.Equal(t, userID, n.UserID)
		assert.Contains(t, n.Title, "3 day streak")
	}
}
