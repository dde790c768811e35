package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDeliversForAllActiveUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, userID := range users {
		f.addDueCard(t, userID, time.Hour)
		_, err := f.service.GenerateReviewReminders(ctx, userID)
		require.NoError(t, err)
	}

	sweeper := NewSweeper(f.service, f.manager, SweeperConfig{Concurrency: 2}, testLogger())
	sweeper.Sweep(ctx)

	for _, userID := range users {
		count, err := f.service.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "user %s should have a delivered reminder", userID)
	}

	// Nothing pending left; a second sweep is a no-op.
	assert.Empty(t, f.manager.ActiveUsers())
	sweeper.Sweep(ctx)
}

func TestSweeperStartStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)
	userID := uuid.New()

	f.addDueCard(t, userID, time.Hour)
	_, err := f.service.GenerateReviewReminders(ctx, userID)
	require.NoError(t, err)

	sweeper := NewSweeper(f.service, f.manager, SweeperConfig{
		Interval:    10 * time.Millisecond,
		Concurrency: 2,
	}, testLogger())
	sweeper.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := f.service.UnreadCount(ctx, userID)
		require.NoError(t, err)
		if count == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	count, err := f.service.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Stop blocks until the loop exits and is safe to call once started.
	sweeper.Stop()
}
