package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos-app/mnemos-api/internal/domain"
)

func newRecord(t *testing.T, userID uuid.UUID) *domain.Notification {
	t.Helper()
	n, err := domain.NewNotification(
		uuid.New(),
		userID,
		domain.NotificationTypeReviewReminder,
		"Review due",
		"Cards are waiting",
		domain.NotificationPriorityMedium,
		time.Now().UTC(),
	)
	require.NoError(t, err)
	return n
}

func TestQueueStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewQueueStore()
	userID := uuid.New()

	n := newRecord(t, userID)
	require.NoError(t, s.Save(ctx, n))

	got, err := s.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, n.ID, got[0].ID)

	// Unknown users read as empty, not as an error.
	got, err = s.GetByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueueStoreSaveOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewQueueStore()
	userID := uuid.New()

	n := newRecord(t, userID)
	require.NoError(t, s.Save(ctx, n))

	n.MarkDelivered(time.Now().UTC())
	require.NoError(t, s.Save(ctx, n))

	got, err := s.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Delivered)
}

func TestQueueStoreSaveCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewQueueStore()
	userID := uuid.New()

	n := newRecord(t, userID)
	require.NoError(t, s.Save(ctx, n))

	// Mutating the caller's record must not change the stored state.
	n.Dismiss(time.Now().UTC())

	got, err := s.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Dismissed)
}

func TestQueueStoreRejectsInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewQueueStore()

	bad := newRecord(t, uuid.New())
	bad.Title = ""
	assert.ErrorIs(t, s.Save(ctx, bad), domain.ErrNotificationTitleEmpty)
}

func TestQueueStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewQueueStore()
	userID := uuid.New()

	a := newRecord(t, userID)
	b := newRecord(t, userID)
	other := newRecord(t, uuid.New())
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))
	require.NoError(t, s.Save(ctx, other))

	require.NoError(t, s.Delete(ctx, a.ID))
	// Deleting an unknown ID is a no-op.
	require.NoError(t, s.Delete(ctx, uuid.New()))

	got, err := s.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, s.DeleteByUser(ctx, userID))
	got, err = s.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Other users' records survive DeleteByUser.
	got, err = s.GetByUser(ctx, other.UserID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
