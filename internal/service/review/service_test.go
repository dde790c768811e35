package review

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/domain/srs"
	"github.com/mnemos-app/mnemos-api/internal/events"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// fakeCardStore is an in-memory store.CardStore for exercising the
// service without a database.
type fakeCardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[uuid.UUID]*domain.Card)}
}

func (f *fakeCardStore) Create(ctx context.Context, card *domain.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *card
	f.cards[card.ID] = &c
	return nil
}

func (f *fakeCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	c := *card
	return &c, nil
}

func (f *fakeCardStore) UpdateScheduling(ctx context.Context, card *domain.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	c := *card
	f.cards[card.ID] = &c
	return nil
}

func (f *fakeCardStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Card
	for _, card := range f.cards {
		if card.UserID == userID {
			c := *card
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeCardStore) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Card
	for _, card := range f.cards {
		if card.UserID == userID && !card.NextReviewAt.After(now) {
			c := *card
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return f
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingHandler captures emitted events.
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.Event
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func seedCard(t *testing.T, cards *fakeCardStore, userID uuid.UUID) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(userID, "front", "back", []string{"go"})
	require.NoError(t, err)
	require.NoError(t, cards.Create(context.Background(), card))
	return card
}

func outcome(quality int) domain.ReviewOutcome {
	return domain.ReviewOutcome{
		Quality:   quality,
		Timestamp: time.Now().UTC(),
	}
}

func TestSubmitReviewUpdatesSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cards := newFakeCardStore()
	userID := uuid.New()
	card := seedCard(t, cards, userID)

	svc := NewReviewService(cards, srs.NewDefaultService(), nil, nil, testLogger())

	updated, err := svc.SubmitReview(ctx, userID, card.ID, outcome(5))
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, card.ReviewCount+1, updated.ReviewCount)
	assert.True(t, updated.NextReviewAt.After(time.Now().UTC()))

	// The new schedule is persisted, not just returned.
	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.NextReviewAt, stored.NextReviewAt)
	assert.Equal(t, updated.SuccessRate, stored.SuccessRate)
}

func TestSubmitReviewCardNotFound(t *testing.T) {
	t.Parallel()
	svc := NewReviewService(newFakeCardStore(), srs.NewDefaultService(), nil, nil, testLogger())

	_, err := svc.SubmitReview(context.Background(), uuid.New(), uuid.New(), outcome(4))
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSubmitReviewCardNotOwned(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cards := newFakeCardStore()
	card := seedCard(t, cards, uuid.New())

	svc := NewReviewService(cards, srs.NewDefaultService(), nil, nil, testLogger())

	_, err := svc.SubmitReview(ctx, uuid.New(), card.ID, outcome(4))
	assert.ErrorIs(t, err, ErrCardNotOwned)

	// The card's schedule is untouched.
	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ReviewCount)
}

func TestSubmitReviewInvalidOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cards := newFakeCardStore()
	userID := uuid.New()
	card := seedCard(t, cards, userID)

	svc := NewReviewService(cards, srs.NewDefaultService(), nil, nil, testLogger())

	_, err := svc.SubmitReview(ctx, userID, card.ID, outcome(6))
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	_, err = svc.SubmitReview(ctx, userID, card.ID, outcome(-1))
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestSubmitReviewEmitsEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cards := newFakeCardStore()
	userID := uuid.New()
	card := seedCard(t, cards, userID)

	emitter := events.NewInMemoryEventEmitter(testLogger())
	handler := &recordingHandler{}
	emitter.RegisterHandler(handler)

	svc := NewReviewService(cards, srs.NewDefaultService(), emitter, nil, testLogger())

	_, err := svc.SubmitReview(ctx, userID, card.ID, outcome(2))
	require.NoError(t, err)

	require.Len(t, handler.events, 1)
	require.Equal(t, events.EventTypeReviewCompleted, handler.events[0].Type)

	var payload events.ReviewCompletedPayload
	require.NoError(t, handler.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, card.ID, payload.CardID)
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, 2, payload.Quality)
	assert.False(t, payload.Successful)
}

func TestPostponeReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cards := newFakeCardStore()
	userID := uuid.New()
	card := seedCard(t, cards, userID)

	svc := NewReviewService(cards, srs.NewDefaultService(), nil, nil, testLogger())

	updated, err := svc.PostponeReview(ctx, userID, card.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, card.NextReviewAt.AddDate(0, 0, 3), updated.NextReviewAt)
	assert.Equal(t, card.Difficulty, updated.Difficulty)
	assert.Equal(t, card.SuccessRate, updated.SuccessRate)

	_, err = svc.PostponeReview(ctx, userID, card.ID, 0)
	assert.ErrorIs(t, err, srs.ErrInvalidDays)

	_, err = svc.PostponeReview(ctx, uuid.New(), card.ID, 1)
	assert.ErrorIs(t, err, ErrCardNotOwned)
}
