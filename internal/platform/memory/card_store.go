package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// CardStore is an in-memory implementation of store.CardStore. It backs
// the server when no database is configured and doubles as the card
// store for tests.
type CardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*domain.Card
}

// NewCardStore creates an empty in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[uuid.UUID]*domain.Card),
	}
}

var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; exists {
		return store.ErrDuplicate
	}
	s.cards[card.ID] = copyCard(card)
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return copyCard(card), nil
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
func (s *CardStore) UpdateScheduling(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}

	existing.Difficulty = card.Difficulty
	existing.Interval = card.Interval
	existing.NextReviewAt = card.NextReviewAt
	existing.LastReviewedAt = card.LastReviewedAt
	existing.ReviewCount = card.ReviewCount
	existing.SuccessRate = card.SuccessRate
	existing.UpdatedAt = card.UpdatedAt
	return nil
}

// GetByUser implements store.CardStore.GetByUser
func (s *CardStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Card
	for _, card := range s.cards {
		if card.UserID == userID {
			out = append(out, copyCard(card))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetDue implements store.CardStore.GetDue
func (s *CardStore) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Card
	for _, card := range s.cards {
		if card.UserID == userID && !card.NextReviewAt.After(now) {
			out = append(out, copyCard(card))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextReviewAt.Before(out[j].NextReviewAt)
	})
	return out, nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	return nil
}

// WithTx implements store.CardStore.WithTx. The in-memory store has no
// transactions; it returns itself.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return s
}

func copyCard(card *domain.Card) *domain.Card {
	c := *card
	c.Tags = append([]string(nil), card.Tags...)
	return &c
}
