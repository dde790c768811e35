package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
// The engine only reads cards and writes back their scheduling state;
// card creation and deletion are driven by the surrounding application.
type CardStore interface {
	// Create saves a new card to the store.
	// All cards must be valid according to domain validation rules.
	// Returns validation errors if the card data is invalid.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// UpdateScheduling writes back a card's scheduling state after a
	// review: difficulty, interval, next/last review times, review count
	// and success rate. Content fields are left untouched.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateScheduling(ctx context.Context, card *domain.Card) error

	// GetByUser retrieves all cards owned by the given user.
	// Returns an empty slice when the user has no cards.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error)

	// GetDue retrieves the user's cards whose next review is at or
	// before the given instant, ordered by NextReviewAt ascending.
	GetDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Card, error)

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service) via store.RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
