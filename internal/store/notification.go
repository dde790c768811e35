package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// QueueStore defines the interface for notification queue persistence.
// The queue manager holds the authoritative per-user state in memory and
// writes every mutation through this interface; on the first touch of a
// user's queue it loads whatever the store still holds. An in-memory
// implementation backs tests, a durable one backs production.
type QueueStore interface {
	// Save inserts the notification or, when a record with the same ID
	// already exists, overwrites it with the given state.
	Save(ctx context.Context, n *domain.Notification) error

	// GetByUser retrieves all notifications owned by the given user, in
	// no particular order. Returns an empty slice for an unknown user:
	// absence of a queue is not an error state.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// Delete removes a single notification by its ID.
	// Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUser removes every notification owned by the given user.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
