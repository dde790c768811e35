// Package memory provides in-memory store implementations used by tests
// and by deployments that run without a database.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// QueueStore is an in-memory implementation of store.QueueStore. It is
// safe for concurrent use and keeps records only for the lifetime of the
// process.
type QueueStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.Notification
}

// NewQueueStore creates an empty in-memory queue store.
func NewQueueStore() *QueueStore {
	return &QueueStore{
		records: make(map[uuid.UUID]*domain.Notification),
	}
}

// Ensure QueueStore implements store.QueueStore interface
var _ store.QueueStore = (*QueueStore)(nil)

// Save implements store.QueueStore.Save
func (s *QueueStore) Save(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so later mutations by the caller do not leak in.
	copied := *n
	s.records[n.ID] = &copied
	return nil
}

// GetByUser implements store.QueueStore.GetByUser
func (s *QueueStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Notification
	for _, n := range s.records {
		if n.UserID == userID {
			copied := *n
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Delete implements store.QueueStore.Delete
func (s *QueueStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// DeleteByUser implements store.QueueStore.DeleteByUser
func (s *QueueStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.records {
		if n.UserID == userID {
			delete(s.records, id)
		}
	}
	return nil
}
