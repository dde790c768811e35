package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// PreferencesProvider resolves a user's notification preferences. Users
// who have never configured notifications get the domain defaults.
type PreferencesProvider interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.Preferences, error)
}

// InMemoryPreferences is a PreferencesProvider backed by a map. It
// serves until preferences get their own persistence.
type InMemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[uuid.UUID]domain.Preferences
}

// NewInMemoryPreferences creates an empty preferences provider.
func NewInMemoryPreferences() *InMemoryPreferences {
	return &InMemoryPreferences{
		prefs: make(map[uuid.UUID]domain.Preferences),
	}
}

// Get implements PreferencesProvider.Get.
func (p *InMemoryPreferences) Get(ctx context.Context, userID uuid.UUID) (domain.Preferences, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if prefs, ok := p.prefs[userID]; ok {
		return prefs, nil
	}
	return domain.DefaultPreferences(), nil
}

// Set stores a user's preferences after validating them.
func (p *InMemoryPreferences) Set(userID uuid.UUID, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefs[userID] = prefs
	return nil
}

var _ PreferencesProvider = (*InMemoryPreferences)(nil)
