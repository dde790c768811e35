package srs

import (
	"errors"
	"time"

	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// Common errors
var (
	ErrNilCard     = errors.New("card cannot be nil")
	ErrNilOutcome  = errors.New("review outcome cannot be nil")
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Service defines the interface for review scheduling operations.
// Implementations are stateless and safe to call concurrently for
// different cards; concurrent updates to the same card must be
// serialized by the persistence layer.
type Service interface {
	// CalculateNextReview computes a card's next scheduling state from a
	// review outcome. The outcome's quality must be within 0-5; invalid
	// outcomes are rejected before any state is computed.
	CalculateNextReview(card *domain.Card, outcome *domain.ReviewOutcome) (*domain.Card, error)

	// PostponeReview pushes the next review time forward by a specified
	// number of days without recording a review.
	PostponeReview(card *domain.Card, days int, now time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface for computing updated cards
func (s *defaultService) CalculateNextReview(
	card *domain.Card,
	outcome *domain.ReviewOutcome,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if outcome == nil {
		return nil, ErrNilOutcome
	}

	if err := outcome.Validate(); err != nil {
		return nil, err
	}

	return calculateNextState(card, outcome, s.params), nil
}

// PostponeReview implements the Service interface for postponing reviews
func (s *defaultService) PostponeReview(
	card *domain.Card,
	days int,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := *card
	next.Tags = append([]string(nil), card.Tags...)
	next.NextReviewAt = card.NextReviewAt.AddDate(0, 0, days)
	next.UpdatedAt = now

	return &next, nil
}
