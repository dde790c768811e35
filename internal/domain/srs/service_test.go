package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/mnemos-app/mnemos-api/internal/domain"
)

func TestCalculateNextReviewValidation(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	card := testCard(3, 24*time.Hour, 0.5)

	// Nil inputs are rejected.
	if _, err := svc.CalculateNextReview(nil, outcomeAt(3, at)); !errors.Is(err, ErrNilCard) {
		t.Errorf("Expected ErrNilCard, got %v", err)
	}
	if _, err := svc.CalculateNextReview(card, nil); !errors.Is(err, ErrNilOutcome) {
		t.Errorf("Expected ErrNilOutcome, got %v", err)
	}

	// Out-of-range quality is rejected before any state is computed.
	_, err := svc.CalculateNextReview(card, outcomeAt(6, at))
	if !errors.Is(err, domain.ErrQualityOutOfRange) {
		t.Errorf("Expected ErrQualityOutOfRange, got %v", err)
	}
	if card.ReviewCount != 4 {
		t.Error("Expected the card to be untouched after a rejected outcome")
	}

	// Valid input succeeds.
	next, err := svc.CalculateNextReview(card, outcomeAt(4, at))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.ReviewCount != 5 {
		t.Errorf("Expected review count 5, got %d", next.ReviewCount)
	}
}

func TestCalculateNextReviewRecordsResponseTime(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	card := testCard(3, 24*time.Hour, 0.5)

	// Response time is a statistic only: it never changes the schedule.
	slow := 45 * time.Second
	withTime := &domain.ReviewOutcome{Quality: 4, ResponseTime: &slow, Timestamp: at}
	withoutTime := &domain.ReviewOutcome{Quality: 4, Timestamp: at}

	a, err := svc.CalculateNextReview(card, withTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	b, err := svc.CalculateNextReview(card, withoutTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if a.Interval != b.Interval || !a.NextReviewAt.Equal(b.NextReviewAt) {
		t.Error("Expected response time not to affect scheduling")
	}
}

func TestPostponeReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	card := testCard(3, 24*time.Hour, 0.5)

	next, err := svc.PostponeReview(card, 3, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !next.NextReviewAt.Equal(card.NextReviewAt.AddDate(0, 0, 3)) {
		t.Errorf("Expected next review pushed by 3 days, got %v", next.NextReviewAt)
	}
	if next.ReviewCount != card.ReviewCount {
		t.Error("Expected postpone not to record a review")
	}

	if _, err := svc.PostponeReview(card, 0, now); !errors.Is(err, ErrInvalidDays) {
		t.Errorf("Expected ErrInvalidDays, got %v", err)
	}
	if _, err := svc.PostponeReview(nil, 1, now); !errors.Is(err, ErrNilCard) {
		t.Errorf("Expected ErrNilCard, got %v", err)
	}
}
