package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// ReviewService applies review outcomes to a user's cards and reschedules
// them with the spaced repetition algorithm.
type ReviewService interface {
	// SubmitReview processes a user's review of a flashcard and updates the
	// card's schedule based on the spaced repetition algorithm.
	//
	// Returns:
	//   - (*domain.Card, nil): The card with its updated schedule
	//   - (nil, ErrCardNotFound): If the card does not exist
	//   - (nil, ErrCardNotOwned): If the user does not own the card
	//   - (nil, ErrInvalidOutcome): If the outcome fails validation
	//   - (nil, error): Any other error, typically from the database
	//
	// The outcome's quality never mutates the stored card on failure; the
	// card is only written back once the new schedule has been computed.
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		outcome domain.ReviewOutcome,
	) (*domain.Card, error)

	// PostponeReview pushes a card's next review out by the given number of
	// days without touching its difficulty or success rate.
	//
	// Returns ErrCardNotFound / ErrCardNotOwned under the same conditions
	// as SubmitReview.
	PostponeReview(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		days int,
	) (*domain.Card, error)
}

// Common error types for ReviewService
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrInvalidOutcome indicates an invalid review outcome was provided.
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}

// NewPostponeReviewError returns a new ServiceError for the postpone_review operation.
func NewPostponeReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "postpone_review",
		Message:   message,
		Err:       err,
	}
}
