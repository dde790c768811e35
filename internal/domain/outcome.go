package domain

import (
	"fmt"
	"time"
)

// Review outcome validation errors. Each wraps ErrInvalidOutcome so
// callers can match the whole family with errors.Is.
var (
	// ErrQualityOutOfRange is returned when a review quality is outside 0-5.
	// Out-of-range quality is rejected before any scheduling state changes.
	ErrQualityOutOfRange = fmt.Errorf("%w: quality must be between 0 and 5", ErrInvalidOutcome)

	// ErrNegativeResponseTime is returned when a review response time is negative.
	ErrNegativeResponseTime = fmt.Errorf("%w: response time cannot be negative", ErrInvalidOutcome)

	// ErrOutcomeTimestampZero is returned when a review outcome has no timestamp.
	ErrOutcomeTimestampZero = fmt.Errorf("%w: timestamp must be set", ErrInvalidOutcome)
)

// Quality bounds for a review outcome. 0 is a total failure to recall,
// 5 is perfect, effortless recall.
const (
	MinQuality = 0
	MaxQuality = 5

	// SuccessQualityThreshold separates failed from successful recall.
	// Quality below this value counts as a lapse.
	SuccessQualityThreshold = 3
)

// ReviewOutcome is a user's self-reported result for a single card review.
// It is an input value, never persisted by the engine itself.
type ReviewOutcome struct {
	// Quality is the self-reported recall quality, 0-5 inclusive.
	Quality int `json:"quality"`

	// ResponseTime is how long the user took to answer, if measured.
	// It is recorded as a statistic only and never gates scheduling.
	ResponseTime *time.Duration `json:"response_time,omitempty"`

	// Timestamp is the instant the review occurred.
	Timestamp time.Time `json:"timestamp"`
}

// NewReviewOutcome creates a validated ReviewOutcome for the given quality
// occurring at the given instant.
func NewReviewOutcome(quality int, responseTime *time.Duration, timestamp time.Time) (*ReviewOutcome, error) {
	outcome := &ReviewOutcome{
		Quality:      quality,
		ResponseTime: responseTime,
		Timestamp:    timestamp,
	}

	if err := outcome.Validate(); err != nil {
		return nil, err
	}

	return outcome, nil
}

// Validate checks if the ReviewOutcome has valid data.
// Returns an error if any field fails validation.
func (o *ReviewOutcome) Validate() error {
	if o.Quality < MinQuality || o.Quality > MaxQuality {
		return ErrQualityOutOfRange
	}

	if o.ResponseTime != nil && *o.ResponseTime < 0 {
		return ErrNegativeResponseTime
	}

	if o.Timestamp.IsZero() {
		return ErrOutcomeTimestampZero
	}

	return nil
}

// IsSuccessful reports whether the outcome counts as successful recall.
func (o *ReviewOutcome) IsSuccessful() bool {
	return o.Quality >= SuccessQualityThreshold
}
