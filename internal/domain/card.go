package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardDifficultyRange is returned when a card's difficulty is outside 1-5.
	ErrCardDifficultyRange = errors.New("card difficulty must be between 1 and 5")

	// ErrCardSuccessRateRange is returned when a card's success rate is outside [0,1].
	ErrCardSuccessRateRange = errors.New("card success rate must be between 0.0 and 1.0")

	// ErrCardReviewCountNegative is returned when a card's review count is negative.
	ErrCardReviewCountNegative = errors.New("card review count cannot be negative")

	// ErrCardNextReviewZero is returned when a card has no next review time.
	// A card is always scheduled; freshly created cards are due immediately.
	ErrCardNextReviewZero = errors.New("card next review time must be set")
)

// Difficulty bounds for a card. Higher means harder to recall.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Card is a reviewable memory card together with its spaced repetition
// scheduling state. The front/back content is opaque to the scheduler;
// only the scheduling fields drive review timing.
type Card struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`

	// Scheduling state, mutated only by the srs package.
	Difficulty     int           `json:"difficulty"`       // 1-5, higher = harder
	Interval       time.Duration `json:"interval"`         // spacing applied at the last review; 0 before first review
	NextReviewAt   time.Time     `json:"next_review_at"`   // when the card is next due
	LastReviewedAt time.Time     `json:"last_reviewed_at"` // zero before first review
	ReviewCount    int           `json:"review_count"`     // lifetime count of completed reviews
	SuccessRate    float64       `json:"success_rate"`     // exponentially weighted fraction of successful reviews

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a new Card owned by the given user. The card is due
// immediately: NextReviewAt is set to now so the first review can happen
// as soon as the user wants it.
func NewCard(userID uuid.UUID, front, back string, tags []string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:           uuid.New(),
		UserID:       userID,
		Front:        front,
		Back:         back,
		Tags:         tags,
		Difficulty:   3,
		Interval:     0,
		NextReviewAt: now,
		ReviewCount:  0,
		SuccessRate:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Difficulty < MinDifficulty || c.Difficulty > MaxDifficulty {
		return ErrCardDifficultyRange
	}

	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return ErrCardSuccessRateRange
	}

	if c.ReviewCount < 0 {
		return ErrCardReviewCountNegative
	}

	if c.NextReviewAt.IsZero() {
		return ErrCardNextReviewZero
	}

	return nil
}

// IsDue reports whether the card is due for review at the given instant.
func (c *Card) IsDue(now time.Time) bool {
	return !c.NextReviewAt.After(now)
}

// HasTag reports whether the card carries the given tag.
// Tag order is irrelevant; tags form a set.
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
