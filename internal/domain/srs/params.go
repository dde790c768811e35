package srs

import "time"

// Params defines all configurable parameters for the review scheduling
// algorithm. The defaults satisfy the growth and regression laws the
// rest of the engine relies on: successful reviews push the next review
// further out, failed reviews reset to an hours-scale retry.
type Params struct {
	// EaseMax is the ease applied to the easiest cards (difficulty 1).
	EaseMax float64

	// EaseSlope is how much ease is lost per difficulty step above 1.
	// With EaseMax 2.5 and slope 0.3, difficulty 5 yields ease 1.3.
	EaseSlope float64

	// GrowthQualityBonus scales the extra interval growth per quality
	// point above the success threshold.
	GrowthQualityBonus float64

	// EMAWeight is the weight of the newest outcome in the success rate
	// exponential moving average.
	EMAWeight float64

	// EasePromotionThreshold is the success rate a card must hold before
	// a perfect review lowers its difficulty.
	EasePromotionThreshold float64

	// FailedRetryStep scales the retry delay after failed recall: a
	// review of quality q (q < 3) is rescheduled after (q+1) steps.
	// Failed cards come back within hours, never days.
	FailedRetryStep time.Duration

	// FirstReviewIntervals maps a successful quality (3-5) to the
	// interval applied on a card's first successful review.
	FirstReviewIntervals map[int]time.Duration

	// MaxInterval caps interval growth for very mature cards.
	MaxInterval time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero-valued fields keep their defaults.
type ParamsConfig struct {
	EaseMax                float64
	EaseSlope              float64
	GrowthQualityBonus     float64
	EMAWeight              float64
	EasePromotionThreshold float64
	FailedRetryStep        time.Duration
	MaxInterval            time.Duration
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		EaseMax:                2.5,
		EaseSlope:              0.3,
		GrowthQualityBonus:     0.15,
		EMAWeight:              0.2,
		EasePromotionThreshold: 0.8,
		FailedRetryStep:        time.Hour,

		// First successful review: about a day, more when recall was easy.
		FirstReviewIntervals: map[int]time.Duration{
			3: 24 * time.Hour,
			4: 36 * time.Hour,
			5: 48 * time.Hour,
		},

		MaxInterval: 365 * 24 * time.Hour,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.EaseMax > 0 {
		params.EaseMax = config.EaseMax
	}
	if config.EaseSlope > 0 {
		params.EaseSlope = config.EaseSlope
	}
	if config.GrowthQualityBonus > 0 {
		params.GrowthQualityBonus = config.GrowthQualityBonus
	}
	if config.EMAWeight > 0 {
		params.EMAWeight = config.EMAWeight
	}
	if config.EasePromotionThreshold > 0 {
		params.EasePromotionThreshold = config.EasePromotionThreshold
	}
	if config.FailedRetryStep > 0 {
		params.FailedRetryStep = config.FailedRetryStep
	}
	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}

	return params
}
