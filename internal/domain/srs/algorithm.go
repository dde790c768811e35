package srs

import (
	"time"

	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// easeForDifficulty derives the ease multiplier from a card's difficulty.
//
// Ease plays the role of the classic SM-2 ease factor but is not stored
// on the card; it is a pure function of the 1-5 difficulty so that the
// two fields can never drift apart. Difficulty 1 yields the maximum
// ease, difficulty 5 the minimum, so easier cards grow their intervals
// faster for the same review quality.
func easeForDifficulty(difficulty int, params *Params) float64 {
	return params.EaseMax - params.EaseSlope*float64(difficulty-domain.MinDifficulty)
}

// updateSuccessRate folds a review result into the exponentially
// weighted success rate. result is 1 for successful recall, 0 for a
// lapse. The result always stays within [0,1] because it is a convex
// combination of values in that range.
func updateSuccessRate(current float64, successful bool, params *Params) float64 {
	result := 0.0
	if successful {
		result = 1.0
	}
	return current*(1-params.EMAWeight) + result*params.EMAWeight
}

// updateDifficulty moves the card's difficulty after a review.
//
// Failed recall bumps difficulty one step toward the hard end, capped at
// the maximum. A perfect review on a card whose (already updated)
// success rate clears the promotion threshold moves it one step toward
// the easy end, floored at the minimum. Anything in between leaves
// difficulty untouched.
func updateDifficulty(difficulty, quality int, newSuccessRate float64, params *Params) int {
	if quality < domain.SuccessQualityThreshold {
		if difficulty < domain.MaxDifficulty {
			return difficulty + 1
		}
		return difficulty
	}

	if quality == domain.MaxQuality && newSuccessRate >= params.EasePromotionThreshold {
		if difficulty > domain.MinDifficulty {
			return difficulty - 1
		}
	}
	return difficulty
}

// calculateNewInterval determines the spacing until the card's next review.
//
// Failed recall resets to an hours-scale retry proportional to how bad
// the failure was: quality 0 comes back after one step, quality 2 after
// three. Successful recall grows the previous interval by a multiplier
// that increases with quality and decreases with difficulty; a card's
// first successful review uses a fixed starting interval instead, since
// there is no previous interval to grow from.
func calculateNewInterval(
	currentInterval time.Duration,
	difficulty, quality int,
	params *Params,
) time.Duration {
	if quality < domain.SuccessQualityThreshold {
		return time.Duration(quality+1) * params.FailedRetryStep
	}

	if currentInterval <= 0 {
		return params.FirstReviewIntervals[quality]
	}

	ease := easeForDifficulty(difficulty, params)
	bonus := 1 + params.GrowthQualityBonus*float64(quality-domain.SuccessQualityThreshold)
	next := time.Duration(float64(currentInterval) * ease * bonus)

	if next > params.MaxInterval {
		return params.MaxInterval
	}
	return next
}

// calculateNextState computes a card's next scheduling state from a
// review outcome. It is pure: the input card is never mutated, there is
// no I/O and no hidden randomness, so identical inputs always produce
// identical outputs. The caller is responsible for validating the
// outcome and for persisting the returned card.
//
// Guarantees:
//   - ReviewCount increases by exactly one
//   - SuccessRate stays within [0,1]
//   - NextReviewAt is never earlier than outcome.Timestamp
func calculateNextState(
	card *domain.Card,
	outcome *domain.ReviewOutcome,
	params *Params,
) *domain.Card {
	next := *card
	next.Tags = append([]string(nil), card.Tags...)

	next.ReviewCount++
	next.LastReviewedAt = outcome.Timestamp
	next.UpdatedAt = outcome.Timestamp

	next.SuccessRate = updateSuccessRate(card.SuccessRate, outcome.IsSuccessful(), params)
	next.Difficulty = updateDifficulty(card.Difficulty, outcome.Quality, next.SuccessRate, params)
	next.Interval = calculateNewInterval(card.Interval, next.Difficulty, outcome.Quality, params)
	next.NextReviewAt = outcome.Timestamp.Add(next.Interval)

	return &next
}
