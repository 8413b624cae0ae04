package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor for a rating.
//
// Higher ease means intervals grow faster. The adjustment for the rating is
// added to the current ease and the result is clamped to the configured
// floor, and to the ceiling when one is set.
func calculateNewEaseFactor(currentEF float64, rating domain.Rating, params *Params) float64 {
	newEF := currentEF + params.EaseFactorAdjustment[rating]

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if params.MaxEaseFactor > 0 && newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next spacing interval in days.
//
// Parameters:
//   - previous: the interval before this review, in days
//   - easeFactor: the ease after this review's adjustment
//   - rating: the learner's rating
//   - params: algorithm configuration
//
// Algorithm behavior:
//   - "Again" resets the interval to 0
//   - "Hard" grows the previous interval by the hard modifier, never below
//     the first-review interval
//   - "Good" multiplies the previous interval by the ease
//   - "Easy" multiplies by the ease and the easy bonus
//   - A zero previous interval uses the first-review interval for the rating
//   - The result is clamped to [0, MaxIntervalDays]
func calculateNewInterval(previous, easeFactor float64, rating domain.Rating, params *Params) float64 {
	var interval float64

	switch rating {
	case domain.RatingAgain:
		interval = 0
	case domain.RatingHard:
		interval = math.Max(params.FirstReviewIntervals[domain.RatingHard],
			previous*params.IntervalModifier[domain.RatingHard])
	case domain.RatingGood, domain.RatingEasy:
		if previous == 0 {
			interval = params.FirstReviewIntervals[rating]
		} else {
			interval = previous * easeFactor * params.IntervalModifier[rating]
		}
	}

	if params.MaxIntervalDays > 0 && interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}
	if interval < 0 || math.IsNaN(interval) {
		interval = 0
	}

	return interval
}

// calculateNextReviewDate converts an interval into the next due instant.
// A zero interval after "again" uses the relearn delay instead.
func calculateNextReviewDate(interval float64, rating domain.Rating, now time.Time, params *Params) time.Time {
	if rating == domain.RatingAgain {
		return now.Add(params.RelearnDelay)
	}
	return now.Add(daysToDuration(interval))
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(math.Round(days * float64(24*time.Hour)))
}

// calculateRunningMean folds one more observation into an average over
// countBefore observations.
func calculateRunningMean(average float64, countBefore int, observation float64) float64 {
	return (average*float64(countBefore) + observation) / float64(countBefore+1)
}

// calculateNextState computes the state that follows a rating. It works on a
// copy and never modifies the input.
func calculateNextState(
	state domain.ReviewState,
	rating domain.Rating,
	now time.Time,
	recallSeconds float64,
	params *Params,
) domain.ReviewState {
	next := state

	next.Ease = calculateNewEaseFactor(state.Ease, rating, params)
	next.IntervalDays = calculateNewInterval(state.IntervalDays, next.Ease, rating, params)
	next.DueAt = calculateNextReviewDate(next.IntervalDays, rating, now, params)

	if rating == domain.RatingAgain {
		next.Repetitions = 0
		next.Lapses = state.Lapses + 1
	} else {
		next.Repetitions = state.Repetitions + 1
	}

	next.TotalReviews = state.TotalReviews + 1
	if rating.Correct() {
		next.CorrectReviews = state.CorrectReviews + 1
	}
	next.AverageRecallSeconds = calculateRunningMean(state.AverageRecallSeconds, state.TotalReviews, recallSeconds)

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt

	return next
}
