package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(interval, ease float64, reps, total, correct int, due time.Time) domain.ReviewState {
	return domain.ReviewState{
		ItemID:         "item-1",
		Type:           domain.ItemTypeFlashcard,
		Concept:        "saved-questions",
		DueAt:          due,
		IntervalDays:   interval,
		Ease:           ease,
		Repetitions:    reps,
		TotalReviews:   total,
		CorrectReviews: correct,
	}
}

func TestSchedule_Scenarios(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	t.Run("first good review", func(t *testing.T) {
		t.Parallel()

		next, err := svc.Schedule(newState(0, 2.5, 0, 0, 0, now), domain.RatingGood, now, 8)
		require.NoError(t, err)

		assert.InDelta(t, 1.0, next.IntervalDays, epsilon)
		assert.Equal(t, 1, next.Repetitions)
		assert.Equal(t, now.Add(24*time.Hour), next.DueAt)
	})

	t.Run("mature good review", func(t *testing.T) {
		t.Parallel()

		next, err := svc.Schedule(newState(6, 2.5, 3, 3, 3, now), domain.RatingGood, now, 8)
		require.NoError(t, err)

		assert.InDelta(t, 15.0, next.IntervalDays, epsilon)
		assert.Equal(t, 4, next.Repetitions)
		assert.InDelta(t, 2.5, next.Ease, epsilon)
	})

	t.Run("lapse", func(t *testing.T) {
		t.Parallel()

		state := newState(15, 2.5, 4, 6, 5, now)
		state.Lapses = 1
		next, err := svc.Schedule(state, domain.RatingAgain, now, 20)
		require.NoError(t, err)

		assert.Zero(t, next.Repetitions)
		assert.Equal(t, 2, next.Lapses)
		assert.Zero(t, next.IntervalDays)
		assert.InDelta(t, 2.3, next.Ease, epsilon)
		assert.Equal(t, now.Add(10*time.Minute), next.DueAt)
		assert.Equal(t, 7, next.TotalReviews)
		assert.Equal(t, 5, next.CorrectReviews)
	})

	t.Run("easy first review", func(t *testing.T) {
		t.Parallel()

		next, err := svc.Schedule(newState(0, 2.5, 0, 0, 0, now), domain.RatingEasy, now, 3)
		require.NoError(t, err)

		assert.InDelta(t, 2.0, next.IntervalDays, epsilon)
		assert.InDelta(t, 2.65, next.Ease, epsilon)
		assert.Equal(t, 1, next.CorrectReviews)
	})

	t.Run("hard is not counted correct", func(t *testing.T) {
		t.Parallel()

		next, err := svc.Schedule(newState(5, 2.5, 2, 2, 2, now), domain.RatingHard, now, 3)
		require.NoError(t, err)

		assert.InDelta(t, 6.0, next.IntervalDays, epsilon)
		assert.Equal(t, 3, next.Repetitions)
		assert.Equal(t, 3, next.TotalReviews)
		assert.Equal(t, 2, next.CorrectReviews)
	})
}

func TestSchedule_Properties(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	states := []domain.ReviewState{
		newState(0, 2.5, 0, 0, 0, now),
		newState(1, 1.3, 1, 4, 1, now.Add(-48*time.Hour)),
		newState(40, 2.9, 6, 10, 9, now.Add(-time.Hour)),
		newState(364, 3.1, 12, 12, 12, now),
	}

	for _, state := range states {
		for _, rating := range domain.Ratings {
			next, err := svc.Schedule(state, rating, now, 10)
			require.NoError(t, err)

			assert.False(t, next.DueAt.Before(now), "dueAt must not precede now for %s", rating)
			assert.GreaterOrEqual(t, next.Ease, 1.3)
			assert.GreaterOrEqual(t, next.IntervalDays, 0.0)
			assert.LessOrEqual(t, next.IntervalDays, 365.0)
			assert.LessOrEqual(t, next.CorrectReviews, next.TotalReviews)
			assert.Equal(t, state.TotalReviews+1, next.TotalReviews)
			require.NotNil(t, next.LastReviewedAt)
			assert.False(t, next.DueAt.Before(*next.LastReviewedAt))
			assert.NoError(t, next.Validate(1.3))

			if rating == domain.RatingAgain {
				assert.Zero(t, next.Repetitions)
			}
		}
	}
}

func TestSchedule_EaseNeverDropsBelowFloor(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	state := newState(0, 2.5, 0, 0, 0, now)

	for i := 0; i < 30; i++ {
		rating := domain.RatingAgain
		if i%2 == 1 {
			rating = domain.RatingHard
		}
		var err error
		now = now.Add(time.Hour)
		state, err = svc.Schedule(state, rating, now, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, state.Ease, 1.3)
	}
	assert.InDelta(t, 1.3, state.Ease, epsilon)
}

func TestSchedule_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	reviewed := now.Add(-24 * time.Hour)

	state := newState(3, 2.5, 2, 2, 2, now)
	state.LastReviewedAt = &reviewed
	original := state

	_, err := svc.Schedule(state, domain.RatingEasy, now, 4)
	require.NoError(t, err)

	assert.Equal(t, original, state)
	assert.Equal(t, reviewed, *state.LastReviewedAt)
}

func TestSchedule_ImmediateRelearn(t *testing.T) {
	t.Parallel()

	svc := NewServiceWithParams(NewParams(ParamsConfig{RelearnMinutes: minutes(0)}))
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	next, err := svc.Schedule(newState(6, 2.5, 3, 3, 3, now), domain.RatingAgain, now, 12)
	require.NoError(t, err)
	assert.Equal(t, now, next.DueAt)
	assert.Zero(t, next.IntervalDays)
}

func TestSchedule_RunningMean(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	state := newState(0, 2.5, 0, 0, 0, now)
	state, err := svc.Schedule(state, domain.RatingGood, now, 10)
	require.NoError(t, err)
	state, err = svc.Schedule(state, domain.RatingGood, now.Add(24*time.Hour), 20)
	require.NoError(t, err)
	state, err = svc.Schedule(state, domain.RatingGood, now.Add(72*time.Hour), 30)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, state.AverageRecallSeconds, epsilon)
}

func TestSchedule_Errors(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		state   domain.ReviewState
		rating  domain.Rating
		recall  float64
		wantErr error
	}{
		{
			name:    "unknown rating",
			state:   newState(0, 2.5, 0, 0, 0, now),
			rating:  domain.Rating("perfect"),
			wantErr: domain.ErrValidation,
		},
		{
			name:    "negative recall",
			state:   newState(0, 2.5, 0, 0, 0, now),
			rating:  domain.RatingGood,
			recall:  -1,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "correct exceeds total",
			state:   newState(1, 2.5, 1, 1, 2, now),
			rating:  domain.RatingGood,
			wantErr: domain.ErrPrecondition,
		},
		{
			name:    "ease below floor",
			state:   newState(1, 1.0, 1, 1, 1, now),
			rating:  domain.RatingGood,
			wantErr: domain.ErrPrecondition,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Schedule(tc.state, tc.rating, now, tc.recall)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestPostpone(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("future due date moves forward", func(t *testing.T) {
		t.Parallel()

		due := now.Add(48 * time.Hour)
		next, err := svc.Postpone(newState(2, 2.5, 1, 1, 1, due), 3, now)
		require.NoError(t, err)
		assert.Equal(t, due.AddDate(0, 0, 3), next.DueAt)
	})

	t.Run("overdue item counts from now", func(t *testing.T) {
		t.Parallel()

		due := now.Add(-72 * time.Hour)
		next, err := svc.Postpone(newState(2, 2.5, 1, 1, 1, due), 2, now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, 2), next.DueAt)
		assert.Equal(t, 2.0, next.IntervalDays)
	})

	t.Run("invalid days", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Postpone(newState(2, 2.5, 1, 1, 1, now), 0, now)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}
