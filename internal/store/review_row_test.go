package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRowRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 3, 4, 5, 6, 789000000, time.UTC)
	reviewed := now.Add(-26 * time.Hour)

	prior := ReviewRow{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ContentID: "card-42",
		Version:   7,
		CreatedAt: now.Add(-72 * time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}

	testCases := []struct {
		name  string
		state domain.ReviewState
	}{
		{
			name: "never reviewed",
			state: domain.ReviewState{
				Type:    domain.ItemTypeFlashcard,
				Concept: "sensors",
				DueAt:   now,
				Ease:    2.5,
			},
		},
		{
			name: "mature with module",
			state: domain.ReviewState{
				Type:                 domain.ItemTypeQuestion,
				Concept:              "saved-questions",
				ModuleID:             "asking-questions",
				DueAt:                now.Add(15 * 24 * time.Hour),
				IntervalDays:         15.6,
				Ease:                 2.35,
				Repetitions:          4,
				Lapses:               1,
				TotalReviews:         9,
				CorrectReviews:       7,
				AverageRecallSeconds: 12.345,
				LastReviewedAt:       &reviewed,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := tc.state
			state.ItemID = prior.ID.String()

			row := FromState(prior, state)
			assert.Equal(t, state, ToState(row))

			assert.Equal(t, prior.ID, row.ID)
			assert.Equal(t, prior.UserID, row.UserID)
			assert.Equal(t, prior.ContentID, row.ContentID)
			assert.Equal(t, prior.Version, row.Version)
			assert.Equal(t, prior.CreatedAt, row.CreatedAt)

			assert.Equal(t, row, FromState(prior, ToState(row)))
		})
	}
}

func TestFromStateDoesNotUseStateItemID(t *testing.T) {
	t.Parallel()

	prior := ReviewRow{ID: uuid.New()}
	row := FromState(prior, domain.ReviewState{ItemID: "something-else", Ease: 2.5})
	assert.Equal(t, prior.ID, row.ID)
}

func TestToStateNormalizesToUTC(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("EST", -5*60*60)
	due := time.Date(2025, 2, 3, 9, 0, 0, 0, zone)
	row := ReviewRow{
		ID:             uuid.New(),
		ItemType:       "flashcard",
		SRSDue:         due,
		SRSEase:        2.5,
		LastReviewedAt: sql.NullTime{Time: due, Valid: true},
	}

	state := ToState(row)
	assert.Equal(t, time.UTC, state.DueAt.Location())
	assert.True(t, state.DueAt.Equal(due))
	require.NotNil(t, state.LastReviewedAt)
	assert.True(t, state.LastReviewedAt.Equal(due))
	assert.Empty(t, state.ModuleID)
}

func TestNewReviewRow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	state, err := domain.NewReviewState("pending", domain.ItemTypeFlashcard, "filters", "m1", 2.5, now)
	require.NoError(t, err)

	row := NewReviewRow(userID, "card-1", state, now)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, userID, row.UserID)
	assert.Equal(t, "card-1", row.ContentID)
	assert.Equal(t, "flashcard", row.ItemType)
	assert.True(t, row.ModuleID.Valid)
	assert.False(t, row.LastReviewedAt.Valid)
	assert.Equal(t, now, row.SRSDue)
	assert.Equal(t, row.ID.String(), ToState(*row).ItemID)
}
