package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
)

// ReviewRow mirrors one row of the review_items table. Scheduling columns
// use the srs_ prefix.
type ReviewRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ItemType  string
	ContentID string
	Concept   string
	ModuleID  sql.NullString

	SRSDue                   time.Time
	SRSInterval              float64
	SRSEase                  float64
	SRSReps                  int
	SRSLapses                int
	TotalReviews             int
	CorrectReviews           int
	AverageRecallTimeSeconds float64
	LastReviewedAt           sql.NullTime

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReviewRow creates the row for a freshly introduced item. The row ID
// doubles as the state's item ID.
func NewReviewRow(userID uuid.UUID, contentID string, state domain.ReviewState, now time.Time) *ReviewRow {
	prior := ReviewRow{
		ID:        uuid.New(),
		UserID:    userID,
		ContentID: contentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	row := FromState(prior, state)
	return &row
}

// ToState converts a persisted row into the scheduler's state. It performs
// type coercion only.
func ToState(row ReviewRow) domain.ReviewState {
	state := domain.ReviewState{
		ItemID:               row.ID.String(),
		Type:                 domain.ItemType(row.ItemType),
		Concept:              row.Concept,
		ModuleID:             row.ModuleID.String,
		DueAt:                row.SRSDue.UTC(),
		IntervalDays:         row.SRSInterval,
		Ease:                 row.SRSEase,
		Repetitions:          row.SRSReps,
		Lapses:               row.SRSLapses,
		TotalReviews:         row.TotalReviews,
		CorrectReviews:       row.CorrectReviews,
		AverageRecallSeconds: row.AverageRecallTimeSeconds,
	}
	if row.LastReviewedAt.Valid {
		last := row.LastReviewedAt.Time.UTC()
		state.LastReviewedAt = &last
	}
	return state
}

// FromState returns prior with its scheduling and metadata columns replaced
// by state. Identity, ownership, content, version and timestamps are kept
// from prior; the state's ItemID is not consulted.
func FromState(prior ReviewRow, state domain.ReviewState) ReviewRow {
	row := prior
	row.ItemType = string(state.Type)
	row.Concept = state.Concept
	row.ModuleID = sql.NullString{String: state.ModuleID, Valid: state.ModuleID != ""}
	row.SRSDue = state.DueAt.UTC()
	row.SRSInterval = state.IntervalDays
	row.SRSEase = state.Ease
	row.SRSReps = state.Repetitions
	row.SRSLapses = state.Lapses
	row.TotalReviews = state.TotalReviews
	row.CorrectReviews = state.CorrectReviews
	row.AverageRecallTimeSeconds = state.AverageRecallSeconds
	row.LastReviewedAt = sql.NullTime{}
	if state.LastReviewedAt != nil {
		row.LastReviewedAt = sql.NullTime{Time: state.LastReviewedAt.UTC(), Valid: true}
	}
	return row
}

// ToStates converts a slice of rows.
func ToStates(rows []*ReviewRow) []domain.ReviewState {
	states := make([]domain.ReviewState, 0, len(rows))
	for _, row := range rows {
		states = append(states, ToState(*row))
	}
	return states
}
