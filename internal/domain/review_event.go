package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewEvent records a single submitted rating. Events are append-only and
// never modified after creation.
type ReviewEvent struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	ItemID           string    `json:"item_id"`
	Rating           Rating    `json:"rating"`
	ReviewedAt       time.Time `json:"reviewed_at"`
	IntervalBefore   float64   `json:"interval_before"`
	IntervalAfter    float64   `json:"interval_after"`
	EaseBefore       float64   `json:"ease_before"`
	EaseAfter        float64   `json:"ease_after"`
	TimeSpentSeconds float64   `json:"time_spent_seconds"`
}

// NewReviewEvent builds the event describing the transition from before to
// after caused by rating.
func NewReviewEvent(
	userID uuid.UUID,
	before, after ReviewState,
	rating Rating,
	timeSpentSeconds float64,
	at time.Time,
) (*ReviewEvent, error) {
	if userID == uuid.Nil {
		return nil, NewValidationError("user_id", "cannot be empty")
	}
	if !rating.IsValid() {
		return nil, NewValidationError("rating", "unknown rating "+string(rating))
	}

	return &ReviewEvent{
		ID:               uuid.New(),
		UserID:           userID,
		ItemID:           before.ItemID,
		Rating:           rating,
		ReviewedAt:       at,
		IntervalBefore:   before.IntervalDays,
		IntervalAfter:    after.IntervalDays,
		EaseBefore:       before.Ease,
		EaseAfter:        after.Ease,
		TimeSpentSeconds: timeSpentSeconds,
	}, nil
}

// Correct reports whether the event recorded a successful recall.
func (e ReviewEvent) Correct() bool {
	return e.Rating.Correct()
}
