package domain

import (
	"fmt"
	"time"
)

// DefaultEase is the ease assigned to an item the first time it is introduced.
const DefaultEase = 2.5

// ReviewState is the scheduling state of one flashcard or tracked question
// concept for one learner. The scheduler is the only component that produces
// new states from old ones; every other package treats it as read-only data.
type ReviewState struct {
	ItemID string   `json:"item_id"`
	Type   ItemType `json:"type"`

	// Concept and ModuleID group items for analytics. The scheduler never
	// changes them.
	Concept  string `json:"concept"`
	ModuleID string `json:"module_id,omitempty"`

	DueAt                time.Time  `json:"due_at"`
	IntervalDays         float64    `json:"interval_days"`
	Ease                 float64    `json:"ease"`
	Repetitions          int        `json:"repetitions"`
	Lapses               int        `json:"lapses"`
	TotalReviews         int        `json:"total_reviews"`
	CorrectReviews       int        `json:"correct_reviews"`
	AverageRecallSeconds float64    `json:"average_recall_seconds"`
	LastReviewedAt       *time.Time `json:"last_reviewed_at,omitempty"`
}

// NewReviewState creates the initial state for a newly introduced item. The
// item is due immediately with no interval and the given ease.
func NewReviewState(
	itemID string,
	itemType ItemType,
	concept, moduleID string,
	ease float64,
	now time.Time,
) (ReviewState, error) {
	if itemID == "" {
		return ReviewState{}, NewValidationError("item_id", "cannot be empty")
	}
	if !itemType.IsValid() {
		return ReviewState{}, NewValidationError("type", fmt.Sprintf("unknown item type %q", itemType))
	}
	if ease <= 0 {
		ease = DefaultEase
	}

	return ReviewState{
		ItemID:   itemID,
		Type:     itemType,
		Concept:  concept,
		ModuleID: moduleID,
		DueAt:    now,
		Ease:     ease,
	}, nil
}

// IsDue reports whether the item is eligible for review at now.
func (s ReviewState) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// Retention returns the percentage of correct reviews, or 0 when the item
// has never been reviewed.
func (s ReviewState) Retention() float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return 100 * float64(s.CorrectReviews) / float64(s.TotalReviews)
}

// Validate checks the invariants every persisted state must satisfy.
// Violations are reported as PreconditionError because a state that breaks
// them cannot have come from the scheduler.
func (s ReviewState) Validate(minEase float64) error {
	switch {
	case s.Repetitions < 0:
		return NewPreconditionError("repetitions", "must not be negative")
	case s.Lapses < 0:
		return NewPreconditionError("lapses", "must not be negative")
	case s.TotalReviews < 0:
		return NewPreconditionError("total_reviews", "must not be negative")
	case s.CorrectReviews < 0:
		return NewPreconditionError("correct_reviews", "must not be negative")
	case s.CorrectReviews > s.TotalReviews:
		return NewPreconditionError("correct_reviews",
			fmt.Sprintf("%d exceeds total reviews %d", s.CorrectReviews, s.TotalReviews))
	case s.Repetitions > s.TotalReviews:
		return NewPreconditionError("repetitions",
			fmt.Sprintf("%d exceeds total reviews %d", s.Repetitions, s.TotalReviews))
	case s.IntervalDays < 0:
		return NewPreconditionError("interval_days", "must not be negative")
	case s.Ease < minEase:
		return NewPreconditionError("ease",
			fmt.Sprintf("%.4f is below the floor %.2f", s.Ease, minEase))
	case s.AverageRecallSeconds < 0:
		return NewPreconditionError("average_recall_seconds", "must not be negative")
	case s.LastReviewedAt != nil && s.DueAt.Before(*s.LastReviewedAt):
		return NewPreconditionError("due_at", "is before last_reviewed_at")
	}
	return nil
}
