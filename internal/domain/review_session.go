package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionType names the item types a review session works through.
type SessionType string

// Possible session types
const (
	SessionFlashcards SessionType = "flashcards"
	SessionQuestions  SessionType = "questions"
	SessionMixed      SessionType = "mixed"
)

// IsValid reports whether t is a known session type.
func (t SessionType) IsValid() bool {
	return t == SessionFlashcards || t == SessionQuestions || t == SessionMixed
}

func (t SessionType) String() string { return string(t) }

// ReviewSession records one sitting of reviews. It is open from StartedAt
// until Complete stamps CompletedAt; a completed session never changes.
type ReviewSession struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"user_id"`
	Type          SessionType `json:"session_type"`
	TargetMinutes int         `json:"target_minutes,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`

	FlashcardsReviewed int     `json:"flashcards_reviewed"`
	QuestionsReviewed  int     `json:"questions_reviewed"`
	CorrectCount       int     `json:"correct_count"`
	TotalCount         int     `json:"total_count"`
	DurationSeconds    int     `json:"duration_seconds"`
	Accuracy           float64 `json:"accuracy"`
}

// SessionResult is what a learner reports when finishing a session.
type SessionResult struct {
	FlashcardsReviewed int `json:"flashcards_reviewed"`
	QuestionsReviewed  int `json:"questions_reviewed"`
	CorrectCount       int `json:"correct_count"`
	TotalCount         int `json:"total_count"`
	DurationSeconds    int `json:"duration_seconds"`
}

// Validate checks the counts of r.
func (r SessionResult) Validate() error {
	for field, v := range map[string]int{
		"flashcards_reviewed": r.FlashcardsReviewed,
		"questions_reviewed":  r.QuestionsReviewed,
		"correct_count":       r.CorrectCount,
		"total_count":         r.TotalCount,
		"duration_seconds":    r.DurationSeconds,
	} {
		if v < 0 {
			return NewValidationError(field, "must not be negative")
		}
	}
	if r.CorrectCount > r.TotalCount {
		return NewValidationError("correct_count",
			fmt.Sprintf("%d exceeds total count %d", r.CorrectCount, r.TotalCount))
	}
	return nil
}

// NewReviewSession opens a session of sessionType at now. A targetMinutes
// of 0 sets no target.
func NewReviewSession(userID uuid.UUID, sessionType SessionType, targetMinutes int, now time.Time) (*ReviewSession, error) {
	if userID == uuid.Nil {
		return nil, NewValidationError("user_id", "cannot be empty")
	}
	if !sessionType.IsValid() {
		return nil, NewValidationError("session_type", fmt.Sprintf("unknown session type %q", sessionType))
	}
	if targetMinutes < 0 {
		return nil, NewValidationError("target_minutes", "must not be negative")
	}

	return &ReviewSession{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          sessionType,
		TargetMinutes: targetMinutes,
		StartedAt:     now.UTC(),
	}, nil
}

// Completed reports whether the session has been closed.
func (s *ReviewSession) Completed() bool {
	return s.CompletedAt != nil
}

// Complete records result and closes the session. A clock that reads
// earlier than StartedAt completes the session at StartedAt.
//
// Returns a ValidationError for malformed counts and a PreconditionError
// when the session is already closed.
func (s *ReviewSession) Complete(result SessionResult, now time.Time) error {
	if s.Completed() {
		return NewPreconditionError("completed_at", "session is already completed")
	}
	if err := result.Validate(); err != nil {
		return err
	}

	at := now.UTC()
	if at.Before(s.StartedAt) {
		at = s.StartedAt
	}

	s.FlashcardsReviewed = result.FlashcardsReviewed
	s.QuestionsReviewed = result.QuestionsReviewed
	s.CorrectCount = result.CorrectCount
	s.TotalCount = result.TotalCount
	s.DurationSeconds = result.DurationSeconds
	s.Accuracy = 0
	if result.TotalCount > 0 {
		s.Accuracy = 100 * float64(result.CorrectCount) / float64(result.TotalCount)
	}
	s.CompletedAt = &at
	return nil
}
