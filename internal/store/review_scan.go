package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/practice"
)

// ReviewItemColumns lists the review_items columns in the order ScanReviewRow
// expects them.
const ReviewItemColumns = `id, user_id, item_type, content_id, concept, module_id,
	srs_due, srs_interval, srs_ease, srs_reps, srs_lapses,
	total_reviews, correct_reviews, average_recall_time_seconds, last_reviewed_at,
	version, created_at, updated_at`

// ReviewEventColumns lists the review_events columns in the order
// ScanReviewEvent expects them.
const ReviewEventColumns = `id, user_id, item_id, rating, reviewed_at,
	interval_before, interval_after, ease_before, ease_after, time_spent_seconds`

// ReviewSessionColumns lists the review_sessions columns in the order
// ScanReviewSession expects them.
const ReviewSessionColumns = `id, user_id, session_type, target_duration_minutes, started_at, completed_at,
	flashcards_reviewed, questions_reviewed, correct_count, total_count,
	actual_duration_seconds, accuracy`

// QuestionColumns lists the questions columns in the order ScanQuestion
// expects them.
const QuestionColumns = `id, domain, difficulty, concept, module_id, tags`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanReviewRow reads one review_items row selected with ReviewItemColumns.
func ScanReviewRow(s RowScanner) (*ReviewRow, error) {
	var row ReviewRow
	err := s.Scan(
		&row.ID,
		&row.UserID,
		&row.ItemType,
		&row.ContentID,
		&row.Concept,
		&row.ModuleID,
		&row.SRSDue,
		&row.SRSInterval,
		&row.SRSEase,
		&row.SRSReps,
		&row.SRSLapses,
		&row.TotalReviews,
		&row.CorrectReviews,
		&row.AverageRecallTimeSeconds,
		&row.LastReviewedAt,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ScanReviewEvent reads one review_events row selected with
// ReviewEventColumns. The timestamp is normalized to UTC.
func ScanReviewEvent(s RowScanner) (domain.ReviewEvent, error) {
	var (
		event  domain.ReviewEvent
		rating string
	)
	err := s.Scan(
		&event.ID,
		&event.UserID,
		&event.ItemID,
		&rating,
		&event.ReviewedAt,
		&event.IntervalBefore,
		&event.IntervalAfter,
		&event.EaseBefore,
		&event.EaseAfter,
		&event.TimeSpentSeconds,
	)
	if err != nil {
		return domain.ReviewEvent{}, err
	}
	event.Rating = domain.Rating(rating)
	event.ReviewedAt = event.ReviewedAt.UTC()
	return event, nil
}

// ScanReviewSession reads one review_sessions row selected with
// ReviewSessionColumns. Timestamps are normalized to UTC.
func ScanReviewSession(s RowScanner) (*domain.ReviewSession, error) {
	var (
		session     domain.ReviewSession
		sessionType string
		completedAt sql.NullTime
	)
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&sessionType,
		&session.TargetMinutes,
		&session.StartedAt,
		&completedAt,
		&session.FlashcardsReviewed,
		&session.QuestionsReviewed,
		&session.CorrectCount,
		&session.TotalCount,
		&session.DurationSeconds,
		&session.Accuracy,
	)
	if err != nil {
		return nil, err
	}
	session.Type = domain.SessionType(sessionType)
	session.StartedAt = session.StartedAt.UTC()
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		session.CompletedAt = &at
	}
	return &session, nil
}

// SessionArgs returns the column values of session in ReviewSessionColumns
// order.
func SessionArgs(session *domain.ReviewSession) []any {
	completedAt := sql.NullTime{}
	if session.CompletedAt != nil {
		completedAt = sql.NullTime{Time: session.CompletedAt.UTC(), Valid: true}
	}
	return []any{
		session.ID,
		session.UserID,
		string(session.Type),
		session.TargetMinutes,
		session.StartedAt.UTC(),
		completedAt,
		session.FlashcardsReviewed,
		session.QuestionsReviewed,
		session.CorrectCount,
		session.TotalCount,
		session.DurationSeconds,
		session.Accuracy,
	}
}

// ValidateSession checks that a session can be written.
func ValidateSession(session *domain.ReviewSession) error {
	switch {
	case session == nil:
		return fmt.Errorf("%w: review session is nil", ErrInvalidEntity)
	case session.ID == uuid.Nil || session.UserID == uuid.Nil:
		return fmt.Errorf("%w: review session is missing an identifier", ErrInvalidEntity)
	case !session.Type.IsValid():
		return fmt.Errorf("%w: unknown session type %q", ErrInvalidEntity, session.Type)
	}
	return nil
}

// ScanQuestion reads one questions row selected with QuestionColumns. Tags
// are stored as a comma-separated list.
func ScanQuestion(s RowScanner) (practice.Item, error) {
	var (
		item       practice.Item
		difficulty string
		tags       string
	)
	if err := s.Scan(&item.ID, &item.Domain, &difficulty, &item.Concept, &item.ModuleID, &tags); err != nil {
		return practice.Item{}, err
	}
	item.Difficulty = domain.Difficulty(difficulty)
	item.Tags = SplitTags(tags)
	return item, nil
}

// JoinTags encodes tags for the questions.tags column.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(cleaned, ",")
}

// SplitTags decodes the questions.tags column. An empty column yields nil.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// ValidateRow checks the fields a review_items insert cannot default.
func ValidateRow(row *ReviewRow) error {
	switch {
	case row == nil:
		return fmt.Errorf("%w: review item is nil", ErrInvalidEntity)
	case row.ID == uuid.Nil:
		return fmt.Errorf("%w: review item id is empty", ErrInvalidEntity)
	case row.UserID == uuid.Nil:
		return fmt.Errorf("%w: review item user id is empty", ErrInvalidEntity)
	case row.ContentID == "":
		return fmt.Errorf("%w: review item content id is empty", ErrInvalidEntity)
	case !domain.ItemType(row.ItemType).IsValid():
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidEntity, row.ItemType)
	}
	return nil
}

// ValidateEvent checks that an event can be appended.
func ValidateEvent(event *domain.ReviewEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: review event is nil", ErrInvalidEntity)
	case event.ID == uuid.Nil || event.UserID == uuid.Nil || event.ItemID == "":
		return fmt.Errorf("%w: review event is missing an identifier", ErrInvalidEntity)
	case !event.Rating.IsValid():
		return fmt.Errorf("%w: unknown rating %q", ErrInvalidEntity, event.Rating)
	}
	return nil
}
