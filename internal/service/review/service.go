package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/domain/streak"
)

// CreateItemRequest introduces a flashcard or question concept for review.
type CreateItemRequest struct {
	ContentID string          `json:"content_id"`
	Type      domain.ItemType `json:"type"`
	Concept   string          `json:"concept"`
	ModuleID  string          `json:"module_id,omitempty"`
}

// RatingRequest is a learner's self-assessment after one review.
type RatingRequest struct {
	Rating           domain.Rating `json:"rating"`
	TimeSpentSeconds float64       `json:"time_spent_seconds"`
}

// RatingResult is the outcome of a committed rating.
type RatingResult struct {
	State domain.ReviewState `json:"state"`
	Event domain.ReviewEvent `json:"event"`
}

// SampleRequest asks for a stratified practice set.
type SampleRequest struct {
	TargetCount int `json:"target_count"`

	// DomainWeights maps exam domains to their share of the set. When empty,
	// every domain in the pool is weighted equally.
	DomainWeights map[string]float64 `json:"domain_weights,omitempty"`

	// Curve names a preset difficulty curve. DifficultyCurve takes precedence
	// when both are set; the configured default applies when neither is.
	Curve           string                   `json:"curve,omitempty"`
	DifficultyCurve practice.DifficultyCurve `json:"difficulty_curve,omitempty"`
}

// Answer is one graded response of a mock exam.
type Answer struct {
	ItemID  string `json:"item_id"`
	Correct bool   `json:"correct"`
}

// ScoreRequest grades a completed mock exam.
type ScoreRequest struct {
	Answers []Answer `json:"answers"`

	// PassingScore overrides the configured passing percentage when positive.
	PassingScore float64 `json:"passing_score,omitempty"`
}

// TargetRequest asks for a module-targeted practice set.
type TargetRequest struct {
	Targeting practice.Targeting `json:"targeting"`

	// DomainWeights ranks related domains for the mixed-content fallback.
	DomainWeights map[string]float64 `json:"domain_weights,omitempty"`

	Curve           string                   `json:"curve,omitempty"`
	DifficultyCurve practice.DifficultyCurve `json:"difficulty_curve,omitempty"`
}

// TargetedSet is a practice set drawn from a targeted pool.
type TargetedSet struct {
	Items []practice.Item `json:"items"`

	// Match names the stage that produced the pool, such as "exact-match"
	// or a fallback.
	Match string `json:"match"`

	// Available is the size of the pool the set was drawn from.
	Available  int  `json:"available"`
	HasMinimum bool `json:"has_minimum"`
}

// WeakItemsRequest selects weak items. Zero values use the defaults.
type WeakItemsRequest struct {
	// Threshold is a retention percentage in (0, 100].
	Threshold float64         `json:"threshold,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Type      domain.ItemType `json:"type,omitempty"`
}

// StartSessionRequest opens a review session.
type StartSessionRequest struct {
	Type          domain.SessionType `json:"session_type"`
	TargetMinutes int                `json:"target_minutes,omitempty"`
}

// Dashboard is the aggregated progress view for one learner.
type Dashboard struct {
	Summary    analytics.ProgressSummary `json:"summary"`
	Velocity   []int                     `json:"velocity"`
	Readiness  analytics.Readiness       `json:"readiness"`
	Benchmarks []analytics.Benchmark     `json:"benchmarks"`
}

// Service runs the review engine against a user's persisted review data.
// Every operation is scoped to userID: items owned by other users behave as
// if they did not exist.
type Service interface {
	// CreateItem introduces a new item. It is due immediately with the
	// scheduler's default ease.
	//
	// Returns ErrInvalidInput for a missing content ID or concept or an
	// unknown item type, and ErrItemExists when the user already tracks the
	// content with the same type.
	CreateItem(ctx context.Context, userID uuid.UUID, req CreateItemRequest) (*domain.ReviewState, error)

	// DeleteItem removes an item together with its review history.
	// Returns ErrItemNotFound when the item does not exist.
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error

	// SubmitRating applies a rating to an item and records the review event.
	//
	// This method performs several operations within a single transaction:
	// 1. Reads the item, locking its row where the database supports it
	// 2. Computes the next state with the scheduler
	// 3. Writes the state, guarded by the row version
	// 4. Appends the review event
	//
	// Input is validated before the transaction starts, so a rejected rating
	// never changes stored data.
	//
	// Returns:
	//   - ErrInvalidInput for an unknown rating or a negative time spent
	//   - ErrItemNotFound when the item does not exist
	//   - ErrConcurrentUpdate when another write won the race; the caller may retry
	//   - a domain.PreconditionError when the stored state is corrupt
	SubmitRating(ctx context.Context, userID, itemID uuid.UUID, req RatingRequest) (*RatingResult, error)

	// Postpone pushes an item's due date forward by days. It does not count
	// as a review.
	Postpone(ctx context.Context, userID, itemID uuid.UUID, days int) (*domain.ReviewState, error)

	// BuildQueue composes a review session from the items due now. A zero
	// MaxItems uses the configured default.
	BuildQueue(ctx context.Context, userID uuid.UUID, mode queue.Mode, budget queue.Budget) (*queue.SessionQueue, error)

	// DueCounts reports how many items of each type are due now.
	DueCounts(ctx context.Context, userID uuid.UUID) (queue.Counts, error)

	// Forecast reports how many items fall due on each of the next days.
	Forecast(ctx context.Context, userID uuid.UUID, days int) ([]queue.ForecastDay, error)

	// Streak computes the current and longest review streaks.
	Streak(ctx context.Context, userID uuid.UUID) (streak.Streaks, error)

	// ConceptMastery reports retention, tier and trend per concept.
	ConceptMastery(ctx context.Context, userID uuid.UUID) ([]analytics.ConceptMastery, error)

	// ModuleProgress reports concept completion per module. The module map is
	// derived from the user's items.
	ModuleProgress(ctx context.Context, userID uuid.UUID) ([]analytics.ModuleProgress, error)

	// Timeline buckets the review history of the last days by calendar day.
	Timeline(ctx context.Context, userID uuid.UUID, days int) ([]analytics.TimelinePoint, error)

	// Dashboard aggregates the progress summary, learning velocity, readiness
	// prediction and benchmarks. Concurrent calls for the same user share a
	// single computation.
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)

	// SamplePractice draws a practice set from the question pool.
	SamplePractice(ctx context.Context, req SampleRequest) ([]practice.Item, error)

	// ScoreExam grades a completed mock exam against the question pool.
	// Returns ErrInvalidInput when no answer matches a known question.
	ScoreExam(ctx context.Context, req ScoreRequest) (*practice.ExamResult, error)

	// TargetPractice narrows the question pool to a module, widening it with
	// the requested fallback when the exact match is too small, and samples
	// the ideal number of questions from the result.
	TargetPractice(ctx context.Context, req TargetRequest) (*TargetedSet, error)

	// WeakItems lists the user's reviewed items below a retention threshold,
	// weakest first.
	WeakItems(ctx context.Context, userID uuid.UUID, req WeakItemsRequest) ([]analytics.WeakItem, error)

	// StartSession opens a review session.
	StartSession(ctx context.Context, userID uuid.UUID, req StartSessionRequest) (*domain.ReviewSession, error)

	// CompleteSession records the result of an open session and closes it.
	//
	// Returns ErrSessionNotFound when the session does not exist and
	// ErrSessionCompleted when it was already closed.
	CompleteSession(
		ctx context.Context,
		userID, sessionID uuid.UUID,
		result domain.SessionResult,
	) (*domain.ReviewSession, error)

	// ListSessions returns the user's most recently started sessions. A zero
	// limit uses the default.
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ReviewSession, error)
}
