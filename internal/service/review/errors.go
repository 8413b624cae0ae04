package review

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// Common error types for the review Service
var (
	// ErrItemNotFound indicates that the review item does not exist or is
	// owned by another user.
	ErrItemNotFound = errors.New("review item not found")

	// ErrItemExists indicates that the user already tracks the content with
	// the same item type.
	ErrItemExists = errors.New("review item already exists")

	// ErrConcurrentUpdate indicates that the item changed between read and
	// write. The caller may retry.
	ErrConcurrentUpdate = errors.New("review item was modified concurrently")

	// ErrSessionNotFound indicates that the review session does not exist or
	// is owned by another user.
	ErrSessionNotFound = errors.New("review session not found")

	// ErrSessionCompleted indicates that the review session was already
	// completed.
	ErrSessionCompleted = errors.New("review session already completed")

	// ErrInvalidInput indicates a malformed request. It is always joined with
	// a *domain.ValidationError naming the field.
	ErrInvalidInput = errors.New("invalid input")
)

// Operation names carried by ServiceError.
const (
	OpCreateItem     = "create_item"
	OpDeleteItem     = "delete_item"
	OpSubmitRating   = "submit_rating"
	OpPostpone       = "postpone"
	OpBuildQueue     = "build_queue"
	OpDueCounts      = "due_counts"
	OpForecast       = "forecast"
	OpStreak         = "streak"
	OpConceptMastery = "concept_mastery"
	OpModuleProgress = "module_progress"
	OpTimeline       = "timeline"
	OpDashboard      = "dashboard"
	OpSamplePractice = "sample_practice"
	OpScoreExam      = "score_exam"
	OpTargetPractice = "target_practice"
	OpWeakItems      = "weak_items"

	OpStartSession    = "start_session"
	OpCompleteSession = "complete_session"
	OpListSessions    = "list_sessions"
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is one of the Op* constants
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// invalidInput joins ErrInvalidInput with a field-level validation error so
// both errors.Is(err, ErrInvalidInput) and errors.Is(err, domain.ErrValidation)
// hold.
func invalidInput(field, message string) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, domain.NewValidationError(field, message))
}

// translateStoreError replaces store sentinels with their service
// counterparts. Other errors are returned unchanged.
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrReviewItemNotFound):
		return ErrItemNotFound
	case errors.Is(err, store.ErrReviewItemExists):
		return ErrItemExists
	case errors.Is(err, store.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConcurrentUpdate
	default:
		return err
	}
}
