package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/practice"
)

// ReviewItemFilter narrows ListByUser. Zero fields do not filter.
type ReviewItemFilter struct {
	Type      domain.ItemType
	DueBefore time.Time
}

// ReviewItemStore persists review items and their scheduling state.
type ReviewItemStore interface {
	// Create inserts a new item. row.Version is set to 1.
	// Returns ErrReviewItemExists when the user already tracks the same
	// content with the same type.
	Create(ctx context.Context, row *ReviewRow) error

	// Get retrieves an item owned by userID without locking it.
	// Returns ErrReviewItemNotFound if it does not exist.
	Get(ctx context.Context, userID, id uuid.UUID) (*ReviewRow, error)

	// GetForUpdate retrieves an item and locks the row where the database
	// supports it. It should be called inside a transaction ahead of Update.
	// Returns ErrReviewItemNotFound if it does not exist.
	GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*ReviewRow, error)

	// Update writes the scheduling and metadata columns of row, provided the
	// stored version still equals row.Version. On success row.Version is
	// incremented. Returns ErrConflict when the version has moved on and
	// ErrReviewItemNotFound when the row is gone.
	Update(ctx context.Context, row *ReviewRow) error

	// Delete removes an item together with its review events.
	// Returns ErrReviewItemNotFound if it does not exist.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ListByUser returns the user's items ordered by due date.
	ListByUser(ctx context.Context, userID uuid.UUID, filter ReviewItemFilter) ([]*ReviewRow, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) ReviewItemStore
}

// ReviewEventStore persists the append-only rating history.
type ReviewEventStore interface {
	// Append records a new event. Events are never updated.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListByUser returns the user's events reviewed at or after since,
	// oldest first. A zero since returns the whole history.
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.ReviewEvent, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) ReviewEventStore
}

// ReviewSessionStore persists review sessions.
type ReviewSessionStore interface {
	// Create inserts an open session.
	Create(ctx context.Context, session *domain.ReviewSession) error

	// Get retrieves a session owned by userID.
	// Returns ErrSessionNotFound if it does not exist.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewSession, error)

	// Complete writes the result columns of a completed session, provided the
	// stored session is still open. Returns ErrSessionNotFound when the
	// session is gone and ErrConflict when it was already completed.
	Complete(ctx context.Context, session *domain.ReviewSession) error

	// ListByUser returns up to limit of the user's sessions, most recently
	// started first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ReviewSession, error)
}

// QuestionPoolStore reads the practice question pool. Authoring questions
// happens elsewhere.
type QuestionPoolStore interface {
	// ListPool returns the active questions in the given domains, or in all
	// domains when none are given.
	ListPool(ctx context.Context, domains []string) ([]practice.Item, error)

	// GetByIDs returns the questions with the given IDs. Unknown IDs are
	// skipped.
	GetByIDs(ctx context.Context, ids []string) ([]practice.Item, error)
}
