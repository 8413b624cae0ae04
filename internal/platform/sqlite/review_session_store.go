package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// ReviewSessionStore implements store.ReviewSessionStore on SQLite.
type ReviewSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewSessionStore creates a review session store over db.
func NewReviewSessionStore(db store.DBTX, logger *slog.Logger) *ReviewSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_session_store")),
	}
}

var _ store.ReviewSessionStore = (*ReviewSessionStore)(nil)

// Create implements store.ReviewSessionStore.
func (s *ReviewSessionStore) Create(ctx context.Context, session *domain.ReviewSession) error {
	if err := store.ValidateSession(session); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_sessions (`+store.ReviewSessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		store.SessionArgs(session)...,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create review session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("review session", "create", "insert failed", MapError(err))
	}
	return nil
}

// Get implements store.ReviewSessionStore.
func (s *ReviewSessionStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewSession, error) {
	session, err := store.ScanReviewSession(s.db.QueryRowContext(ctx,
		`SELECT `+store.ReviewSessionColumns+` FROM review_sessions WHERE id = ? AND user_id = ?`,
		id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, store.NewStoreError("review session", "get", "query failed", MapError(err))
	}
	return session, nil
}

// Complete implements store.ReviewSessionStore.
func (s *ReviewSessionStore) Complete(ctx context.Context, session *domain.ReviewSession) error {
	if err := store.ValidateSession(session); err != nil {
		return err
	}
	if !session.Completed() {
		return fmt.Errorf("%w: review session %s has no completion time", store.ErrInvalidEntity, session.ID)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE review_sessions
		SET completed_at = ?, flashcards_reviewed = ?, questions_reviewed = ?,
			correct_count = ?, total_count = ?, actual_duration_seconds = ?, accuracy = ?
		WHERE id = ? AND user_id = ? AND completed_at IS NULL`,
		session.CompletedAt.UTC(),
		session.FlashcardsReviewed,
		session.QuestionsReviewed,
		session.CorrectCount,
		session.TotalCount,
		session.DurationSeconds,
		session.Accuracy,
		session.ID,
		session.UserID,
	)
	if err != nil {
		return store.NewStoreError("review session", "complete", "update failed", MapError(err))
	}

	if err := checkRowsAffected(result); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, getErr := s.Get(ctx, session.UserID, session.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: review session %s is already completed", store.ErrConflict, session.ID)
	}
	return nil
}

// ListByUser implements store.ReviewSessionStore.
func (s *ReviewSessionStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.ReviewSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+store.ReviewSessionColumns+` FROM review_sessions
		WHERE user_id = ? ORDER BY started_at DESC, id ASC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, store.NewStoreError("review session", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]domain.ReviewSession, 0)
	for rows.Next() {
		session, err := store.ScanReviewSession(rows)
		if err != nil {
			return nil, store.NewStoreError("review session", "list", "scan failed", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review session", "list", "iteration failed", MapError(err))
	}
	return sessions, nil
}
