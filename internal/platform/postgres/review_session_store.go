package postgres

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

// PostgresReviewSessionStore implements store.ReviewSessionStore on
// PostgreSQL.
type PostgresReviewSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewSessionStore creates a review session store over db.
// If logger is nil, the default logger is used.
func NewPostgresReviewSessionStore(db store.DBTX, logger *slog.Logger) *PostgresReviewSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_session_store")),
	}
}

var _ store.ReviewSessionStore = (*PostgresReviewSessionStore)(nil)

// Create implements store.ReviewSessionStore.
func (s *PostgresReviewSessionStore) Create(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateSession(session); err != nil {
		return err
	}

	query := `
		INSERT INTO review_sessions (` + store.ReviewSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := s.db.ExecContext(ctx, query, store.SessionArgs(session)...); err != nil {
		log.Error("failed to create review session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("review session", "create", "insert failed", MapError(err))
	}

	return nil
}

// Get implements store.ReviewSessionStore.
func (s *PostgresReviewSessionStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.ReviewSessionColumns + ` FROM review_sessions WHERE id = $1 AND user_id = $2`
	session, err := store.ScanReviewSession(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get review session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, store.NewStoreError("review session", "get", "query failed", MapError(err))
	}

	return session, nil
}

// Complete implements store.ReviewSessionStore.
func (s *PostgresReviewSessionStore) Complete(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateSession(session); err != nil {
		return err
	}
	if !session.Completed() {
		return fmt.Errorf("%w: review session %s has no completion time", store.ErrInvalidEntity, session.ID)
	}

	query := `
		UPDATE review_sessions
		SET completed_at = $1, flashcards_reviewed = $2, questions_reviewed = $3,
			correct_count = $4, total_count = $5, actual_duration_seconds = $6, accuracy = $7
		WHERE id = $8 AND user_id = $9 AND completed_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query,
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
		log.Error("failed to complete review session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("review session", "complete", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, "review session"); err != nil {
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
func (s *PostgresReviewSessionStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + store.ReviewSessionColumns + `
		FROM review_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC, id ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.Error("failed to list review sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
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
