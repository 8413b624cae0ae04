package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// PostgresReviewEventStore implements store.ReviewEventStore on PostgreSQL.
type PostgresReviewEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewEventStore creates a review event store over db.
// If logger is nil, the default logger is used.
func NewPostgresReviewEventStore(db store.DBTX, logger *slog.Logger) *PostgresReviewEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_event_store")),
	}
}

var _ store.ReviewEventStore = (*PostgresReviewEventStore)(nil)

// WithTx implements store.ReviewEventStore.
func (s *PostgresReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &PostgresReviewEventStore{db: tx, logger: s.logger}
}

// Append implements store.ReviewEventStore.
func (s *PostgresReviewEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateEvent(event); err != nil {
		return err
	}

	query := `
		INSERT INTO review_events (` + store.ReviewEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.ItemID,
		string(event.Rating),
		event.ReviewedAt.UTC(),
		event.IntervalBefore,
		event.IntervalAfter,
		event.EaseBefore,
		event.EaseAfter,
		event.TimeSpentSeconds,
	)
	if err != nil {
		log.Error("failed to append review event",
			slog.String("error", err.Error()),
			slog.String("item_id", event.ItemID))
		return store.NewStoreError("review event", "append", "insert failed", MapError(err))
	}

	return nil
}

// ListByUser implements store.ReviewEventStore.
func (s *PostgresReviewEventStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + store.ReviewEventColumns + `
		FROM review_events
		WHERE user_id = $1 AND reviewed_at >= $2
		ORDER BY reviewed_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		log.Error("failed to list review events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("review event", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var events []domain.ReviewEvent
	for rows.Next() {
		event, err := store.ScanReviewEvent(rows)
		if err != nil {
			return nil, store.NewStoreError("review event", "list", "scan failed", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review event", "list", "iteration failed", MapError(err))
	}

	return events, nil
}
