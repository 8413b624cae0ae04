package sqlite

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

// ReviewEventStore implements store.ReviewEventStore on SQLite.
type ReviewEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewEventStore creates a review event store over db.
func NewReviewEventStore(db store.DBTX, logger *slog.Logger) *ReviewEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_event_store")),
	}
}

var _ store.ReviewEventStore = (*ReviewEventStore)(nil)

// WithTx implements store.ReviewEventStore.
func (s *ReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &ReviewEventStore{db: tx, logger: s.logger}
}

// Append implements store.ReviewEventStore.
func (s *ReviewEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if err := store.ValidateEvent(event); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_events (`+store.ReviewEventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append review event",
			slog.String("error", err.Error()),
			slog.String("item_id", event.ItemID))
		return store.NewStoreError("review event", "append", "insert failed", MapError(err))
	}
	return nil
}

// ListByUser implements store.ReviewEventStore.
func (s *ReviewEventStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]domain.ReviewEvent, error) {
	query := `SELECT ` + store.ReviewEventColumns + ` FROM review_events WHERE user_id = ?`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND reviewed_at >= ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY reviewed_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
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
