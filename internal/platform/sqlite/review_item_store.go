package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// ReviewItemStore implements store.ReviewItemStore on SQLite.
type ReviewItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewItemStore creates a review item store over db, which may be a
// *sql.DB or a *sql.Tx. If logger is nil, the default logger is used.
func NewReviewItemStore(db store.DBTX, logger *slog.Logger) *ReviewItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_item_store")),
	}
}

var _ store.ReviewItemStore = (*ReviewItemStore)(nil)

// WithTx implements store.ReviewItemStore.
func (s *ReviewItemStore) WithTx(tx *sql.Tx) store.ReviewItemStore {
	return &ReviewItemStore{db: tx, logger: s.logger}
}

// nullTime normalizes a nullable timestamp to UTC before it is written.
func nullTime(t sql.NullTime) sql.NullTime {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}

// Create implements store.ReviewItemStore.
func (s *ReviewItemStore) Create(ctx context.Context, row *store.ReviewRow) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateRow(row); err != nil {
		return err
	}

	row.Version = 1
	query := `INSERT INTO review_items (` + store.ReviewItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		row.ID,
		row.UserID,
		row.ItemType,
		row.ContentID,
		row.Concept,
		row.ModuleID,
		row.SRSDue.UTC(),
		row.SRSInterval,
		row.SRSEase,
		row.SRSReps,
		row.SRSLapses,
		row.TotalReviews,
		row.CorrectReviews,
		row.AverageRecallTimeSeconds,
		nullTime(row.LastReviewedAt),
		row.Version,
		row.CreatedAt.UTC(),
		row.UpdatedAt.UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", store.ErrReviewItemExists, row.ItemType, row.ContentID)
		}
		log.Error("failed to create review item",
			slog.String("error", err.Error()),
			slog.String("item_id", row.ID.String()))
		return store.NewStoreError("review item", "create", "insert failed", MapError(err))
	}

	return nil
}

// Get implements store.ReviewItemStore.
func (s *ReviewItemStore) Get(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.ReviewItemColumns + ` FROM review_items WHERE id = ? AND user_id = ?`
	row, err := store.ScanReviewRow(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewItemNotFound
		}
		log.Error("failed to get review item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, store.NewStoreError("review item", "get", "query failed", MapError(err))
	}
	return row, nil
}

// GetForUpdate implements store.ReviewItemStore. SQLite serializes writers
// at the database level, so this is a plain read; Update's version check
// catches any write that slipped in between.
func (s *ReviewItemStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error) {
	return s.Get(ctx, userID, id)
}

// Update implements store.ReviewItemStore.
func (s *ReviewItemStore) Update(ctx context.Context, row *store.ReviewRow) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateRow(row); err != nil {
		return err
	}

	updatedAt := time.Now().UTC()
	query := `UPDATE review_items
		SET item_type = ?, concept = ?, module_id = ?,
			srs_due = ?, srs_interval = ?, srs_ease = ?, srs_reps = ?, srs_lapses = ?,
			total_reviews = ?, correct_reviews = ?, average_recall_time_seconds = ?,
			last_reviewed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND user_id = ? AND version = ?`
	result, err := s.db.ExecContext(ctx, query,
		row.ItemType,
		row.Concept,
		row.ModuleID,
		row.SRSDue.UTC(),
		row.SRSInterval,
		row.SRSEase,
		row.SRSReps,
		row.SRSLapses,
		row.TotalReviews,
		row.CorrectReviews,
		row.AverageRecallTimeSeconds,
		nullTime(row.LastReviewedAt),
		updatedAt,
		row.ID,
		row.UserID,
		row.Version,
	)
	if err != nil {
		log.Error("failed to update review item",
			slog.String("error", err.Error()),
			slog.String("item_id", row.ID.String()))
		return store.NewStoreError("review item", "update", "update failed", MapError(err))
	}

	if err := checkRowsAffected(result); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		var current int64
		err := s.db.QueryRowContext(ctx,
			`SELECT version FROM review_items WHERE id = ? AND user_id = ?`,
			row.ID, row.UserID,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrReviewItemNotFound
		}
		if err != nil {
			return store.NewStoreError("review item", "update", "version check failed", MapError(err))
		}
		log.Warn("review item version conflict",
			slog.String("item_id", row.ID.String()),
			slog.Int64("expected_version", row.Version),
			slog.Int64("current_version", current))
		return fmt.Errorf("%w: review item %s at version %d, expected %d",
			store.ErrConflict, row.ID, current, row.Version)
	}

	row.Version++
	row.UpdatedAt = updatedAt
	return nil
}

// Delete implements store.ReviewItemStore.
func (s *ReviewItemStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM review_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return store.NewStoreError("review item", "delete", "delete failed", MapError(err))
	}
	if err := checkRowsAffected(result); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrReviewItemNotFound
		}
		return err
	}
	return nil
}

// ListByUser implements store.ReviewItemStore.
func (s *ReviewItemStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ReviewItemFilter,
) ([]*store.ReviewRow, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + store.ReviewItemColumns + ` FROM review_items WHERE user_id = ?`)
	args := []any{userID}

	if filter.Type != "" {
		sb.WriteString(` AND item_type = ?`)
		args = append(args, string(filter.Type))
	}
	if !filter.DueBefore.IsZero() {
		sb.WriteString(` AND srs_due <= ?`)
		args = append(args, filter.DueBefore.UTC())
	}
	sb.WriteString(` ORDER BY srs_due ASC, id ASC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, store.NewStoreError("review item", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var result []*store.ReviewRow
	for rows.Next() {
		row, err := store.ScanReviewRow(rows)
		if err != nil {
			return nil, store.NewStoreError("review item", "list", "scan failed", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review item", "list", "iteration failed", MapError(err))
	}
	return result, nil
}
