package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// PostgresReviewItemStore implements store.ReviewItemStore on PostgreSQL.
type PostgresReviewItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewItemStore creates a review item store over db, which may
// be a *sql.DB or a *sql.Tx. If logger is nil, the default logger is used.
func NewPostgresReviewItemStore(db store.DBTX, logger *slog.Logger) *PostgresReviewItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_item_store")),
	}
}

var _ store.ReviewItemStore = (*PostgresReviewItemStore)(nil)

// WithTx implements store.ReviewItemStore.
func (s *PostgresReviewItemStore) WithTx(tx *sql.Tx) store.ReviewItemStore {
	return &PostgresReviewItemStore{db: tx, logger: s.logger}
}

// Create implements store.ReviewItemStore.
func (s *PostgresReviewItemStore) Create(ctx context.Context, row *store.ReviewRow) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateRow(row); err != nil {
		log.Warn("review item validation failed during create", slog.String("error", err.Error()))
		return err
	}

	row.Version = 1
	query := `
		INSERT INTO review_items (` + store.ReviewItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(ctx, query,
		row.ID,
		row.UserID,
		row.ItemType,
		row.ContentID,
		row.Concept,
		row.ModuleID,
		row.SRSDue,
		row.SRSInterval,
		row.SRSEase,
		row.SRSReps,
		row.SRSLapses,
		row.TotalReviews,
		row.CorrectReviews,
		row.AverageRecallTimeSeconds,
		row.LastReviewedAt,
		row.Version,
		row.CreatedAt,
		row.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("review item already exists",
				slog.String("user_id", row.UserID.String()),
				slog.String("content_id", row.ContentID),
				slog.String("item_type", row.ItemType))
			return fmt.Errorf("%w: %s %s", store.ErrReviewItemExists, row.ItemType, row.ContentID)
		}
		log.Error("failed to create review item",
			slog.String("error", err.Error()),
			slog.String("item_id", row.ID.String()))
		return store.NewStoreError("review item", "create", "insert failed", MapError(err))
	}

	log.Debug("review item created",
		slog.String("item_id", row.ID.String()),
		slog.String("item_type", row.ItemType))
	return nil
}

// Get implements store.ReviewItemStore.
func (s *PostgresReviewItemStore) Get(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error) {
	return s.get(ctx, userID, id, false)
}

// GetForUpdate implements store.ReviewItemStore. The row stays locked until
// the surrounding transaction ends.
func (s *PostgresReviewItemStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error) {
	return s.get(ctx, userID, id, true)
}

func (s *PostgresReviewItemStore) get(ctx context.Context, userID, id uuid.UUID, lock bool) (*store.ReviewRow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.ReviewItemColumns + ` FROM review_items WHERE id = $1 AND user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	row, err := store.ScanReviewRow(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review item not found", slog.String("item_id", id.String()))
			return nil, store.ErrReviewItemNotFound
		}
		log.Error("failed to get review item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, store.NewStoreError("review item", "get", "query failed", MapError(err))
	}

	return row, nil
}

// Update implements store.ReviewItemStore.
func (s *PostgresReviewItemStore) Update(ctx context.Context, row *store.ReviewRow) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.ValidateRow(row); err != nil {
		return err
	}

	updatedAt := time.Now().UTC()
	query := `
		UPDATE review_items
		SET item_type = $1, concept = $2, module_id = $3,
			srs_due = $4, srs_interval = $5, srs_ease = $6, srs_reps = $7, srs_lapses = $8,
			total_reviews = $9, correct_reviews = $10, average_recall_time_seconds = $11,
			last_reviewed_at = $12, updated_at = $13, version = version + 1
		WHERE id = $14 AND user_id = $15 AND version = $16
	`
	result, err := s.db.ExecContext(ctx, query,
		row.ItemType,
		row.Concept,
		row.ModuleID,
		row.SRSDue,
		row.SRSInterval,
		row.SRSEase,
		row.SRSReps,
		row.SRSLapses,
		row.TotalReviews,
		row.CorrectReviews,
		row.AverageRecallTimeSeconds,
		row.LastReviewedAt,
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

	if err := CheckRowsAffected(result, "review item"); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return s.classifyMissedUpdate(ctx, row)
	}

	row.Version++
	row.UpdatedAt = updatedAt
	return nil
}

// classifyMissedUpdate tells a deleted row apart from a stale version after
// an update matched nothing.
func (s *PostgresReviewItemStore) classifyMissedUpdate(ctx context.Context, row *store.ReviewRow) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var current int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM review_items WHERE id = $1 AND user_id = $2`,
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

// Delete implements store.ReviewItemStore. Review events go with the item
// through the foreign key's ON DELETE CASCADE.
func (s *PostgresReviewItemStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM review_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete review item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return store.NewStoreError("review item", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, "review item"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrReviewItemNotFound
		}
		return err
	}

	log.Debug("review item deleted", slog.String("item_id", id.String()))
	return nil
}

// ListByUser implements store.ReviewItemStore.
func (s *PostgresReviewItemStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ReviewItemFilter,
) ([]*store.ReviewRow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + store.ReviewItemColumns + ` FROM review_items WHERE user_id = $1`)
	args := []any{userID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		sb.WriteString(` AND item_type = $` + strconv.Itoa(len(args)))
	}
	if !filter.DueBefore.IsZero() {
		args = append(args, filter.DueBefore.UTC())
		sb.WriteString(` AND srs_due <= $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(` ORDER BY srs_due ASC, id ASC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list review items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
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

	log.Debug("review items listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(result)))
	return result, nil
}
