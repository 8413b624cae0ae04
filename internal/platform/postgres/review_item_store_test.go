package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewItemColumnNames = []string{
	"id", "user_id", "item_type", "content_id", "concept", "module_id",
	"srs_due", "srs_interval", "srs_ease", "srs_reps", "srs_lapses",
	"total_reviews", "correct_reviews", "average_recall_time_seconds", "last_reviewed_at",
	"version", "created_at", "updated_at",
}

func newMockItemStore(t *testing.T) (*PostgresReviewItemStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresReviewItemStore(db, nil), mock
}

func testRow(t *testing.T) *store.ReviewRow {
	t.Helper()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	state, err := domain.NewReviewState("new", domain.ItemTypeFlashcard, "iam", "security", domain.DefaultEase, now)
	require.NoError(t, err)
	return store.NewReviewRow(uuid.New(), "card-1", state, now)
}

func mockRows(row *store.ReviewRow) *sqlmock.Rows {
	return sqlmock.NewRows(reviewItemColumnNames).AddRow(
		row.ID.String(), row.UserID.String(), row.ItemType, row.ContentID, row.Concept, row.ModuleID.String,
		row.SRSDue, row.SRSInterval, row.SRSEase, row.SRSReps, row.SRSLapses,
		row.TotalReviews, row.CorrectReviews, row.AverageRecallTimeSeconds, nil,
		row.Version, row.CreatedAt, row.UpdatedAt,
	)
}

func TestNewPostgresReviewItemStore(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresReviewItemStore(nil, nil) })

	s := NewPostgresReviewItemStore(&sql.DB{}, nil)
	assert.NotNil(t, s.logger)
}

func TestPostgresReviewItemStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("inserts with version 1", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		row := testRow(t)
		row.Version = 7

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO review_items")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), row))
		assert.Equal(t, int64(1), row.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate content", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO review_items")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := s.Create(context.Background(), testRow(t))
		assert.ErrorIs(t, err, store.ErrReviewItemExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("rejects incomplete rows before touching the database", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		row := testRow(t)
		row.ContentID = ""

		err := s.Create(context.Background(), row)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresReviewItemStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		row := testRow(t)
		row.Version = 3

		mock.ExpectQuery(regexp.QuoteMeta("FROM review_items WHERE id = $1 AND user_id = $2")).
			WithArgs(row.ID, row.UserID).
			WillReturnRows(mockRows(row))

		got, err := s.Get(context.Background(), row.UserID, row.ID)
		require.NoError(t, err)
		assert.Equal(t, row.ID, got.ID)
		assert.Equal(t, "security", got.ModuleID.String)
		assert.Equal(t, int64(3), got.Version)
		assert.False(t, got.LastReviewedAt.Valid)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM review_items")).
			WillReturnRows(sqlmock.NewRows(reviewItemColumnNames))

		_, err := s.Get(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("for update locks the row", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		row := testRow(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND user_id = $2 FOR UPDATE")).
			WillReturnRows(mockRows(row))

		_, err := s.GetForUpdate(context.Background(), row.UserID, row.ID)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresReviewItemStore_Update(t *testing.T) {
	t.Parallel()

	updateSQL := regexp.QuoteMeta("WHERE id = $14 AND user_id = $15 AND version = $16")
	versionSQL := regexp.QuoteMeta("SELECT version FROM review_items WHERE id = $1 AND user_id = $2")

	t.Run("increments version", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		row := testRow(t)
		row.Version = 2

		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), row))
		assert.Equal(t, int64(3), row.Version)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		row := testRow(t)
		row.Version = 2

		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(versionSQL).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(3)))

		err := s.Update(context.Background(), row)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.Equal(t, int64(2), row.Version)
	})

	t.Run("deleted row is not found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)

		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(versionSQL).WillReturnRows(sqlmock.NewRows([]string{"version"}))

		err := s.Update(context.Background(), testRow(t))
		assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
	})

	t.Run("serialization failure conflicts", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)

		mock.ExpectExec(updateSQL).WillReturnError(&pgconn.PgError{Code: serializationFailureCode})

		err := s.Update(context.Background(), testRow(t))
		assert.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestPostgresReviewItemStore_Delete(t *testing.T) {
	t.Parallel()

	deleteSQL := regexp.QuoteMeta("DELETE FROM review_items WHERE id = $1 AND user_id = $2")

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		mock.ExpectExec(deleteSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), uuid.New(), uuid.New()))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockItemStore(t)
		mock.ExpectExec(deleteSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Delete(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
	})
}

func TestPostgresReviewItemStore_ListByUser(t *testing.T) {
	t.Parallel()

	s, mock := newMockItemStore(t)
	row := testRow(t)
	cutoff := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE user_id = $1 AND item_type = $2 AND srs_due <= $3 ORDER BY srs_due ASC, id ASC")).
		WithArgs(row.UserID, "flashcard", cutoff).
		WillReturnRows(mockRows(row))

	rows, err := s.ListByUser(context.Background(), row.UserID, store.ReviewItemFilter{
		Type:      domain.ItemTypeFlashcard,
		DueBefore: cutoff,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row.ContentID, rows[0].ContentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
