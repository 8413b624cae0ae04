//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/migrate"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewItemLifecycle_Integration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{URL: dbURL}, nil)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, migrate.NewRunner(Migrations(), nil).Run(ctx, db, migrate.CommandUp))

	items := NewPostgresReviewItemStore(db, nil)
	events := NewPostgresReviewEventStore(db, nil)

	now := time.Now().UTC().Truncate(time.Microsecond)
	state, err := domain.NewReviewState("new", domain.ItemTypeQuestion, "vpc", "networking", 0, now)
	require.NoError(t, err)
	row := store.NewReviewRow(uuid.New(), "q-"+uuid.NewString(), state, now)
	require.NoError(t, items.Create(ctx, row))
	defer func() { _ = items.Delete(ctx, row.UserID, row.ID) }()

	err = items.Create(ctx, store.NewReviewRow(row.UserID, row.ContentID, state, now))
	assert.ErrorIs(t, err, store.ErrReviewItemExists)

	stale := *row
	row.SRSInterval = 1
	require.NoError(t, items.Update(ctx, row))
	assert.ErrorIs(t, items.Update(ctx, &stale), store.ErrConflict)

	got, err := items.Get(ctx, row.UserID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.True(t, got.SRSDue.Equal(now))

	event, err := domain.NewReviewEvent(row.UserID, store.ToState(stale), store.ToState(*got), domain.RatingGood, 4, now)
	require.NoError(t, err)
	require.NoError(t, events.Append(ctx, event))

	require.NoError(t, items.Delete(ctx, row.UserID, row.ID))
	remaining, err := events.ListByUser(ctx, row.UserID, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, remaining, "events cascade with their item")
}
