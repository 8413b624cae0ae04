package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/phrazzld/scry-review/internal/platform/sqlite"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/phrazzld/scry-review/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sqlite.MapError(nil))
	assert.ErrorIs(t, sqlite.MapError(sql.ErrNoRows), store.ErrNotFound)

	plain := errors.New("plain")
	assert.Equal(t, plain, sqlite.MapError(plain))

	db := testdb.OpenSQLite(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO questions (id, domain, difficulty) VALUES ('q1', 'networking', 'impossible')`)
	require.Error(t, err)
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrInvalidEntity)
	assert.False(t, sqlite.IsUniqueViolation(err))

	_, err = db.ExecContext(ctx,
		`INSERT INTO questions (id, domain, difficulty) VALUES ('q1', 'networking', 'easy')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO questions (id, domain, difficulty) VALUES ('q1', 'networking', 'easy')`)
	require.Error(t, err)
	assert.True(t, sqlite.IsUniqueViolation(err))
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrDuplicate)
}

func TestDSN(t *testing.T) {
	t.Parallel()

	assert.Contains(t, sqlite.DSN("/tmp/review.db"), "/tmp/review.db?_pragma=foreign_keys(1)")
	assert.Contains(t, sqlite.DSN("file:review.db?mode=rwc"), "file:review.db?mode=rwc&_pragma=foreign_keys(1)")
	assert.Contains(t, sqlite.DSN("review.db"), "_time_format=sqlite")
}
