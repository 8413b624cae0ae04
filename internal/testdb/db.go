package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/platform/migrate"
	"github.com/phrazzld/scry-review/internal/platform/postgres"
	"github.com/phrazzld/scry-review/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns DATABASE_URL, falling back to SCRY_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("SCRY_TEST_DB_URL")
}

// OpenSQLite creates a fresh SQLite database, applies every migration and
// closes it when the test ends.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	path := filepath.Join(t.TempDir(), "review.db")
	db, err := sqlite.Open(ctx, config.DatabaseConfig{Driver: "sqlite", URL: path}, nil)
	require.NoError(t, err, "Failed to open SQLite test database")
	t.Cleanup(func() { _ = db.Close() })

	err = migrate.NewRunner(sqlite.Migrations(), nil).Run(ctx, db, migrate.CommandUp)
	require.NoError(t, err, "Failed to run migrations")

	return db
}

// OpenPostgres connects to the integration database and applies every
// migration. The test is skipped when no database URL is configured.
func OpenPostgres(t testing.TB) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{Driver: "postgres", URL: dbURL}, nil)
	require.NoError(t, err, "Failed to connect to PostgreSQL test database")
	t.Cleanup(func() { _ = db.Close() })

	err = migrate.NewRunner(postgres.Migrations(), nil).Run(ctx, db, migrate.CommandUp)
	require.NoError(t, err, "Failed to run migrations")

	return db
}

// WithTx executes fn within a transaction that is always rolled back, which
// keeps tests against a shared database isolated.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
