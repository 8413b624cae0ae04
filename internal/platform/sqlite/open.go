package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/platform/migrate"
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// connectionParams enables foreign keys so review events cascade with their
// item, waits on locks instead of failing at once, and writes timestamps in
// a sortable layout that reads back as time.Time.
var connectionParams = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_time_format=sqlite",
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the goose source for the SQLite schema.
func Migrations() migrate.Source {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic("sqlite: embedded migrations missing: " + err.Error())
	}
	return migrate.Source{Dialect: "sqlite3", FS: sub}
}

// DSN appends the connection parameters to a file path or file: URI.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(connectionParams, "&")
}

// Open opens the SQLite database at cfg.URL and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open(DriverName, DSN(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("driver", DriverName),
		slog.String("path", cfg.URL))
	return db, nil
}
