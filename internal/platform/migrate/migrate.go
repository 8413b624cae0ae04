// Package migrate applies the embedded goose migrations of a storage
// dialect. goose keeps its settings in package globals, so every run holds a
// process-wide lock while it configures and executes goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

// TableName is the goose version table used by every dialect.
const TableName = "schema_migrations"

// Supported commands.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandReset   = "reset"
	CommandStatus  = "status"
	CommandVersion = "version"
)

// Commands lists the accepted commands in help order.
var Commands = []string{CommandUp, CommandDown, CommandReset, CommandStatus, CommandVersion}

var gooseMu sync.Mutex

// Source describes one dialect's migrations.
type Source struct {
	// Dialect is the goose dialect name, e.g. "postgres" or "sqlite3".
	Dialect string
	// FS holds the .sql files at its root.
	FS fs.FS
}

// Runner executes goose commands for a Source.
type Runner struct {
	source Source
	logger *slog.Logger
}

// NewRunner creates a Runner. If logger is nil the default logger is used.
func NewRunner(source Source, logger *slog.Logger) *Runner {
	if source.FS == nil {
		panic("migration filesystem cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source: source,
		logger: logger.With(
			slog.String("component", "migrations"),
			slog.String("dialect", source.Dialect),
		),
	}
}

// Run executes command against db.
func (r *Runner) Run(ctx context.Context, db *sql.DB, command string) error {
	log := r.logger.With(slog.String("command", command))

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(r.source.FS)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(TableName)
	if err := goose.SetDialect(r.source.Dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	log.Info("starting migration operation")

	var err error
	switch command {
	case CommandUp:
		err = goose.UpContext(ctx, db, ".")
	case CommandDown:
		err = goose.DownContext(ctx, db, ".")
	case CommandReset:
		err = goose.ResetContext(ctx, db, ".")
	case CommandStatus:
		err = goose.StatusContext(ctx, db, ".")
	case CommandVersion:
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			log.Info("current database migration version", slog.Int64("version", version))
		}
	default:
		return fmt.Errorf("unknown migration command: %s (expected one of %v)", command, Commands)
	}

	if err != nil {
		log.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration operation completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger. It does not exit; the failing goose call
// returns an error that Run reports.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
