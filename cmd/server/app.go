package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-review/internal/api"
	"github.com/phrazzld/scry-review/internal/api/middleware"
	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/domain/streak"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/migrate"
	"github.com/phrazzld/scry-review/internal/platform/postgres"
	"github.com/phrazzld/scry-review/internal/platform/sqlite"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/service/review"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/phrazzld/scry-review/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// dispatcher delivers review events to handlers off the request path
	dispatcher *task.EventDispatcher

	reviews    review.Service
	jwtService auth.JWTService
}

// storage bundles the stores of one database driver.
type storage struct {
	items     store.ReviewItemStore
	events    store.ReviewEventStore
	questions store.QuestionPoolStore
	sessions  store.ReviewSessionStore
}

// openDatabase connects to the configured driver.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(ctx, cfg, logger)
	case "sqlite":
		return sqlite.Open(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newStorage builds the stores for driver on top of db.
func newStorage(driver string, db *sql.DB, logger *slog.Logger) (storage, error) {
	switch driver {
	case "postgres":
		return storage{
			items:     postgres.NewPostgresReviewItemStore(db, logger),
			events:    postgres.NewPostgresReviewEventStore(db, logger),
			questions: postgres.NewPostgresQuestionStore(db, logger),
			sessions:  postgres.NewPostgresReviewSessionStore(db, logger),
		}, nil
	case "sqlite":
		return storage{
			items:     sqlite.NewReviewItemStore(db, logger),
			events:    sqlite.NewReviewEventStore(db, logger),
			questions: sqlite.NewQuestionStore(db, logger),
			sessions:  sqlite.NewReviewSessionStore(db, logger),
		}, nil
	default:
		return storage{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// migrationsFor returns the embedded migrations of driver.
func migrationsFor(driver string) (migrate.Source, error) {
	switch driver {
	case "postgres":
		return postgres.Migrations(), nil
	case "sqlite":
		return sqlite.Migrations(), nil
	default:
		return migrate.Source{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// newApplication opens the database and wires the engine, the review
// service and the token service from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid engine timezone %q: %w", cfg.Engine.Timezone, err)
	}

	analyzer, err := analytics.NewAnalyzer(cfg.Engine.Mastery, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid mastery thresholds: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st, err := newStorage(cfg.Database.Driver, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	dispatcher := task.NewEventDispatcher(events.NewLoggingHandler(logger), task.DefaultDispatcherConfig(), logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(dispatcher)

	reviews := review.NewService(review.Deps{
		DB:        db,
		Items:     st.items,
		Events:    st.events,
		Questions: st.questions,
		Sessions:  st.sessions,
		Scheduler: srs.NewServiceWithParams(srs.NewParams(cfg.Engine.SRS)),
		Analyzer:  analyzer,
		Queue: queue.NewBuilder(queue.Durations{
			Flashcard: time.Duration(cfg.Engine.Queue.FlashcardSeconds) * time.Second,
			Question:  time.Duration(cfg.Engine.Queue.QuestionSeconds) * time.Second,
		}),
		Streaks: streak.NewTracker(loc),
		Emitter: emitter,
		Logger:  logger,
		Options: review.Options{
			DefaultMaxItems: cfg.Engine.Queue.DefaultMaxItems,
			DefaultCurve:    cfg.Engine.Practice.DefaultCurve,
			PassingScore:    cfg.Engine.Practice.PassingScore,
		},
	})

	return &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		dispatcher: dispatcher,
		reviews:    reviews,
		jwtService: jwtService,
	}, nil
}

// handler returns the HTTP handler serving every route.
func (app *application) handler() http.Handler {
	var opts []api.RouterOption
	if limit := app.config.Server.RateLimit; limit.RequestsPerSecond > 0 {
		opts = append(opts, api.WithRateLimiter(middleware.NewRateLimiter(limit.RequestsPerSecond, limit.Burst)))
	}
	return api.NewRouter(app.reviews, app.jwtService, app.logger, opts...)
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		if err := app.dispatcher.Close(ctx); err != nil {
			app.logger.Warn("review events left undelivered", slog.String("error", err.Error()))
		}
		cancel()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
