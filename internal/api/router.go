package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-review/internal/api/middleware"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/service/review"
)

// RequestTimeout bounds the handling time of a single API request.
const RequestTimeout = 30 * time.Second

// RouterOption customizes NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	limiter *middleware.RateLimiter
}

// WithRateLimiter applies limiter to every authenticated route.
func WithRateLimiter(limiter *middleware.RateLimiter) RouterOption {
	return func(o *routerOptions) {
		o.limiter = limiter
	}
}

// NewRouter wires every route onto a chi router. Routes under /api require
// a Bearer token; /health is public.
func NewRouter(
	reviews review.Service,
	jwtService auth.JWTService,
	logger *slog.Logger,
	opts ...RouterOption,
) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	var options routerOptions
	for _, opt := range opts {
		opt(&options)
	}

	items := NewItemHandler(reviews, logger)
	queues := NewQueueHandler(reviews, logger)
	stats := NewStatsHandler(reviews, logger)
	practice := NewPracticeHandler(reviews, logger)
	sessions := NewSessionHandler(reviews, logger)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(RequestTimeout))
		r.Use(authMiddleware.Authenticate)
		if options.limiter != nil {
			r.Use(options.limiter.Limit)
		}

		r.Route("/items", func(r chi.Router) {
			r.Post("/", items.CreateItem)
			r.Delete("/{id}", items.DeleteItem)
			r.Post("/{id}/ratings", items.SubmitRating)
			r.Post("/{id}/postpone", items.Postpone)
		})

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", queues.GetQueue)
			r.Get("/counts", queues.GetCounts)
			r.Get("/forecast", queues.GetForecast)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/streak", stats.GetStreak)
			r.Get("/concepts", stats.GetConcepts)
			r.Get("/modules", stats.GetModules)
			r.Get("/timeline", stats.GetTimeline)
			r.Get("/summary", stats.GetSummary)
			r.Get("/weak", stats.GetWeakItems)
		})

		r.Route("/practice", func(r chi.Router) {
			r.Post("/sample", practice.Sample)
			r.Post("/score", practice.Score)
			r.Post("/targeted", practice.Targeted)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessions.ListSessions)
			r.Post("/", sessions.StartSession)
			r.Post("/{id}/complete", sessions.CompleteSession)
		})
	})

	return r
}
