package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/review"
)

// DefaultForecastDays is used when the forecast request names no window.
const DefaultForecastDays = 7

// QueueHandler serves session queues and due counts.
type QueueHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(reviews review.Service, logger *slog.Logger) *QueueHandler {
	if reviews == nil {
		panic("review service cannot be nil for QueueHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for QueueHandler")
	}

	return &QueueHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "queue_handler")),
	}
}

// GetQueue handles GET /queue?mode=&max_items=&max_minutes= requests.
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	mode := queue.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = queue.ModeMixed
	}
	maxItems, err := queryInt(r, "max_items", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	maxMinutes, err := queryInt(r, "max_minutes", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.reviews.BuildQueue(r.Context(), userID, mode, queue.Budget{
		MaxItems:   maxItems,
		MaxMinutes: maxMinutes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build review queue")
		return
	}

	log.Debug("review queue built",
		slog.String("mode", string(mode)),
		slog.Int("items", len(session.Items)))
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// GetCounts handles GET /queue/counts requests.
func (h *QueueHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	counts, err := h.reviews.DueCounts(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count due items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}

// GetForecast handles GET /queue/forecast?days= requests.
func (h *QueueHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	days, err := queryInt(r, "days", DefaultForecastDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	forecast, err := h.reviews.Forecast(r.Context(), userID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to forecast due items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ForecastResponse{Days: forecast})
}
