package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/review"
)

// DefaultTimelineDays is used when the timeline request names no window.
const DefaultTimelineDays = 30

// StatsHandler serves streak and mastery analytics.
type StatsHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(reviews review.Service, logger *slog.Logger) *StatsHandler {
	if reviews == nil {
		panic("review service cannot be nil for StatsHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for StatsHandler")
	}

	return &StatsHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStreak handles GET /stats/streak requests.
func (h *StatsHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	streaks, err := h.reviews.Streak(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute streak")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, streaks)
}

// GetConcepts handles GET /stats/concepts requests.
func (h *StatsHandler) GetConcepts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	concepts, err := h.reviews.ConceptMastery(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute concept mastery")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ConceptsResponse{Concepts: concepts})
}

// GetModules handles GET /stats/modules requests.
func (h *StatsHandler) GetModules(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	modules, err := h.reviews.ModuleProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute module progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ModulesResponse{Modules: modules})
}

// GetTimeline handles GET /stats/timeline?days= requests.
func (h *StatsHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	days, err := queryInt(r, "days", DefaultTimelineDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	points, err := h.reviews.Timeline(r.Context(), userID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute retention timeline")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TimelineResponse{Points: points})
}

// GetSummary handles GET /stats/summary requests.
func (h *StatsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	dashboard, err := h.reviews.Dashboard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute progress summary")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dashboard)
}

// GetWeakItems handles GET /stats/weak?threshold=&limit=&type= requests.
// Omitted parameters use the service defaults.
func (h *StatsHandler) GetWeakItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	threshold, err := queryFloat(r, "threshold", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.reviews.WeakItems(r.Context(), userID, review.WeakItemsRequest{
		Threshold: threshold,
		Limit:     limit,
		Type:      domain.ItemType(r.URL.Query().Get("type")),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to find weak items")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WeakItemsResponse{Items: items})
}
