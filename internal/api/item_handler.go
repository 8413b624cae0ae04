package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/review"
)

// ItemHandler handles review item lifecycle and rating requests.
type ItemHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(reviews review.Service, logger *slog.Logger) *ItemHandler {
	if reviews == nil {
		panic("review service cannot be nil for ItemHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ItemHandler")
	}

	return &ItemHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "item_handler")),
	}
}

// CreateItem handles POST /items requests.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.reviews.CreateItem(r.Context(), userID, review.CreateItemRequest{
		ContentID: req.ContentID,
		Type:      domain.ItemType(req.Type),
		Concept:   req.Concept,
		ModuleID:  req.ModuleID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create review item")
		return
	}

	log.Debug("review item created", slog.String("item_id", state.ItemID))
	shared.RespondWithJSON(w, r, http.StatusCreated, state)
}

// DeleteItem handles DELETE /items/{id} requests.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.reviews.DeleteItem(r.Context(), userID, itemID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete review item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitRating handles POST /items/{id}/ratings requests. It returns the new
// review state together with the recorded event.
func (h *ItemHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.reviews.SubmitRating(r.Context(), userID, itemID, review.RatingRequest{
		Rating:           domain.Rating(req.Rating),
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit rating")
		return
	}

	log.Debug("rating submitted",
		slog.String("item_id", itemID.String()),
		slog.String("rating", req.Rating),
		slog.Time("due_at", result.State.DueAt))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Postpone handles POST /items/{id}/postpone requests.
func (h *ItemHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PostponeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.reviews.Postpone(r.Context(), userID, itemID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone review item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}
