package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/review"
)

// SessionHandler handles review session lifecycle requests.
type SessionHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(reviews review.Service, logger *slog.Logger) *SessionHandler {
	if reviews == nil {
		panic("review service cannot be nil for SessionHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /sessions requests.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.reviews.StartSession(r.Context(), userID, review.StartSessionRequest{
		Type:          domain.SessionType(req.SessionType),
		TargetMinutes: req.TargetMinutes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}

	log.Debug("review session started", slog.String("session_id", session.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// CompleteSession handles POST /sessions/{id}/complete requests.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.reviews.CompleteSession(r.Context(), userID, sessionID, domain.SessionResult{
		FlashcardsReviewed: req.FlashcardsReviewed,
		QuestionsReviewed:  req.QuestionsReviewed,
		CorrectCount:       req.CorrectCount,
		TotalCount:         req.TotalCount,
		DurationSeconds:    req.DurationSeconds,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete review session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// ListSessions handles GET /sessions?limit= requests.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", review.DefaultSessionLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sessions, err := h.reviews.ListSessions(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list review sessions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionsResponse{Sessions: sessions})
}
