package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/review"
)

// PracticeHandler serves practice sets and mock exam scoring. Neither
// operation touches per-user review state.
type PracticeHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(reviews review.Service, logger *slog.Logger) *PracticeHandler {
	if reviews == nil {
		panic("review service cannot be nil for PracticeHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for PracticeHandler")
	}

	return &PracticeHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "practice_handler")),
	}
}

// Sample handles POST /practice/sample requests.
func (h *PracticeHandler) Sample(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SampleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	items, err := h.reviews.SamplePractice(r.Context(), review.SampleRequest{
		TargetCount:     req.TargetCount,
		DomainWeights:   req.DomainWeights,
		Curve:           req.Curve,
		DifficultyCurve: req.DifficultyCurve,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to sample practice set")
		return
	}

	log.Debug("practice set sampled",
		slog.Int("requested", req.TargetCount),
		slog.Int("returned", len(items)))
	shared.RespondWithJSON(w, r, http.StatusOK, SampleResponse{Items: items})
}

// Score handles POST /practice/score requests.
func (h *PracticeHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	answers := make([]review.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = review.Answer{ItemID: a.ItemID, Correct: a.Correct}
	}

	result, err := h.reviews.ScoreExam(r.Context(), review.ScoreRequest{
		Answers:      answers,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to score exam")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Targeted handles POST /practice/targeted requests. The response reports
// which fallback, if any, produced the set.
func (h *PracticeHandler) Targeted(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TargetedPracticeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.reviews.TargetPractice(r.Context(), review.TargetRequest{
		Targeting: practice.Targeting{
			ModuleID:       req.ModuleID,
			PrimaryDomain:  req.PrimaryDomain,
			RequiredTags:   req.RequiredTags,
			OptionalTags:   req.OptionalTags,
			MinQuestions:   req.MinQuestions,
			IdealQuestions: req.IdealQuestions,
			Fallback:       practice.Fallback(req.Fallback),
		},
		DomainWeights:   req.DomainWeights,
		Curve:           req.Curve,
		DifficultyCurve: req.DifficultyCurve,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build targeted practice set")
		return
	}

	log.Debug("targeted practice set built",
		slog.String("module_id", req.ModuleID),
		slog.String("match", set.Match),
		slog.Int("returned", len(set.Items)))
	shared.RespondWithJSON(w, r, http.StatusOK, set)
}
