package api

import (
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/queue"
)

// CreateItemRequest defines the payload for introducing a review item.
type CreateItemRequest struct {
	ContentID string `json:"content_id" validate:"required,max=255"`
	Type      string `json:"type"       validate:"required,oneof=flashcard question"`
	Concept   string `json:"concept"    validate:"required,max=255"`
	ModuleID  string `json:"module_id"  validate:"omitempty,max=255"`
}

// SubmitRatingRequest defines the payload for rating a review.
type SubmitRatingRequest struct {
	Rating           string  `json:"rating"             validate:"required,oneof=again hard good easy"`
	TimeSpentSeconds float64 `json:"time_spent_seconds" validate:"gte=0"`
}

// PostponeRequest defines the payload for postponing an item.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=365"`
}

// SampleRequest defines the payload for drawing a practice set.
type SampleRequest struct {
	TargetCount     int                      `json:"target_count"     validate:"gte=0,lte=500"`
	DomainWeights   map[string]float64       `json:"domain_weights"   validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	Curve           string                   `json:"curve"            validate:"omitempty,oneof=diagnostic foundation intermediate advanced pre_exam final_challenge"`
	DifficultyCurve practice.DifficultyCurve `json:"difficulty_curve" validate:"omitempty,dive,gte=0"`
}

// AnswerRequest is one graded answer of a mock exam.
type AnswerRequest struct {
	ItemID  string `json:"item_id" validate:"required"`
	Correct bool   `json:"correct"`
}

// ScoreRequest defines the payload for scoring a mock exam.
type ScoreRequest struct {
	Answers      []AnswerRequest `json:"answers"       validate:"required,min=1,dive"`
	PassingScore float64         `json:"passing_score" validate:"gte=0,lte=100"`
}

// TargetedPracticeRequest defines the payload for a module-targeted
// practice set.
type TargetedPracticeRequest struct {
	ModuleID       string   `json:"module_id"         validate:"omitempty,max=255"`
	PrimaryDomain  string   `json:"primary_domain"    validate:"required,max=255"`
	RequiredTags   []string `json:"required_tags"     validate:"omitempty,dive,required"`
	OptionalTags   []string `json:"optional_tags"     validate:"omitempty,dive,required"`
	MinQuestions   int      `json:"min_questions"     validate:"gte=0,lte=500"`
	IdealQuestions int      `json:"ideal_questions"   validate:"gte=0,lte=500"`
	Fallback       string   `json:"fallback_strategy" validate:"omitempty,oneof=expand-domain reduce-specificity mixed-content"`

	DomainWeights   map[string]float64       `json:"domain_weights"   validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	Curve           string                   `json:"curve"            validate:"omitempty,oneof=diagnostic foundation intermediate advanced pre_exam final_challenge"`
	DifficultyCurve practice.DifficultyCurve `json:"difficulty_curve" validate:"omitempty,dive,gte=0"`
}

// StartSessionRequest defines the payload for opening a review session.
type StartSessionRequest struct {
	SessionType   string `json:"session_type"   validate:"required,oneof=flashcards questions mixed"`
	TargetMinutes int    `json:"target_minutes" validate:"gte=0,lte=600"`
}

// CompleteSessionRequest defines the payload for closing a review session.
type CompleteSessionRequest struct {
	FlashcardsReviewed int `json:"flashcards_reviewed" validate:"gte=0"`
	QuestionsReviewed  int `json:"questions_reviewed"  validate:"gte=0"`
	CorrectCount       int `json:"correct_count"       validate:"gte=0,ltefield=TotalCount"`
	TotalCount         int `json:"total_count"         validate:"gte=0"`
	DurationSeconds    int `json:"duration_seconds"    validate:"gte=0"`
}

// ForecastResponse reports upcoming due items per day.
type ForecastResponse struct {
	Days []queue.ForecastDay `json:"days"`
}

// ConceptsResponse lists mastery per concept.
type ConceptsResponse struct {
	Concepts []analytics.ConceptMastery `json:"concepts"`
}

// ModulesResponse lists progress per module.
type ModulesResponse struct {
	Modules []analytics.ModuleProgress `json:"modules"`
}

// TimelineResponse lists daily retention points.
type TimelineResponse struct {
	Points []analytics.TimelinePoint `json:"points"`
}

// SampleResponse is a drawn practice set.
type SampleResponse struct {
	Items []practice.Item `json:"items"`
}

// WeakItemsResponse lists the weakest reviewed items.
type WeakItemsResponse struct {
	Items []analytics.WeakItem `json:"items"`
}

// SessionsResponse lists review sessions, newest first.
type SessionsResponse struct {
	Sessions []domain.ReviewSession `json:"sessions"`
}
