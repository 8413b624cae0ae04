package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/api"
	"github.com/phrazzld/scry-review/internal/api/middleware"
	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/domain/streak"
	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 14, 10, 0, 0, 0, time.UTC)

type harness struct {
	server  *httptest.Server
	reviews *mocks.MockReviewService
	jwt     *mocks.MockJWTService
	userID  uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	_, log := logger.NewTestLogger(t)
	userID := uuid.New()
	h := &harness{
		reviews: &mocks.MockReviewService{},
		jwt:     mocks.NewMockJWTService(userID),
		userID:  userID,
	}
	h.server = httptest.NewServer(api.NewRouter(h.reviews, h.jwt, log))
	t.Cleanup(h.server.Close)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, h.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+h.jwt.Token)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp, err := http.Get(h.server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(shared.TraceIDHeader))
	assert.Zero(t, h.jwt.CallCount("ValidateToken"))
}

func TestAPIRequiresAuth(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp, err := http.Get(h.server.URL + "/api/queue/counts")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, h.reviews.CallCount("DueCounts"))
}

func TestCreateItem(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		var got review.CreateItemRequest
		h.reviews.CreateItemFn = func(_ context.Context, userID uuid.UUID, req review.CreateItemRequest) (*domain.ReviewState, error) {
			got = req
			state, err := domain.NewReviewState(uuid.NewString(), req.Type, req.Concept, req.ModuleID, 2.5, testNow)
			return &state, err
		}

		resp := h.do(t, http.MethodPost, "/api/items", map[string]string{
			"content_id": "card-1",
			"type":       "flashcard",
			"concept":    "tcp-handshake",
			"module_id":  "networking",
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		state := decode[domain.ReviewState](t, resp)
		assert.Equal(t, domain.ItemTypeFlashcard, state.Type)
		assert.Equal(t, "card-1", got.ContentID)
		assert.Equal(t, "networking", got.ModuleID)
		assert.Equal(t, []uuid.UUID{h.userID}, h.reviews.UserIDs("CreateItem"))
	})

	t.Run("validation rejects before service", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		resp := h.do(t, http.MethodPost, "/api/items", map[string]string{
			"content_id": "card-1",
			"type":       "essay",
			"concept":    "tcp-handshake",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[shared.ErrorResponse](t, resp)
		assert.Equal(t, "Invalid type: must be one of flashcard, question", body.Error)
		assert.Zero(t, h.reviews.CallCount("CreateItem"))
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.reviews.Err = review.NewServiceError(review.OpCreateItem, "already tracked", review.ErrItemExists)
		resp := h.do(t, http.MethodPost, "/api/items", map[string]string{
			"content_id": "card-1",
			"type":       "question",
			"concept":    "tcp-handshake",
		})

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		resp := h.do(t, http.MethodPost, "/api/items", `{"content_id":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request format", decode[shared.ErrorResponse](t, resp).Error)
	})
}

func TestSubmitRating(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()

	tests := []struct {
		name       string
		path       string
		body       any
		serviceErr error
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "success",
			path:       "/api/items/" + itemID.String() + "/ratings",
			body:       map[string]any{"rating": "good", "time_spent_seconds": 12.5},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "unknown rating",
			path:       "/api/items/" + itemID.String() + "/ratings",
			body:       map[string]any{"rating": "perfect"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid item id",
			path:       "/api/items/not-a-uuid/ratings",
			body:       map[string]any{"rating": "good"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			path:       "/api/items/" + itemID.String() + "/ratings",
			body:       map[string]any{"rating": "again"},
			serviceErr: review.NewServiceError(review.OpSubmitRating, "failed", review.ErrItemNotFound),
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
		},
		{
			name:       "concurrent update",
			path:       "/api/items/" + itemID.String() + "/ratings",
			body:       map[string]any{"rating": "hard"},
			serviceErr: review.NewServiceError(review.OpSubmitRating, "failed", review.ErrConcurrentUpdate),
			wantStatus: http.StatusConflict,
			wantCalls:  1,
		},
		{
			name:       "corrupt state",
			path:       "/api/items/" + itemID.String() + "/ratings",
			body:       map[string]any{"rating": "easy"},
			serviceErr: domain.NewPreconditionError("ease", "below floor"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCalls:  1,
		},
		{
			name:       "internal error",
			path:       "/api/items/" + itemID.String() + "/ratings",
			body:       map[string]any{"rating": "easy"},
			serviceErr: errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.reviews.SubmitRatingFn = func(_ context.Context, _, gotItem uuid.UUID, req review.RatingRequest) (*review.RatingResult, error) {
				if tt.serviceErr != nil {
					return nil, tt.serviceErr
				}
				assert.Equal(t, itemID, gotItem)
				assert.Equal(t, domain.RatingGood, req.Rating)
				assert.InDelta(t, 12.5, req.TimeSpentSeconds, 1e-9)
				return &review.RatingResult{
					State: domain.ReviewState{ItemID: gotItem.String(), IntervalDays: 1},
					Event: domain.ReviewEvent{ID: uuid.New(), Rating: req.Rating},
				}, nil
			}

			resp := h.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, h.reviews.CallCount("SubmitRating"))

			if tt.wantStatus == http.StatusOK {
				result := decode[review.RatingResult](t, resp)
				assert.Equal(t, domain.RatingGood, result.Event.Rating)
				return
			}
			body := decode[shared.ErrorResponse](t, resp)
			assert.NotEmpty(t, body.TraceID)
			assert.NotContains(t, body.Error, "connection reset")
		})
	}
}

func TestPostponeAndDelete(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	itemID := uuid.New()
	h.reviews.PostponeFn = func(_ context.Context, _, _ uuid.UUID, days int) (*domain.ReviewState, error) {
		return &domain.ReviewState{ItemID: itemID.String(), DueAt: testNow.AddDate(0, 0, days)}, nil
	}

	resp := h.do(t, http.MethodPost, "/api/items/"+itemID.String()+"/postpone", map[string]int{"days": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[domain.ReviewState](t, resp)
	assert.True(t, testNow.AddDate(0, 0, 3).Equal(state.DueAt))

	resp = h.do(t, http.MethodPost, "/api/items/"+itemID.String()+"/postpone", map[string]int{"days": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodDelete, "/api/items/"+itemID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, h.reviews.CallCount("DeleteItem"))
}

func TestQueueRoutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var gotMode queue.Mode
	var gotBudget queue.Budget
	h.reviews.BuildQueueFn = func(_ context.Context, _ uuid.UUID, mode queue.Mode, budget queue.Budget) (*queue.SessionQueue, error) {
		gotMode, gotBudget = mode, budget
		return &queue.SessionQueue{Mode: mode, Items: []queue.Entry{{ItemID: "a", Type: domain.ItemTypeFlashcard}}}, nil
	}
	h.reviews.DueCountsFn = func(context.Context, uuid.UUID) (queue.Counts, error) {
		return queue.Counts{Flashcards: 2, Questions: 1, Total: 3}, nil
	}
	var gotDays int
	h.reviews.ForecastFn = func(_ context.Context, _ uuid.UUID, days int) ([]queue.ForecastDay, error) {
		gotDays = days
		return make([]queue.ForecastDay, days), nil
	}

	resp := h.do(t, http.MethodGet, "/api/queue?mode=flashcards&max_items=5&max_minutes=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[queue.SessionQueue](t, resp)
	assert.Len(t, session.Items, 1)
	assert.Equal(t, queue.ModeFlashcards, gotMode)
	assert.Equal(t, queue.Budget{MaxItems: 5, MaxMinutes: 10}, gotBudget)

	resp = h.do(t, http.MethodGet, "/api/queue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, queue.ModeMixed, gotMode)

	resp = h.do(t, http.MethodGet, "/api/queue?max_items=lots", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/queue/counts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, queue.Counts{Flashcards: 2, Questions: 1, Total: 3}, decode[queue.Counts](t, resp))

	resp = h.do(t, http.MethodGet, "/api/queue/forecast", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.DefaultForecastDays, gotDays)
	assert.Len(t, decode[api.ForecastResponse](t, resp).Days, api.DefaultForecastDays)
}

func TestStatsRoutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.reviews.StreakFn = func(context.Context, uuid.UUID) (streak.Streaks, error) {
		return streak.Streaks{Current: 3, Longest: 9}, nil
	}
	h.reviews.ConceptMasteryFn = func(context.Context, uuid.UUID) ([]analytics.ConceptMastery, error) {
		return []analytics.ConceptMastery{{Concept: "dns", Retention: 0.9, Tier: domain.TierMastered}}, nil
	}
	h.reviews.ModuleProgressFn = func(context.Context, uuid.UUID) ([]analytics.ModuleProgress, error) {
		return []analytics.ModuleProgress{{ModuleID: "networking", TotalConcepts: 4}}, nil
	}
	var timelineDays int
	h.reviews.TimelineFn = func(_ context.Context, _ uuid.UUID, days int) ([]analytics.TimelinePoint, error) {
		timelineDays = days
		return []analytics.TimelinePoint{{Date: testNow, ItemsReviewed: 4}}, nil
	}
	h.reviews.DashboardFn = func(context.Context, uuid.UUID) (*review.Dashboard, error) {
		return &review.Dashboard{Summary: analytics.ProgressSummary{TotalItems: 12}}, nil
	}

	resp := h.do(t, http.MethodGet, "/api/stats/streak", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 9, decode[streak.Streaks](t, resp).Longest)

	resp = h.do(t, http.MethodGet, "/api/stats/concepts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	concepts := decode[api.ConceptsResponse](t, resp).Concepts
	require.Len(t, concepts, 1)
	assert.Equal(t, domain.TierMastered, concepts[0].Tier)

	resp = h.do(t, http.MethodGet, "/api/stats/modules", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "networking", decode[api.ModulesResponse](t, resp).Modules[0].ModuleID)

	resp = h.do(t, http.MethodGet, "/api/stats/timeline?days=14", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 14, timelineDays)
	assert.Len(t, decode[api.TimelineResponse](t, resp).Points, 1)

	resp = h.do(t, http.MethodGet, "/api/stats/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12, decode[review.Dashboard](t, resp).Summary.TotalItems)
}

func TestStatsRoutes_ServiceError(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.reviews.Err = errors.New("SELECT * FROM review_events failed")

	resp := h.do(t, http.MethodGet, "/api/stats/summary", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[shared.ErrorResponse](t, resp)
	assert.Equal(t, "Failed to compute progress summary", body.Error)
}

func TestPracticeRoutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var gotSample review.SampleRequest
	h.reviews.SamplePracticeFn = func(_ context.Context, req review.SampleRequest) ([]practice.Item, error) {
		gotSample = req
		return []practice.Item{{ID: "q1", Domain: "security", Difficulty: domain.DifficultyEasy}}, nil
	}
	var gotScore review.ScoreRequest
	h.reviews.ScoreExamFn = func(_ context.Context, req review.ScoreRequest) (*practice.ExamResult, error) {
		gotScore = req
		return &practice.ExamResult{Correct: 1, Total: 2, Percent: 50, PassingScore: 70}, nil
	}

	resp := h.do(t, http.MethodPost, "/api/practice/sample", map[string]any{
		"target_count":   10,
		"domain_weights": map[string]float64{"security": 0.6, "networking": 0.4},
		"curve":          "foundation",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[api.SampleResponse](t, resp).Items, 1)
	assert.Equal(t, 10, gotSample.TargetCount)
	assert.Equal(t, "foundation", gotSample.Curve)
	assert.InDelta(t, 0.6, gotSample.DomainWeights["security"], 1e-9)

	resp = h.do(t, http.MethodPost, "/api/practice/sample", map[string]any{"target_count": 5, "curve": "impossible"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/practice/score", map[string]any{
		"answers": []map[string]any{
			{"item_id": "q1", "correct": true},
			{"item_id": "q2", "correct": false},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[practice.ExamResult](t, resp)
	assert.False(t, result.Passed)
	require.Len(t, gotScore.Answers, 2)
	assert.True(t, gotScore.Answers[0].Correct)

	resp = h.do(t, http.MethodPost, "/api/practice/score", map[string]any{"answers": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, h.reviews.CallCount("ScoreExam"))
}

func TestTargetedPracticeRoute(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var got review.TargetRequest
	h.reviews.TargetPracticeFn = func(_ context.Context, req review.TargetRequest) (*review.TargetedSet, error) {
		got = req
		return &review.TargetedSet{
			Items:     []practice.Item{{ID: "q1", Domain: "security", ModuleID: "mod-1"}},
			Match:     practice.MatchReducedModule,
			Available: 7,
		}, nil
	}

	resp := h.do(t, http.MethodPost, "/api/practice/targeted", map[string]any{
		"module_id":         "mod-1",
		"primary_domain":    "security",
		"required_tags":     []string{"iam"},
		"min_questions":     6,
		"fallback_strategy": "reduce-specificity",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	set := decode[review.TargetedSet](t, resp)
	assert.Equal(t, practice.MatchReducedModule, set.Match)
	assert.Equal(t, 7, set.Available)
	require.Len(t, set.Items, 1)
	assert.Equal(t, practice.FallbackReduceSpecificity, got.Targeting.Fallback)
	assert.Equal(t, []string{"iam"}, got.Targeting.RequiredTags)
	assert.Equal(t, 6, got.Targeting.MinQuestions)

	testCases := []struct {
		name string
		body map[string]any
	}{
		{"missing domain", map[string]any{"module_id": "mod-1"}},
		{"unknown fallback", map[string]any{"primary_domain": "security", "fallback_strategy": "guess"}},
		{"blank tag", map[string]any{"primary_domain": "security", "required_tags": []string{""}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.do(t, http.MethodPost, "/api/practice/targeted", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Equal(t, 1, h.reviews.CallCount("TargetPractice"))
}

func TestWeakItemsRoute(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var got review.WeakItemsRequest
	h.reviews.WeakItemsFn = func(_ context.Context, _ uuid.UUID, req review.WeakItemsRequest) ([]analytics.WeakItem, error) {
		got = req
		return []analytics.WeakItem{{ItemID: "item-1", Concept: "iam", Retention: 25, TotalReviews: 4}}, nil
	}

	resp := h.do(t, http.MethodGet, "/api/stats/weak?threshold=60&limit=5&type=question", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[api.WeakItemsResponse](t, resp).Items
	require.Len(t, items, 1)
	assert.Equal(t, 25.0, items[0].Retention)
	assert.Equal(t, review.WeakItemsRequest{Threshold: 60, Limit: 5, Type: domain.ItemTypeQuestion}, got)

	resp = h.do(t, http.MethodGet, "/api/stats/weak", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, review.WeakItemsRequest{}, got, "omitted parameters defer to the service defaults")

	resp = h.do(t, http.MethodGet, "/api/stats/weak?threshold=high", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 2, h.reviews.CallCount("WeakItems"))
}

func TestSessionRoutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	sessionID := uuid.New()
	completedAt := testNow.Add(20 * time.Minute)

	h.reviews.StartSessionFn = func(
		_ context.Context,
		userID uuid.UUID,
		req review.StartSessionRequest,
	) (*domain.ReviewSession, error) {
		return &domain.ReviewSession{
			ID: sessionID, UserID: userID, Type: req.Type, TargetMinutes: req.TargetMinutes, StartedAt: testNow,
		}, nil
	}
	var gotResult domain.SessionResult
	h.reviews.CompleteSessionFn = func(
		_ context.Context,
		userID, id uuid.UUID,
		result domain.SessionResult,
	) (*domain.ReviewSession, error) {
		if id != sessionID {
			return nil, review.NewServiceError(review.OpCompleteSession, "failed to load review session", review.ErrSessionNotFound)
		}
		gotResult = result
		return &domain.ReviewSession{
			ID: id, UserID: userID, Type: domain.SessionMixed, StartedAt: testNow, CompletedAt: &completedAt,
			CorrectCount: result.CorrectCount, TotalCount: result.TotalCount, Accuracy: 75,
		}, nil
	}
	var gotLimit int
	h.reviews.ListSessionsFn = func(_ context.Context, _ uuid.UUID, limit int) ([]domain.ReviewSession, error) {
		gotLimit = limit
		return []domain.ReviewSession{{ID: sessionID, Type: domain.SessionMixed, StartedAt: testNow}}, nil
	}

	resp := h.do(t, http.MethodPost, "/api/sessions", map[string]any{"session_type": "mixed", "target_minutes": 20})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	started := decode[domain.ReviewSession](t, resp)
	assert.Equal(t, sessionID, started.ID)
	assert.Equal(t, h.userID, started.UserID)
	assert.Equal(t, 20, started.TargetMinutes)

	resp = h.do(t, http.MethodPost, "/api/sessions", map[string]any{"session_type": "cram"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/sessions/"+sessionID.String()+"/complete", map[string]any{
		"questions_reviewed": 4,
		"correct_count":      3,
		"total_count":        4,
		"duration_seconds":   1200,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	completed := decode[domain.ReviewSession](t, resp)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 75.0, completed.Accuracy)
	assert.Equal(t, domain.SessionResult{QuestionsReviewed: 4, CorrectCount: 3, TotalCount: 4, DurationSeconds: 1200}, gotResult)

	resp = h.do(t, http.MethodPost, "/api/sessions/"+sessionID.String()+"/complete", map[string]any{
		"correct_count": 5,
		"total_count":   4,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "correct count above total is rejected before the service")

	resp = h.do(t, http.MethodPost, "/api/sessions/"+uuid.NewString()+"/complete", map[string]any{"total_count": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Review session not found", decode[shared.ErrorResponse](t, resp).Error)

	resp = h.do(t, http.MethodPost, "/api/sessions/not-a-uuid/complete", map[string]any{"total_count": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[api.SessionsResponse](t, resp).Sessions, 1)
	assert.Equal(t, review.DefaultSessionLimit, gotLimit)

	resp = h.do(t, http.MethodGet, "/api/sessions?limit=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, gotLimit)

	assert.Equal(t, 1, h.reviews.CallCount("StartSession"))
	assert.Equal(t, 2, h.reviews.CallCount("CompleteSession"))
}

func TestSessionRoutes_AlreadyCompleted(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.reviews.Err = review.NewServiceError(review.OpCompleteSession, "review session already completed", review.ErrSessionCompleted)

	resp := h.do(t, http.MethodPost, "/api/sessions/"+uuid.NewString()+"/complete", map[string]any{"total_count": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Review session already completed", decode[shared.ErrorResponse](t, resp).Error)
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	_, log := logger.NewTestLogger(t)
	userID := uuid.New()
	h := &harness{
		reviews: &mocks.MockReviewService{},
		jwt:     mocks.NewMockJWTService(userID),
		userID:  userID,
	}
	limiter := middleware.NewRateLimiter(0.001, 1)
	h.server = httptest.NewServer(api.NewRouter(h.reviews, h.jwt, log, api.WithRateLimiter(limiter)))
	t.Cleanup(h.server.Close)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/queue/counts", nil).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, h.do(t, http.MethodGet, "/api/queue/counts", nil).StatusCode)

	health, err := http.Get(h.server.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode, "health is not rate limited")
}
