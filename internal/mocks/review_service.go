package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/domain/streak"
	"github.com/phrazzld/scry-review/internal/service/review"
)

var _ review.Service = (*MockReviewService)(nil)

// MockReviewService implements review.Service for testing. Methods without a
// function return zero values and Err.
type MockReviewService struct {
	callTracker

	CreateItemFn     func(ctx context.Context, userID uuid.UUID, req review.CreateItemRequest) (*domain.ReviewState, error)
	DeleteItemFn     func(ctx context.Context, userID, itemID uuid.UUID) error
	SubmitRatingFn   func(ctx context.Context, userID, itemID uuid.UUID, req review.RatingRequest) (*review.RatingResult, error)
	PostponeFn       func(ctx context.Context, userID, itemID uuid.UUID, days int) (*domain.ReviewState, error)
	BuildQueueFn     func(ctx context.Context, userID uuid.UUID, mode queue.Mode, budget queue.Budget) (*queue.SessionQueue, error)
	DueCountsFn      func(ctx context.Context, userID uuid.UUID) (queue.Counts, error)
	ForecastFn       func(ctx context.Context, userID uuid.UUID, days int) ([]queue.ForecastDay, error)
	StreakFn         func(ctx context.Context, userID uuid.UUID) (streak.Streaks, error)
	ConceptMasteryFn func(ctx context.Context, userID uuid.UUID) ([]analytics.ConceptMastery, error)
	ModuleProgressFn func(ctx context.Context, userID uuid.UUID) ([]analytics.ModuleProgress, error)
	TimelineFn       func(ctx context.Context, userID uuid.UUID, days int) ([]analytics.TimelinePoint, error)
	DashboardFn      func(ctx context.Context, userID uuid.UUID) (*review.Dashboard, error)
	SamplePracticeFn func(ctx context.Context, req review.SampleRequest) ([]practice.Item, error)
	ScoreExamFn      func(ctx context.Context, req review.ScoreRequest) (*practice.ExamResult, error)
	TargetPracticeFn func(ctx context.Context, req review.TargetRequest) (*review.TargetedSet, error)
	WeakItemsFn      func(ctx context.Context, userID uuid.UUID, req review.WeakItemsRequest) ([]analytics.WeakItem, error)

	StartSessionFn    func(ctx context.Context, userID uuid.UUID, req review.StartSessionRequest) (*domain.ReviewSession, error)
	CompleteSessionFn func(ctx context.Context, userID, sessionID uuid.UUID, result domain.SessionResult) (*domain.ReviewSession, error)
	ListSessionsFn    func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ReviewSession, error)

	// Err is returned by methods without a function
	Err error
}

// CreateItem implements review.Service.
func (m *MockReviewService) CreateItem(
	ctx context.Context,
	userID uuid.UUID,
	req review.CreateItemRequest,
) (*domain.ReviewState, error) {
	m.record("CreateItem", userID)
	if m.CreateItemFn != nil {
		return m.CreateItemFn(ctx, userID, req)
	}
	return nil, m.Err
}

// DeleteItem implements review.Service.
func (m *MockReviewService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	m.record("DeleteItem", userID)
	if m.DeleteItemFn != nil {
		return m.DeleteItemFn(ctx, userID, itemID)
	}
	return m.Err
}

// SubmitRating implements review.Service.
func (m *MockReviewService) SubmitRating(
	ctx context.Context,
	userID, itemID uuid.UUID,
	req review.RatingRequest,
) (*review.RatingResult, error) {
	m.record("SubmitRating", userID)
	if m.SubmitRatingFn != nil {
		return m.SubmitRatingFn(ctx, userID, itemID, req)
	}
	return nil, m.Err
}

// Postpone implements review.Service.
func (m *MockReviewService) Postpone(
	ctx context.Context,
	userID, itemID uuid.UUID,
	days int,
) (*domain.ReviewState, error) {
	m.record("Postpone", userID)
	if m.PostponeFn != nil {
		return m.PostponeFn(ctx, userID, itemID, days)
	}
	return nil, m.Err
}

// BuildQueue implements review.Service.
func (m *MockReviewService) BuildQueue(
	ctx context.Context,
	userID uuid.UUID,
	mode queue.Mode,
	budget queue.Budget,
) (*queue.SessionQueue, error) {
	m.record("BuildQueue", userID)
	if m.BuildQueueFn != nil {
		return m.BuildQueueFn(ctx, userID, mode, budget)
	}
	return nil, m.Err
}

// DueCounts implements review.Service.
func (m *MockReviewService) DueCounts(ctx context.Context, userID uuid.UUID) (queue.Counts, error) {
	m.record("DueCounts", userID)
	if m.DueCountsFn != nil {
		return m.DueCountsFn(ctx, userID)
	}
	return queue.Counts{}, m.Err
}

// Forecast implements review.Service.
func (m *MockReviewService) Forecast(ctx context.Context, userID uuid.UUID, days int) ([]queue.ForecastDay, error) {
	m.record("Forecast", userID)
	if m.ForecastFn != nil {
		return m.ForecastFn(ctx, userID, days)
	}
	return nil, m.Err
}

// Streak implements review.Service.
func (m *MockReviewService) Streak(ctx context.Context, userID uuid.UUID) (streak.Streaks, error) {
	m.record("Streak", userID)
	if m.StreakFn != nil {
		return m.StreakFn(ctx, userID)
	}
	return streak.Streaks{}, m.Err
}

// ConceptMastery implements review.Service.
func (m *MockReviewService) ConceptMastery(ctx context.Context, userID uuid.UUID) ([]analytics.ConceptMastery, error) {
	m.record("ConceptMastery", userID)
	if m.ConceptMasteryFn != nil {
		return m.ConceptMasteryFn(ctx, userID)
	}
	return nil, m.Err
}

// ModuleProgress implements review.Service.
func (m *MockReviewService) ModuleProgress(ctx context.Context, userID uuid.UUID) ([]analytics.ModuleProgress, error) {
	m.record("ModuleProgress", userID)
	if m.ModuleProgressFn != nil {
		return m.ModuleProgressFn(ctx, userID)
	}
	return nil, m.Err
}

// Timeline implements review.Service.
func (m *MockReviewService) Timeline(ctx context.Context, userID uuid.UUID, days int) ([]analytics.TimelinePoint, error) {
	m.record("Timeline", userID)
	if m.TimelineFn != nil {
		return m.TimelineFn(ctx, userID, days)
	}
	return nil, m.Err
}

// Dashboard implements review.Service.
func (m *MockReviewService) Dashboard(ctx context.Context, userID uuid.UUID) (*review.Dashboard, error) {
	m.record("Dashboard", userID)
	if m.DashboardFn != nil {
		return m.DashboardFn(ctx, userID)
	}
	return nil, m.Err
}

// SamplePractice implements review.Service.
func (m *MockReviewService) SamplePractice(ctx context.Context, req review.SampleRequest) ([]practice.Item, error) {
	m.record("SamplePractice", uuid.Nil)
	if m.SamplePracticeFn != nil {
		return m.SamplePracticeFn(ctx, req)
	}
	return nil, m.Err
}

// ScoreExam implements review.Service.
func (m *MockReviewService) ScoreExam(ctx context.Context, req review.ScoreRequest) (*practice.ExamResult, error) {
	m.record("ScoreExam", uuid.Nil)
	if m.ScoreExamFn != nil {
		return m.ScoreExamFn(ctx, req)
	}
	return nil, m.Err
}

// TargetPractice implements review.Service.
func (m *MockReviewService) TargetPractice(ctx context.Context, req review.TargetRequest) (*review.TargetedSet, error) {
	m.record("TargetPractice", uuid.Nil)
	if m.TargetPracticeFn != nil {
		return m.TargetPracticeFn(ctx, req)
	}
	return nil, m.Err
}

// WeakItems implements review.Service.
func (m *MockReviewService) WeakItems(
	ctx context.Context,
	userID uuid.UUID,
	req review.WeakItemsRequest,
) ([]analytics.WeakItem, error) {
	m.record("WeakItems", userID)
	if m.WeakItemsFn != nil {
		return m.WeakItemsFn(ctx, userID, req)
	}
	return nil, m.Err
}

// StartSession implements review.Service.
func (m *MockReviewService) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	req review.StartSessionRequest,
) (*domain.ReviewSession, error) {
	m.record("StartSession", userID)
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, userID, req)
	}
	return nil, m.Err
}

// CompleteSession implements review.Service.
func (m *MockReviewService) CompleteSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	result domain.SessionResult,
) (*domain.ReviewSession, error) {
	m.record("CompleteSession", userID)
	if m.CompleteSessionFn != nil {
		return m.CompleteSessionFn(ctx, userID, sessionID, result)
	}
	return nil, m.Err
}

// ListSessions implements review.Service.
func (m *MockReviewService) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ReviewSession, error) {
	m.record("ListSessions", userID)
	if m.ListSessionsFn != nil {
		return m.ListSessionsFn(ctx, userID, limit)
	}
	return nil, m.Err
}
