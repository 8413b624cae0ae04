package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/domain/streak"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

const (
	// DefaultVelocityWeeks is how many weeks of mastery the dashboard
	// averages to predict readiness.
	DefaultVelocityWeeks = 4

	// DefaultReadinessTarget is the exam readiness score considered ready.
	DefaultReadinessTarget = 90.0

	// MaxWindowDays bounds forecast and timeline windows.
	MaxWindowDays = 365

	// DefaultSessionLimit and MaxSessionLimit bound ListSessions.
	DefaultSessionLimit = 10
	MaxSessionLimit     = 100

	// DefaultWeakLimit and MaxWeakLimit bound WeakItems.
	DefaultWeakLimit = 20
	MaxWeakLimit     = 100
)

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	DefaultMaxItems int
	DefaultCurve    string
	PassingScore    float64
	ReadinessTarget float64
	VelocityWeeks   int
}

// Deps holds the collaborators of the review service. Everything above the
// optional block is required.
type Deps struct {
	DB        *sql.DB
	Items     store.ReviewItemStore
	Events    store.ReviewEventStore
	Questions store.QuestionPoolStore
	Sessions  store.ReviewSessionStore
	Scheduler srs.Service
	Analyzer  *analytics.Analyzer

	// Optional collaborators
	Queue   *queue.Builder
	Streaks *streak.Tracker
	Sampler *practice.Sampler
	Emitter events.EventEmitter
	Clock   domain.Clock
	Logger  *slog.Logger
	Options Options
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db         *sql.DB
	items      store.ReviewItemStore
	eventStore store.ReviewEventStore
	questions  store.QuestionPoolStore
	sessions   store.ReviewSessionStore
	scheduler  srs.Service
	analyzer   *analytics.Analyzer
	builder    *queue.Builder
	streaks    *streak.Tracker
	emitter    events.EventEmitter
	clock      domain.Clock
	opts       Options
	logger     *slog.Logger

	// The sampler owns a random source and is not safe for concurrent use.
	samplerMu sync.Mutex
	sampler   *practice.Sampler

	dashboards singleflight.Group
}

// NewService creates a new review Service. It panics when a required
// dependency is missing.
func NewService(deps Deps) Service {
	if deps.DB == nil {
		panic("db cannot be nil")
	}
	if deps.Items == nil {
		panic("items store cannot be nil")
	}
	if deps.Events == nil {
		panic("events store cannot be nil")
	}
	if deps.Questions == nil {
		panic("questions store cannot be nil")
	}
	if deps.Sessions == nil {
		panic("sessions store cannot be nil")
	}
	if deps.Scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if deps.Analyzer == nil {
		panic("analyzer cannot be nil")
	}

	if deps.Queue == nil {
		deps.Queue = queue.NewBuilder(queue.DefaultDurations())
	}
	if deps.Streaks == nil {
		deps.Streaks = streak.NewTracker(nil)
	}
	if deps.Sampler == nil {
		deps.Sampler = practice.NewSampler(nil)
	}
	if deps.Clock == nil {
		deps.Clock = domain.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Options.VelocityWeeks <= 0 {
		deps.Options.VelocityWeeks = DefaultVelocityWeeks
	}
	if deps.Options.ReadinessTarget <= 0 {
		deps.Options.ReadinessTarget = DefaultReadinessTarget
	}
	if deps.Options.PassingScore <= 0 {
		deps.Options.PassingScore = practice.DefaultPassingScore
	}
	if deps.Options.DefaultCurve == "" {
		deps.Options.DefaultCurve = "intermediate"
	}

	return &serviceImpl{
		db:         deps.DB,
		items:      deps.Items,
		eventStore: deps.Events,
		questions:  deps.Questions,
		sessions:   deps.Sessions,
		scheduler:  deps.Scheduler,
		analyzer:   deps.Analyzer,
		builder:    deps.Queue,
		streaks:    deps.Streaks,
		sampler:    deps.Sampler,
		emitter:    deps.Emitter,
		clock:      deps.Clock,
		opts:       deps.Options,
		logger:     deps.Logger.With(slog.String("component", "review_service")),
	}
}

// CreateItem implements Service.CreateItem.
func (s *serviceImpl) CreateItem(
	ctx context.Context,
	userID uuid.UUID,
	req CreateItemRequest,
) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	contentID := strings.TrimSpace(req.ContentID)
	concept := strings.TrimSpace(req.Concept)
	switch {
	case userID == uuid.Nil:
		return nil, s.fail(log, OpCreateItem, "invalid request", invalidInput("user_id", "cannot be empty"))
	case contentID == "":
		return nil, s.fail(log, OpCreateItem, "invalid request", invalidInput("content_id", "cannot be empty"))
	case concept == "":
		return nil, s.fail(log, OpCreateItem, "invalid request", invalidInput("concept", "cannot be empty"))
	}

	now := s.clock.Now().UTC()
	state, err := domain.NewReviewState(
		contentID,
		req.Type,
		concept,
		strings.TrimSpace(req.ModuleID),
		s.scheduler.Params().DefaultEaseFactor,
		now,
	)
	if err != nil {
		return nil, s.fail(log, OpCreateItem, "invalid request", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	row := store.NewReviewRow(userID, contentID, state, now)
	if err := s.items.Create(ctx, row); err != nil {
		return nil, s.fail(log, OpCreateItem, "failed to create review item", err,
			slog.String("user_id", userID.String()),
			slog.String("content_id", contentID))
	}

	created := store.ToState(*row)
	log.Debug("review item created",
		slog.String("user_id", userID.String()),
		slog.String("item_id", created.ItemID),
		slog.String("type", created.Type.String()))

	s.emit(ctx, events.TypeItemCreated, userID, created.ItemID, events.ItemCreatedPayload{
		ContentID: contentID,
		ItemType:  created.Type.String(),
	}, now)

	return &created, nil
}

// DeleteItem implements Service.DeleteItem.
func (s *serviceImpl) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		return s.fail(log, OpDeleteItem, "failed to delete review item", err,
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()))
	}

	log.Debug("review item deleted",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()))
	s.emit(ctx, events.TypeItemDeleted, userID, itemID.String(), nil, s.clock.Now().UTC())
	return nil
}

// SubmitRating implements Service.SubmitRating.
func (s *serviceImpl) SubmitRating(
	ctx context.Context,
	userID, itemID uuid.UUID,
	req RatingRequest,
) (*RatingResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing rating",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("rating", req.Rating.String()))

	if !req.Rating.IsValid() {
		return nil, s.fail(log, OpSubmitRating, "invalid request",
			invalidInput("rating", fmt.Sprintf("unknown rating %q", req.Rating)))
	}
	if !validSeconds(req.TimeSpentSeconds) {
		return nil, s.fail(log, OpSubmitRating, "invalid request",
			invalidInput("time_spent_seconds", "must be a non-negative number"))
	}

	now := s.clock.Now().UTC()
	var result RatingResult

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		items := s.items.WithTx(tx)

		row, err := items.GetForUpdate(ctx, userID, itemID)
		if err != nil {
			return err
		}

		before := store.ToState(*row)
		after, err := s.scheduler.Schedule(before, req.Rating, now, req.TimeSpentSeconds)
		if err != nil {
			return err
		}

		updated := store.FromState(*row, after)
		if err := items.Update(ctx, &updated); err != nil {
			return err
		}

		event, err := domain.NewReviewEvent(userID, before, after, req.Rating, req.TimeSpentSeconds, now)
		if err != nil {
			return err
		}
		if err := s.eventStore.WithTx(tx).Append(ctx, event); err != nil {
			return err
		}

		result = RatingResult{State: store.ToState(updated), Event: *event}
		return nil
	})
	if err != nil {
		return nil, s.fail(log, OpSubmitRating, "failed to submit rating", err,
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()))
	}

	log.Debug("rating committed",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.Time("due_at", result.State.DueAt),
		slog.Float64("interval_days", result.State.IntervalDays))

	s.emit(ctx, events.TypeItemRated, userID, result.State.ItemID, events.RatedPayload{
		Rating:       req.Rating.String(),
		DueAt:        result.State.DueAt,
		IntervalDays: result.State.IntervalDays,
		Ease:         result.State.Ease,
		Repetitions:  result.State.Repetitions,
	}, now)

	return &result, nil
}

// Postpone implements Service.Postpone.
func (s *serviceImpl) Postpone(
	ctx context.Context,
	userID, itemID uuid.UUID,
	days int,
) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 || days > MaxWindowDays {
		return nil, s.fail(log, OpPostpone, "invalid request",
			invalidInput("days", fmt.Sprintf("must be between 1 and %d", MaxWindowDays)))
	}

	now := s.clock.Now().UTC()
	var postponed domain.ReviewState

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		items := s.items.WithTx(tx)

		row, err := items.GetForUpdate(ctx, userID, itemID)
		if err != nil {
			return err
		}

		next, err := s.scheduler.Postpone(store.ToState(*row), days, now)
		if err != nil {
			return err
		}

		updated := store.FromState(*row, next)
		if err := items.Update(ctx, &updated); err != nil {
			return err
		}

		postponed = store.ToState(updated)
		return nil
	})
	if err != nil {
		return nil, s.fail(log, OpPostpone, "failed to postpone review item", err,
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()))
	}

	s.emit(ctx, events.TypeItemPostponed, userID, postponed.ItemID, events.PostponedPayload{
		Days:  days,
		DueAt: postponed.DueAt,
	}, now)

	return &postponed, nil
}

// BuildQueue implements Service.BuildQueue.
func (s *serviceImpl) BuildQueue(
	ctx context.Context,
	userID uuid.UUID,
	mode queue.Mode,
	budget queue.Budget,
) (*queue.SessionQueue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if mode == "" {
		mode = queue.ModeMixed
	}
	if !mode.IsValid() {
		return nil, s.fail(log, OpBuildQueue, "invalid request",
			invalidInput("mode", fmt.Sprintf("unknown mode %q", mode)))
	}
	if budget.MaxItems == 0 {
		budget.MaxItems = s.opts.DefaultMaxItems
	}

	now := s.clock.Now().UTC()
	states, err := s.loadStates(ctx, userID, now, typesFor(mode)...)
	if err != nil {
		return nil, s.fail(log, OpBuildQueue, "failed to load due items", err,
			slog.String("user_id", userID.String()))
	}

	session, err := s.builder.Build(states, mode, budget, now)
	if err != nil {
		return nil, s.fail(log, OpBuildQueue, "failed to build session", err)
	}

	log.Debug("session queue built",
		slog.String("user_id", userID.String()),
		slog.String("mode", string(mode)),
		slog.Int("due", len(states)),
		slog.Int("admitted", len(session.Items)))
	return &session, nil
}

// DueCounts implements Service.DueCounts.
func (s *serviceImpl) DueCounts(ctx context.Context, userID uuid.UUID) (queue.Counts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.clock.Now().UTC()
	states, err := s.loadStates(ctx, userID, now)
	if err != nil {
		return queue.Counts{}, s.fail(log, OpDueCounts, "failed to load due items", err,
			slog.String("user_id", userID.String()))
	}
	return queue.DueCounts(states, now), nil
}

// Forecast implements Service.Forecast.
func (s *serviceImpl) Forecast(ctx context.Context, userID uuid.UUID, days int) ([]queue.ForecastDay, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateWindow(days); err != nil {
		return nil, s.fail(log, OpForecast, "invalid request", err)
	}

	now := s.clock.Now().UTC()
	states, err := s.loadStates(ctx, userID, now.AddDate(0, 0, days))
	if err != nil {
		return nil, s.fail(log, OpForecast, "failed to load items", err,
			slog.String("user_id", userID.String()))
	}
	return queue.Forecast(states, days, now), nil
}

// Streak implements Service.Streak.
func (s *serviceImpl) Streak(ctx context.Context, userID uuid.UUID) (streak.Streaks, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	history, err := s.eventStore.ListByUser(ctx, userID, time.Time{})
	if err != nil {
		return streak.Streaks{}, s.fail(log, OpStreak, "failed to load review history", err,
			slog.String("user_id", userID.String()))
	}

	timestamps := make([]time.Time, 0, len(history))
	for _, e := range history {
		timestamps = append(timestamps, e.ReviewedAt)
	}
	return s.streaks.Compute(timestamps, s.clock.Now().UTC()), nil
}

// ConceptMastery implements Service.ConceptMastery.
func (s *serviceImpl) ConceptMastery(ctx context.Context, userID uuid.UUID) ([]analytics.ConceptMastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	states, history, err := s.loadHistory(ctx, userID, time.Time{})
	if err != nil {
		return nil, s.fail(log, OpConceptMastery, "failed to load review data", err,
			slog.String("user_id", userID.String()))
	}
	return s.analyzer.ConceptMastery(states, history), nil
}

// ModuleProgress implements Service.ModuleProgress.
func (s *serviceImpl) ModuleProgress(ctx context.Context, userID uuid.UUID) ([]analytics.ModuleProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	states, err := s.loadStates(ctx, userID, time.Time{})
	if err != nil {
		return nil, s.fail(log, OpModuleProgress, "failed to load review items", err,
			slog.String("user_id", userID.String()))
	}
	return s.analyzer.ModuleProgress(states, analytics.ModuleMap(states)), nil
}

// Timeline implements Service.Timeline.
func (s *serviceImpl) Timeline(ctx context.Context, userID uuid.UUID, days int) ([]analytics.TimelinePoint, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateWindow(days); err != nil {
		return nil, s.fail(log, OpTimeline, "invalid request", err)
	}

	now := s.clock.Now().UTC()
	since := streak.DayStart(now, s.streaks.Location()).AddDate(0, 0, -(days - 1))
	history, err := s.eventStore.ListByUser(ctx, userID, since)
	if err != nil {
		return nil, s.fail(log, OpTimeline, "failed to load review history", err,
			slog.String("user_id", userID.String()))
	}
	return s.analyzer.Timeline(history, days, now), nil
}

// Dashboard implements Service.Dashboard.
func (s *serviceImpl) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The computation outlives a cancelled caller because other callers may
	// be waiting on it.
	shared := context.WithoutCancel(ctx)
	v, err, deduped := s.dashboards.Do(userID.String(), func() (interface{}, error) {
		return s.computeDashboard(shared, userID)
	})
	if err != nil {
		return nil, s.fail(log, OpDashboard, "failed to compute dashboard", err,
			slog.String("user_id", userID.String()))
	}

	log.Debug("dashboard computed",
		slog.String("user_id", userID.String()),
		slog.Bool("shared", deduped))

	dashboard := *v.(*Dashboard)
	return &dashboard, nil
}

func (s *serviceImpl) computeDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	states, history, err := s.loadHistory(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	summary := s.analyzer.Summary(states, history, now)
	velocity := s.analyzer.LearningVelocity(states, s.opts.VelocityWeeks, now)

	return &Dashboard{
		Summary:    summary,
		Velocity:   velocity,
		Readiness:  analytics.PredictReadiness(summary, velocity, s.opts.ReadinessTarget),
		Benchmarks: analytics.CompareBenchmarks(summary),
	}, nil
}

// SamplePractice implements Service.SamplePractice.
func (s *serviceImpl) SamplePractice(ctx context.Context, req SampleRequest) ([]practice.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.TargetCount < 0 {
		return nil, s.fail(log, OpSamplePractice, "invalid request",
			invalidInput("target_count", "must not be negative"))
	}

	curve, err := s.resolveCurve(req.DifficultyCurve, req.Curve)
	if err != nil {
		return nil, s.fail(log, OpSamplePractice, "invalid request", err)
	}

	domains := slices.Sorted(maps.Keys(req.DomainWeights))
	pool, err := s.questions.ListPool(ctx, domains)
	if err != nil {
		return nil, s.fail(log, OpSamplePractice, "failed to load question pool", err)
	}

	weights := req.DomainWeights
	if len(weights) == 0 {
		if len(pool) == 0 {
			return []practice.Item{}, nil
		}
		weights = equalWeights(pool)
	}

	s.samplerMu.Lock()
	selected, err := s.sampler.Sample(pool, req.TargetCount, weights, curve)
	s.samplerMu.Unlock()
	if err != nil {
		return nil, s.fail(log, OpSamplePractice, "failed to sample practice set", err)
	}

	log.Debug("practice set sampled",
		slog.Int("pool", len(pool)),
		slog.Int("target", req.TargetCount),
		slog.Int("selected", len(selected)))
	return selected, nil
}

// ScoreExam implements Service.ScoreExam.
func (s *serviceImpl) ScoreExam(ctx context.Context, req ScoreRequest) (*practice.ExamResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(req.Answers) == 0 {
		return nil, s.fail(log, OpScoreExam, "invalid request", invalidInput("answers", "cannot be empty"))
	}

	answers := make(map[string]bool, len(req.Answers))
	ids := make([]string, 0, len(req.Answers))
	for _, a := range req.Answers {
		if a.ItemID == "" {
			return nil, s.fail(log, OpScoreExam, "invalid request", invalidInput("item_id", "cannot be empty"))
		}
		if _, seen := answers[a.ItemID]; !seen {
			ids = append(ids, a.ItemID)
		}
		answers[a.ItemID] = a.Correct
	}

	items, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail(log, OpScoreExam, "failed to load exam questions", err)
	}
	if len(items) == 0 {
		return nil, s.fail(log, OpScoreExam, "invalid request",
			invalidInput("answers", "no answer matches a known question"))
	}

	passing := req.PassingScore
	if passing <= 0 {
		passing = s.opts.PassingScore
	}

	result, err := practice.ScoreExam(items, answers, passing)
	if err != nil {
		return nil, s.fail(log, OpScoreExam, "failed to score exam", err)
	}
	return &result, nil
}

// TargetPractice implements Service.TargetPractice.
func (s *serviceImpl) TargetPractice(ctx context.Context, req TargetRequest) (*TargetedSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	targeting := req.Targeting.WithDefaults()
	if err := targeting.Validate(); err != nil {
		return nil, s.fail(log, OpTargetPractice, "invalid request", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	curve, err := s.resolveCurve(req.DifficultyCurve, req.Curve)
	if err != nil {
		return nil, s.fail(log, OpTargetPractice, "invalid request", err)
	}

	// Mixed content may borrow from any domain, so the whole pool is read.
	pool, err := s.questions.ListPool(ctx, nil)
	if err != nil {
		return nil, s.fail(log, OpTargetPractice, "failed to load question pool", err)
	}

	targeted, err := practice.Target(pool, targeting, req.DomainWeights)
	if err != nil {
		return nil, s.fail(log, OpTargetPractice, "invalid request", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	selected := []practice.Item{}
	if len(targeted.Candidates) > 0 {
		s.samplerMu.Lock()
		selected, err = s.sampler.Sample(targeted.Candidates, targeting.IdealQuestions, targeted.Weights, curve)
		s.samplerMu.Unlock()
		if err != nil {
			return nil, s.fail(log, OpTargetPractice, "failed to sample practice set", err)
		}
	}

	log.Debug("targeted practice set sampled",
		slog.String("module_id", targeting.ModuleID),
		slog.String("domain", targeting.PrimaryDomain),
		slog.String("match", targeted.Match),
		slog.Int("available", len(targeted.Candidates)),
		slog.Int("selected", len(selected)))

	return &TargetedSet{
		Items:      selected,
		Match:      targeted.Match,
		Available:  len(targeted.Candidates),
		HasMinimum: len(targeted.Candidates) >= targeting.MinQuestions,
	}, nil
}

// WeakItems implements Service.WeakItems.
func (s *serviceImpl) WeakItems(
	ctx context.Context,
	userID uuid.UUID,
	req WeakItemsRequest,
) ([]analytics.WeakItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	threshold := req.Threshold
	if threshold == 0 {
		threshold = analytics.DefaultWeakThreshold
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultWeakLimit
	}
	switch {
	case threshold < 0 || threshold > 100 || math.IsNaN(threshold):
		return nil, s.fail(log, OpWeakItems, "invalid request",
			invalidInput("threshold", "must be between 0 and 100"))
	case limit < 0 || limit > MaxWeakLimit:
		return nil, s.fail(log, OpWeakItems, "invalid request",
			invalidInput("limit", fmt.Sprintf("must be between 1 and %d", MaxWeakLimit)))
	case req.Type != "" && !req.Type.IsValid():
		return nil, s.fail(log, OpWeakItems, "invalid request",
			invalidInput("type", fmt.Sprintf("unknown item type %q", req.Type)))
	}

	var types []domain.ItemType
	if req.Type != "" {
		types = append(types, req.Type)
	}
	states, err := s.loadStates(ctx, userID, time.Time{}, types...)
	if err != nil {
		return nil, s.fail(log, OpWeakItems, "failed to load review items", err,
			slog.String("user_id", userID.String()))
	}
	return s.analyzer.WeakItems(states, threshold, limit), nil
}

// StartSession implements Service.StartSession.
func (s *serviceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	req StartSessionRequest,
) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.clock.Now().UTC()
	session, err := domain.NewReviewSession(userID, req.Type, req.TargetMinutes, now)
	if err != nil {
		return nil, s.fail(log, OpStartSession, "invalid request", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, s.fail(log, OpStartSession, "failed to start review session", err,
			slog.String("user_id", userID.String()))
	}

	log.Debug("review session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("session_type", session.Type.String()))

	s.emit(ctx, events.TypeSessionStarted, userID, session.ID.String(), events.SessionStartedPayload{
		SessionType:   session.Type.String(),
		TargetMinutes: session.TargetMinutes,
	}, now)

	return session, nil
}

// CompleteSession implements Service.CompleteSession.
func (s *serviceImpl) CompleteSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	result domain.SessionResult,
) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	attrs := []any{
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
	}

	if err := result.Validate(); err != nil {
		return nil, s.fail(log, OpCompleteSession, "invalid request", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	session, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, s.fail(log, OpCompleteSession, "failed to load review session", err, attrs...)
	}
	if session.Completed() {
		return nil, s.fail(log, OpCompleteSession, "review session already completed", ErrSessionCompleted, attrs...)
	}

	now := s.clock.Now().UTC()
	if err := session.Complete(result, now); err != nil {
		return nil, s.fail(log, OpCompleteSession, "invalid request", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	if err := s.sessions.Complete(ctx, session); err != nil {
		// A concurrent completion won the race.
		if errors.Is(err, store.ErrConflict) {
			err = ErrSessionCompleted
		}
		return nil, s.fail(log, OpCompleteSession, "failed to complete review session", err, attrs...)
	}

	log.Debug("review session completed", append(attrs,
		slog.Int("total_count", session.TotalCount),
		slog.Float64("accuracy", session.Accuracy))...)

	s.emit(ctx, events.TypeSessionCompleted, userID, session.ID.String(), events.SessionCompletedPayload{
		TotalCount:      session.TotalCount,
		CorrectCount:    session.CorrectCount,
		Accuracy:        session.Accuracy,
		DurationSeconds: session.DurationSeconds,
	}, now)

	return session, nil
}

// ListSessions implements Service.ListSessions.
func (s *serviceImpl) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit == 0 {
		limit = DefaultSessionLimit
	}
	if limit < 0 || limit > MaxSessionLimit {
		return nil, s.fail(log, OpListSessions, "invalid request",
			invalidInput("limit", fmt.Sprintf("must be between 1 and %d", MaxSessionLimit)))
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, s.fail(log, OpListSessions, "failed to list review sessions", err,
			slog.String("user_id", userID.String()))
	}
	return sessions, nil
}

// resolveCurve picks the explicit curve, then the named preset, then the
// configured default.
func (s *serviceImpl) resolveCurve(curve practice.DifficultyCurve, name string) (practice.DifficultyCurve, error) {
	if len(curve) > 0 {
		return curve, nil
	}
	if name == "" {
		name = s.opts.DefaultCurve
	}
	named, err := practice.CurveByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return named, nil
}

// loadStates reads the user's items due at or before dueBefore, one query
// per item type in parallel. A zero dueBefore reads every item and no types
// reads every type.
func (s *serviceImpl) loadStates(
	ctx context.Context,
	userID uuid.UUID,
	dueBefore time.Time,
	types ...domain.ItemType,
) ([]domain.ReviewState, error) {
	if len(types) == 0 {
		rows, err := s.items.ListByUser(ctx, userID, store.ReviewItemFilter{DueBefore: dueBefore})
		if err != nil {
			return nil, err
		}
		return store.ToStates(rows), nil
	}

	results := make([][]*store.ReviewRow, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, itemType := range types {
		g.Go(func() error {
			rows, err := s.items.ListByUser(gctx, userID, store.ReviewItemFilter{
				Type:      itemType,
				DueBefore: dueBefore,
			})
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	states := make([]domain.ReviewState, 0)
	for _, rows := range results {
		states = append(states, store.ToStates(rows)...)
	}
	return states, nil
}

// loadHistory reads all of the user's items and the events reviewed at or
// after since in parallel.
func (s *serviceImpl) loadHistory(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]domain.ReviewState, []domain.ReviewEvent, error) {
	var (
		states  []domain.ReviewState
		history []domain.ReviewEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.items.ListByUser(gctx, userID, store.ReviewItemFilter{})
		if err != nil {
			return err
		}
		states = store.ToStates(rows)
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.eventStore.ListByUser(gctx, userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return states, history, nil
}

// emit publishes a committed change. Handler failures are logged and never
// undo the change.
func (s *serviceImpl) emit(
	ctx context.Context,
	eventType string,
	userID uuid.UUID,
	itemID string,
	payload interface{},
	at time.Time,
) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, userID, itemID, payload, at)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}

// fail translates store sentinels, logs at a level matching the error kind
// and wraps the result in a ServiceError.
func (s *serviceImpl) fail(log *slog.Logger, op, message string, err error, attrs ...any) error {
	err = translateStoreError(err)
	attrs = append(attrs, slog.String("operation", op), slog.String("error", err.Error()))

	switch {
	case errors.Is(err, ErrInvalidInput), domain.IsValidationError(err):
		log.Debug(message, attrs...)
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrItemExists), errors.Is(err, ErrSessionNotFound):
		log.Debug(message, attrs...)
	case errors.Is(err, ErrConcurrentUpdate), errors.Is(err, ErrSessionCompleted):
		log.Warn(message, attrs...)
	default:
		log.Error(message, attrs...)
	}

	return NewServiceError(op, message, err)
}

func typesFor(mode queue.Mode) []domain.ItemType {
	switch mode {
	case queue.ModeFlashcards:
		return []domain.ItemType{domain.ItemTypeFlashcard}
	case queue.ModeQuestions:
		return []domain.ItemType{domain.ItemTypeQuestion}
	default:
		return []domain.ItemType{domain.ItemTypeFlashcard, domain.ItemTypeQuestion}
	}
}

func validSeconds(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateWindow(days int) error {
	if days < 1 || days > MaxWindowDays {
		return invalidInput("days", fmt.Sprintf("must be between 1 and %d", MaxWindowDays))
	}
	return nil
}

// equalWeights gives every domain present in pool the same share.
func equalWeights(pool []practice.Item) map[string]float64 {
	weights := make(map[string]float64)
	for _, item := range pool {
		weights[item.Domain] = 0
	}
	for name := range weights {
		weights[name] = 1 / float64(len(weights))
	}
	return weights
}
