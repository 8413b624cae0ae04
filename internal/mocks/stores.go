package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/store"
)

var (
	_ store.ReviewItemStore    = (*MockReviewItemStore)(nil)
	_ store.ReviewEventStore   = (*MockReviewEventStore)(nil)
	_ store.QuestionPoolStore  = (*MockQuestionPoolStore)(nil)
	_ store.ReviewSessionStore = (*MockReviewSessionStore)(nil)
)

// MockReviewItemStore implements store.ReviewItemStore for testing.
type MockReviewItemStore struct {
	callTracker

	CreateFn       func(ctx context.Context, row *store.ReviewRow) error
	GetFn          func(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error)
	GetForUpdateFn func(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error)
	UpdateFn       func(ctx context.Context, row *store.ReviewRow) error
	DeleteFn       func(ctx context.Context, userID, id uuid.UUID) error
	ListByUserFn   func(ctx context.Context, userID uuid.UUID, filter store.ReviewItemFilter) ([]*store.ReviewRow, error)

	// Err is returned by methods without a function
	Err error
}

// Create implements store.ReviewItemStore.
func (m *MockReviewItemStore) Create(ctx context.Context, row *store.ReviewRow) error {
	m.record("Create", row.UserID)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, row)
	}
	return m.Err
}

// Get implements store.ReviewItemStore.
func (m *MockReviewItemStore) Get(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error) {
	m.record("Get", userID)
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	return nil, m.Err
}

// GetForUpdate implements store.ReviewItemStore.
func (m *MockReviewItemStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*store.ReviewRow, error) {
	m.record("GetForUpdate", userID)
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, userID, id)
	}
	return nil, m.Err
}

// Update implements store.ReviewItemStore.
func (m *MockReviewItemStore) Update(ctx context.Context, row *store.ReviewRow) error {
	m.record("Update", row.UserID)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, row)
	}
	return m.Err
}

// Delete implements store.ReviewItemStore.
func (m *MockReviewItemStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.record("Delete", userID)
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return m.Err
}

// ListByUser implements store.ReviewItemStore.
func (m *MockReviewItemStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ReviewItemFilter,
) ([]*store.ReviewRow, error) {
	m.record("ListByUser", userID)
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, filter)
	}
	return nil, m.Err
}

// WithTx returns the mock itself.
func (m *MockReviewItemStore) WithTx(*sql.Tx) store.ReviewItemStore {
	return m
}

// MockReviewEventStore implements store.ReviewEventStore for testing.
type MockReviewEventStore struct {
	callTracker

	AppendFn     func(ctx context.Context, event *domain.ReviewEvent) error
	ListByUserFn func(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.ReviewEvent, error)

	// Err is returned by methods without a function
	Err error
}

// Append implements store.ReviewEventStore.
func (m *MockReviewEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	m.record("Append", event.UserID)
	if m.AppendFn != nil {
		return m.AppendFn(ctx, event)
	}
	return m.Err
}

// ListByUser implements store.ReviewEventStore.
func (m *MockReviewEventStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]domain.ReviewEvent, error) {
	m.record("ListByUser", userID)
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, since)
	}
	return nil, m.Err
}

// WithTx returns the mock itself.
func (m *MockReviewEventStore) WithTx(*sql.Tx) store.ReviewEventStore {
	return m
}

// MockQuestionPoolStore implements store.QuestionPoolStore for testing.
type MockQuestionPoolStore struct {
	callTracker

	ListPoolFn func(ctx context.Context, domains []string) ([]practice.Item, error)
	GetByIDsFn func(ctx context.Context, ids []string) ([]practice.Item, error)

	// Pool is returned by ListPool and filtered by GetByIDs when the
	// corresponding function is nil.
	Pool []practice.Item
	Err  error
}

// ListPool implements store.QuestionPoolStore.
func (m *MockQuestionPoolStore) ListPool(ctx context.Context, domains []string) ([]practice.Item, error) {
	m.record("ListPool", uuid.Nil)
	if m.ListPoolFn != nil {
		return m.ListPoolFn(ctx, domains)
	}
	return m.Pool, m.Err
}

// GetByIDs implements store.QuestionPoolStore.
func (m *MockQuestionPoolStore) GetByIDs(ctx context.Context, ids []string) ([]practice.Item, error) {
	m.record("GetByIDs", uuid.Nil)
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var items []practice.Item
	for _, item := range m.Pool {
		if wanted[item.ID] {
			items = append(items, item)
		}
	}
	return items, nil
}

// MockReviewSessionStore implements store.ReviewSessionStore for testing.
// Sessions created through it are kept in memory.
type MockReviewSessionStore struct {
	callTracker

	CompleteFn func(ctx context.Context, session *domain.ReviewSession) error

	Sessions map[uuid.UUID]domain.ReviewSession
	Err      error
}

// Create implements store.ReviewSessionStore.
func (m *MockReviewSessionStore) Create(_ context.Context, session *domain.ReviewSession) error {
	m.record("Create", session.UserID)
	if m.Err != nil {
		return m.Err
	}
	if m.Sessions == nil {
		m.Sessions = make(map[uuid.UUID]domain.ReviewSession)
	}
	m.Sessions[session.ID] = *session
	return nil
}

// Get implements store.ReviewSessionStore.
func (m *MockReviewSessionStore) Get(_ context.Context, userID, id uuid.UUID) (*domain.ReviewSession, error) {
	m.record("Get", userID)
	if m.Err != nil {
		return nil, m.Err
	}
	session, ok := m.Sessions[id]
	if !ok || session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return &session, nil
}

// Complete implements store.ReviewSessionStore.
func (m *MockReviewSessionStore) Complete(ctx context.Context, session *domain.ReviewSession) error {
	m.record("Complete", session.UserID)
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, session)
	}
	stored, err := m.Get(ctx, session.UserID, session.ID)
	if err != nil {
		return err
	}
	if stored.Completed() {
		return store.ErrConflict
	}
	m.Sessions[session.ID] = *session
	return nil
}

// ListByUser implements store.ReviewSessionStore. Sessions are not ordered.
func (m *MockReviewSessionStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.ReviewSession, error) {
	m.record("ListByUser", userID)
	if m.Err != nil {
		return nil, m.Err
	}
	sessions := make([]domain.ReviewSession, 0)
	for _, session := range m.Sessions {
		if session.UserID == userID && len(sessions) < limit {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}
