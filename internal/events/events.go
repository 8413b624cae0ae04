package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the review service.
const (
	TypeItemRated     = "review.rated"
	TypeItemPostponed = "review.postponed"
	TypeItemCreated   = "review.item_created"
	TypeItemDeleted   = "review.item_deleted"

	TypeSessionStarted   = "session.started"
	TypeSessionCompleted = "session.completed"
)

// Event describes one committed change to a user's review data.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	UserID uuid.UUID `json:"user_id"`
	ItemID string    `json:"item_id"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// RatedPayload accompanies TypeItemRated.
type RatedPayload struct {
	Rating       string    `json:"rating"`
	DueAt        time.Time `json:"due_at"`
	IntervalDays float64   `json:"interval_days"`
	Ease         float64   `json:"ease"`
	Repetitions  int       `json:"repetitions"`
}

// PostponedPayload accompanies TypeItemPostponed.
type PostponedPayload struct {
	Days  int       `json:"days"`
	DueAt time.Time `json:"due_at"`
}

// ItemCreatedPayload accompanies TypeItemCreated.
type ItemCreatedPayload struct {
	ContentID string `json:"content_id"`
	ItemType  string `json:"item_type"`
}

// SessionStartedPayload accompanies TypeSessionStarted. Events about a
// session carry the session ID in ItemID.
type SessionStartedPayload struct {
	SessionType   string `json:"session_type"`
	TargetMinutes int    `json:"target_minutes,omitempty"`
}

// SessionCompletedPayload accompanies TypeSessionCompleted.
type SessionCompletedPayload struct {
	TotalCount      int     `json:"total_count"`
	CorrectCount    int     `json:"correct_count"`
	Accuracy        float64 `json:"accuracy"`
	DurationSeconds int     `json:"duration_seconds"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event of eventType. A nil payload leaves Payload empty.
func NewEvent(eventType string, userID uuid.UUID, itemID string, payload interface{}, at time.Time) (*Event, error) {
	event := &Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		ItemID:     itemID,
		OccurredAt: at.UTC(),
	}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		event.Payload = payloadBytes
	}

	return event, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to interested handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
