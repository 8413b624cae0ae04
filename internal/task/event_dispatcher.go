package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/events"
)

// TaskTypeEventDelivery identifies tasks that deliver one review event to
// one handler.
const TaskTypeEventDelivery = "event_delivery"

// DispatcherConfig sizes an EventDispatcher.
type DispatcherConfig struct {
	QueueSize int
	Pool      WorkerPoolConfig
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize: 256,
		Pool:      DefaultWorkerPoolConfig(),
	}
}

// EventDispatcher is an events.EventHandler that queues each event for
// asynchronous delivery to the wrapped handler. When the queue is full the
// event is dropped and ErrQueueFull returned, so a slow handler never
// blocks a rating.
type EventDispatcher struct {
	handler events.EventHandler
	queue   *TaskQueue
	pool    *WorkerPool
	logger  *slog.Logger
}

var _ events.EventHandler = (*EventDispatcher)(nil)

// NewEventDispatcher creates a dispatcher and starts its workers.
func NewEventDispatcher(handler events.EventHandler, config DispatcherConfig, logger *slog.Logger) *EventDispatcher {
	if handler == nil {
		panic("handler cannot be nil for EventDispatcher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "event_dispatcher"))

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, config.Pool, logger)
	pool.Start()

	return &EventDispatcher{
		handler: handler,
		queue:   queue,
		pool:    pool,
		logger:  logger,
	}
}

// HandleEvent implements events.EventHandler by enqueueing the event.
func (d *EventDispatcher) HandleEvent(_ context.Context, event *events.Event) error {
	err := d.queue.Enqueue(&eventTask{id: uuid.New(), event: event, handler: d.handler})
	if err != nil {
		d.logger.Warn("review event dropped",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("dispatch event %s: %w", event.ID, err)
	}
	return nil
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to end.
func (d *EventDispatcher) Close(ctx context.Context) error {
	d.queue.Close()
	return d.pool.Stop(ctx)
}

// eventTask delivers one event to one handler.
type eventTask struct {
	id      uuid.UUID
	event   *events.Event
	handler events.EventHandler
}

func (t *eventTask) ID() uuid.UUID { return t.id }

func (t *eventTask) Type() string { return TaskTypeEventDelivery }

func (t *eventTask) Execute(ctx context.Context) error {
	return t.handler.HandleEvent(ctx, t.event)
}
