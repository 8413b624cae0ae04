package task

import (
	"context"

	"github.com/google/uuid"
)

// Task is one unit of work run by a WorkerPool. Execute receives a context
// that ends when the pool gives up on the task.
type Task interface {
	ID() uuid.UUID
	Type() string
	Execute(ctx context.Context) error
}

// Source feeds tasks to workers. The channel is closed once no more tasks
// will arrive.
type Source interface {
	GetChannel() <-chan Task
}
