// Package events carries change notifications out of the review service.
//
// The service emits an Event after each committed change: a rating, a
// postponement, an item created or an item deleted. Handlers registered on an
// EventEmitter receive them synchronously, in registration order; the server
// registers handlers behind a task.EventDispatcher so they run off the
// request path. The service never depends on who listens.
package events
