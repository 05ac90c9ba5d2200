// Package eventbus defines the contract for post-commit side-effect
// fan-out. Handlers are best-effort: a failing handler never rolls back
// the transition that emitted the event.
package eventbus

import "context"

// Event is implemented by every domain event carried on the bus.
type Event interface {
	// Type is the registration key, e.g. "donation.completed".
	Type() string
}

// HandlerFunc consumes a single event. Errors are logged by the bus, not
// propagated to the emitter.
type HandlerFunc func(ctx context.Context, e Event) error

// Bus dispatches events to registered handlers.
type Bus interface {
	// Emit delivers the event to every handler registered for its type.
	Emit(ctx context.Context, e Event) error
	// Register subscribes a handler to an event type.
	Register(eventType string, h HandlerFunc)
}
