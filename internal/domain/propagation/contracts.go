package propagation

import "context"

// Publisher publishes change events to a named channel. Publish is a
// synchronous handoff to the transport but fire-and-forget from the caller's
// perspective: the local commit has already happened, so callers log and
// swallow transport errors rather than rolling back or retrying inline. A
// lost event leaves remote state stale but not corrupt, to be healed by the
// next write.
type Publisher interface {
	Publish(ctx context.Context, channel string, event ChangeEvent) error
}

// Handler applies a decoded, validated change event against the local store.
// Implementations must be idempotent: applying the same event twice must
// leave the store in the same state as applying it once, because the channel
// redelivers on failure. A returned error means the message is unhandled and
// should be redelivered; protocol-level garbage never reaches a Handler.
type Handler interface {
	HandleEvent(ctx context.Context, event ChangeEvent) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, event ChangeEvent) error

// HandleEvent calls f
func (f HandlerFunc) HandleEvent(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}
