package messaging

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/domain/propagation"
)

// InMemoryBroker implements the publisher contract with synchronous
// in-process delivery. Messages go through the same encode/decode/validate
// path as the Redis broker so subscribers see identical wire semantics.
// Used in tests and single-process deployments.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]*Dispatcher
	counter     int
	logger      *zap.Logger
}

// NewInMemoryBroker creates a new InMemoryBroker
func NewInMemoryBroker(logger *zap.Logger) *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]*Dispatcher),
		logger:      logger,
	}
}

// Subscribe attaches a handler to a channel under a group name
func (b *InMemoryBroker) Subscribe(channel, group string, handler propagation.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = append(b.subscribers[channel],
		NewDispatcher(channel, group, handler, b.logger))
}

// Publish delivers the event to every subscriber of the channel. Handler
// failures are logged and the message is not retried; there is no pending
// list to redeliver from in-process.
func (b *InMemoryBroker) Publish(ctx context.Context, channel string, event propagation.ChangeEvent) error {
	payload, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}

	b.mu.Lock()
	b.counter++
	messageID := fmt.Sprintf("%s-%d", channel, b.counter)
	dispatchers := make([]*Dispatcher, len(b.subscribers[channel]))
	copy(dispatchers, b.subscribers[channel])
	b.mu.Unlock()

	for _, d := range dispatchers {
		if _, err := d.Dispatch(ctx, messageID, payload); err != nil {
			b.logger.Error("in-memory subscriber failed",
				zap.String("channel", channel),
				zap.String("message_id", messageID),
				zap.Error(err))
		}
	}
	return nil
}

var _ propagation.Publisher = (*InMemoryBroker)(nil)
