package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed message IDs to suppress duplicate processing.
// Suppression is best-effort: reconcilers must stay idempotent on their own, the
// store only saves redundant work on redelivery.
type IdempotencyStore interface {
	// MarkProcessed marks a message as processed with a TTL.
	// Returns true if the message was newly marked, false if already processed.
	MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a message has already been processed
	IsProcessed(ctx context.Context, messageID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed message IDs. After this duration
	// the same message ID can be processed again.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
