package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
)

// Dispatcher turns raw channel payloads into handler calls. It owns the
// drop-or-redeliver decision:
//
//   - undecodable payloads, missing subjects and unknown kinds are dropped
//     with a log line and acked, since redelivery cannot fix them
//   - handler errors are returned unacked so the channel redelivers
//
// When an idempotency store is attached, messages already seen under this
// channel and group are skipped. Suppression is best-effort; handlers stay
// idempotent regardless.
type Dispatcher struct {
	channel string
	group   string
	handler propagation.Handler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher for one (channel, group) pair
func NewDispatcher(channel, group string, handler propagation.Handler, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		channel: channel,
		group:   group,
		handler: handler,
		ttl:     24 * time.Hour,
		logger:  logger,
	}
}

// WithIdempotencyStore attaches duplicate suppression to the dispatcher
func (d *Dispatcher) WithIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) *Dispatcher {
	d.store = store
	if ttl > 0 {
		d.ttl = ttl
	}
	return d
}

// Dispatch processes one message. The returned bool reports whether the
// message should be acknowledged; a non-nil error implies no ack.
func (d *Dispatcher) Dispatch(ctx context.Context, messageID string, payload []byte) (bool, error) {
	event, err := propagation.Decode(payload)
	if err != nil {
		d.logger.Warn("undecodable message dropped",
			zap.String("channel", d.channel),
			zap.String("message_id", messageID),
			zap.Error(err))
		return true, nil
	}
	if err := event.Validate(); err != nil {
		d.logger.Warn("invalid message dropped",
			zap.String("channel", d.channel),
			zap.String("message_id", messageID),
			zap.Error(err))
		return true, nil
	}

	key := d.channel + ":" + d.group + ":" + messageID
	if d.store != nil {
		processed, err := d.store.IsProcessed(ctx, key)
		if err != nil {
			d.logger.Warn("idempotency check failed, processing anyway",
				zap.String("message_id", messageID),
				zap.Error(err))
		} else if processed {
			d.logger.Debug("duplicate message skipped",
				zap.String("channel", d.channel),
				zap.String("message_id", messageID))
			return true, nil
		}
	}

	if err := d.handler.HandleEvent(ctx, event); err != nil {
		return false, err
	}

	if d.store != nil {
		if _, err := d.store.MarkProcessed(ctx, key, d.ttl); err != nil {
			d.logger.Warn("failed to mark message processed",
				zap.String("message_id", messageID),
				zap.Error(err))
		}
	}
	return true, nil
}
