package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/domain/propagation"
)

const payloadField = "payload"

// RedisBroker publishes change events to Redis Streams, one stream per
// channel. Streams are capped approximately so an idle consumer cannot grow
// them without bound.
type RedisBroker struct {
	client redis.UniversalClient
	maxLen int64
	logger *zap.Logger
}

// NewRedisBroker creates a new RedisBroker
func NewRedisBroker(client redis.UniversalClient, maxLen int64, logger *zap.Logger) *RedisBroker {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &RedisBroker{
		client: client,
		maxLen: maxLen,
		logger: logger,
	}
}

// Publish appends the event to the channel's stream
func (b *RedisBroker) Publish(ctx context.Context, channel string, event propagation.ChangeEvent) error {
	payload, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}

	id, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: channel,
		MaxLen: b.maxLen,
		Approx: true,
		Values: map[string]any{payloadField: string(payload)},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd to %s: %w", channel, err)
	}

	b.logger.Debug("event published",
		zap.String("channel", channel),
		zap.String("message_id", id),
		zap.String("kind", string(event.Kind)))
	return nil
}

var _ propagation.Publisher = (*RedisBroker)(nil)

// RedisConsumer reads one channel with a consumer group and feeds messages
// through a Dispatcher. Acknowledged messages leave the pending list;
// messages whose handler failed stay pending and are redelivered.
type RedisConsumer struct {
	client     redis.UniversalClient
	channel    string
	group      string
	consumer   string
	workers    int
	batchSize  int64
	block      time.Duration
	dispatcher *Dispatcher
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RedisConsumerOptions configures a RedisConsumer
type RedisConsumerOptions struct {
	Channel   string
	Group     string
	Consumer  string
	Workers   int
	BatchSize int64
	Block     time.Duration
}

// NewRedisConsumer creates a new RedisConsumer
func NewRedisConsumer(client redis.UniversalClient, opts RedisConsumerOptions, dispatcher *Dispatcher, logger *zap.Logger) *RedisConsumer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 16
	}
	if opts.Block <= 0 {
		opts.Block = 5 * time.Second
	}
	if opts.Consumer == "" {
		opts.Consumer = opts.Group + "-0"
	}
	return &RedisConsumer{
		client:     client,
		channel:    opts.Channel,
		group:      opts.Group,
		consumer:   opts.Consumer,
		workers:    opts.Workers,
		batchSize:  opts.BatchSize,
		block:      opts.Block,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start creates the consumer group if needed and launches the worker pool
func (c *RedisConsumer) Start(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.channel, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", c.group, c.channel, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(runCtx, fmt.Sprintf("%s-%d", c.consumer, i))
	}

	c.logger.Info("consumer started",
		zap.String("channel", c.channel),
		zap.String("group", c.group),
		zap.Int("workers", c.workers))
	return nil
}

// Stop stops the worker pool and waits for in-flight messages
func (c *RedisConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("consumer stopped",
		zap.String("channel", c.channel),
		zap.String("group", c.group))
}

func (c *RedisConsumer) worker(ctx context.Context, name string) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: name,
			Streams:  []string{c.channel, ">"},
			Count:    c.batchSize,
			Block:    c.block,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			c.logger.Error("read from channel failed",
				zap.String("channel", c.channel),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *RedisConsumer) process(ctx context.Context, msg redis.XMessage) {
	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		c.logger.Warn("message without payload field dropped",
			zap.String("channel", c.channel),
			zap.String("message_id", msg.ID))
		c.ack(ctx, msg.ID)
		return
	}

	ack, err := c.dispatcher.Dispatch(ctx, msg.ID, []byte(payload))
	if err != nil {
		// No ack: the message stays pending and gets redelivered.
		c.logger.Error("message handling failed, leaving pending",
			zap.String("channel", c.channel),
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}
	if ack {
		c.ack(ctx, msg.ID)
	}
}

func (c *RedisConsumer) ack(ctx context.Context, messageID string) {
	if err := c.client.XAck(ctx, c.channel, c.group, messageID).Err(); err != nil {
		c.logger.Warn("failed to ack message",
			zap.String("channel", c.channel),
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}
