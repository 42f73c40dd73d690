package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orgsync/backend/internal/domain/shared"
)

const defaultKeyPrefix = "propagation:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore using Redis. Suitable
// for distributed deployments where every consumer in a group must share
// duplicate-suppression state.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ownClient bool
}

// NewRedisIdempotencyStore creates a Redis-based idempotency store with its
// own connection.
func NewRedisIdempotencyStore(addr, password string, db int) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ownClient: true,
	}, nil
}

// NewRedisIdempotencyStoreWithClient creates a store on an existing client,
// useful for testing or when sharing a client across components.
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a message as processed with a TTL using SETNX, so
// concurrent consumers race safely.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+messageID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processed: %w", err)
	}
	return result, nil
}

// IsProcessed checks whether a message has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+messageID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if message is processed: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client when this store owns it
func (s *RedisIdempotencyStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
