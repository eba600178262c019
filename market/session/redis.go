package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "surplusbot:session:"

// RedisConfig holds configuration for the Redis session backend.
type RedisConfig struct {
	Client *redis.Client
	// TTL expires idle sessions; zero keeps them forever.
	TTL time.Duration
}

// RedisBackend stores sessions as JSON strings. The per-chat lock lives in
// the Store, so a deployment must run a single bot process per token.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend verifies the connection and returns a backend.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := cfg.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisBackend{client: cfg.Client, ttl: cfg.TTL}, nil
}

func sessionKey(chatID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(chatID, 10)
}

func (r *RedisBackend) Load(ctx context.Context, chatID int64) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (r *RedisBackend) Save(ctx context.Context, chatID int64, data []byte) error {
	if err := r.client.Set(ctx, sessionKey(chatID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
