package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pable/go-season-diag/internal/model"
)

// RedisLogCache keeps season logs as JSON values in Redis.
type RedisLogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLogCache wraps an existing client. A zero ttl never expires entries.
func NewRedisLogCache(client *redis.Client, ttl time.Duration) *RedisLogCache {
	return &RedisLogCache{client: client, ttl: ttl}
}

// DialRedis parses a redis:// URL and checks the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Key returns the Redis key of a season log.
func Key(playerID int, season string) string {
	return fmt.Sprintf("seasondiag:log:%d:%s", playerID, season)
}

// Get implements LogCache.
func (c *RedisLogCache) Get(ctx context.Context, playerID int, season string) (model.SeasonLog, error) {
	data, err := c.client.Get(ctx, Key(playerID, season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.SeasonLog{}, ErrMiss
	}
	if err != nil {
		return model.SeasonLog{}, fmt.Errorf("redis get: %w", err)
	}
	var log model.SeasonLog
	if err := json.Unmarshal(data, &log); err != nil {
		return model.SeasonLog{}, fmt.Errorf("decoding season log: %w", err)
	}
	return log, nil
}

// Put implements LogCache.
func (c *RedisLogCache) Put(ctx context.Context, log model.SeasonLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshaling season log: %w", err)
	}
	return c.client.Set(ctx, Key(log.PlayerID, log.Season), data, c.ttl).Err()
}

// Invalidate implements LogCache.
func (c *RedisLogCache) Invalidate(ctx context.Context, playerID int, season string) (bool, error) {
	n, err := c.client.Del(ctx, Key(playerID, season)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}
