package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	defaultTTL = 24 * time.Hour
)

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores labels in Redis as JSON arrays
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCache creates a new Redis cache client and checks the connection
func NewRedisCache(cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// Get retrieves labels from cache
func (c *RedisCache) Get(ctx context.Context, key string) (labels []string, err error) {
	defer func() { observe("get", err) }()
	if key == "" {
		return nil, ErrInvalidKey
	}

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(val), &labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
	}

	c.logger.Debug().Str("key", key).Msg("Cache hit")
	return labels, nil
}

// Set stores labels in cache
func (c *RedisCache) Set(ctx context.Context, key string, labels []string) (err error) {
	defer func() { observe("set", err) }()
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}

	if err := c.client.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}

	c.logger.Debug().Str("key", key).Int("labels", len(labels)).Msg("Cached labels")
	return nil
}

// Delete removes labels from cache
func (c *RedisCache) Delete(ctx context.Context, keys []string) (err error) {
	defer func() { observe("delete", err) }()
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}

	c.logger.Debug().Int("count", len(keys)).Msg("Deleted cached labels")
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Health checks if Redis is healthy
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
