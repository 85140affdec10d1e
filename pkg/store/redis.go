package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/observability"
)

const (
	redisKeyPrefix = "cardgrid:layout:"
	redisIndexKey  = "cardgrid:layouts"
)

// RedisStore is a Redis-backed layout store for multi-instance deployments.
// Layout names are tracked in a set so List stays O(layouts) without KEYS.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string // host:port, e.g. "localhost:6379"
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get retrieves a layout by name.
func (s *RedisStore) Get(ctx context.Context, name string) ([]grid.Item, error) {
	if err := errors.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if err == redis.Nil {
		observability.Store().OnMiss(ctx, "redis", name)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}

	var layout []grid.Item
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	observability.Store().OnHit(ctx, "redis", name)
	return layout, nil
}

// Set stores a layout under a name and records it in the name index.
func (s *RedisStore) Set(ctx context.Context, name string, layout []grid.Item) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+name, data, 0)
	pipe.SAdd(ctx, redisIndexKey, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	observability.Store().OnSet(ctx, "redis", name, len(layout))
	return nil
}

// Delete removes a layout and its index entry.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisKeyPrefix+name)
	pipe.SRem(ctx, redisIndexKey, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete %s: %w", name, err)
	}
	return nil
}

// List returns the stored layout names in sorted order.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
