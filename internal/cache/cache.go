// Package cache holds read-through caching for hot catalog reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

const (
	KeyActiveCategories = "categories:active"
	productKeyPrefix    = "product:"
)

// ProductKey is the cache key of a product detail.
func ProductKey(id string) string {
	return productKeyPrefix + id
}

// Cache stores JSON encoded values.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// Redis is a Cache backed by a redis server.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: "storefront:", ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.client.Del(ctx, full...).Err()
}

// Nop never stores anything; every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string, any) error  { return ErrMiss }
func (Nop) Set(context.Context, string, any) error  { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
