// Package cache provides an optional Redis-backed cache. When Redis is
// not reachable at startup every operation degrades to a no-op so the
// API keeps serving from the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"nextstep-backend/internal/shared/telemetry"
)

// Cache is the read-through cache used for derived, frequently read
// values such as distinct employment types and notification counts.
type Cache struct {
	client *redis.Client

	warnedUnavailable atomic.Bool
}

// New connects to Redis at addr. An empty addr or a failed ping returns
// a bypassing cache rather than an error.
func New(addr, password string) *Cache {
	if addr == "" {
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		telemetry.Warn("cache.unavailable", map[string]any{"addr": addr, "error": err.Error()})
		_ = client.Close()
		return &Cache{}
	}

	telemetry.Info("cache.connected", map[string]any{"addr": addr})
	return &Cache{client: client}
}

func (c *Cache) bypassed() bool {
	return c == nil || c.client == nil
}

func (c *Cache) warnOnce(err error) {
	if c == nil {
		return
	}
	if c.warnedUnavailable.CompareAndSwap(false, true) {
		telemetry.Warn("cache.bypass", map[string]any{"error": err.Error()})
	}
}

// GetJSON loads a cached value into out. The bool reports a cache hit.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if c.bypassed() {
		return false, nil
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		c.warnOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores a value under key for ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.bypassed() {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		c.warnOnce(err)
		return err
	}
	return nil
}

// Delete removes a cached key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.bypassed() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.warnOnce(err)
		return err
	}
	return nil
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c.bypassed() {
		return nil
	}
	return c.client.Close()
}
