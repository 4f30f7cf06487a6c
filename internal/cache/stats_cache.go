// Package cache keeps rendered statistics payloads in Redis so the
// aggregation passes do not run on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyGesamtStatistik = "stats:gesamt"
	keyGesamtwerte     = "stats:totals"
)

// StatsCache is a JSON cache for the two community-wide payloads. TTL
// bounds staleness between submissions that bypass invalidation.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache builds cache with given TTL.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// GetGesamtStatistik loads the cached payload into dst. Returns false on
// miss; Redis errors are reported as misses with the error attached.
func (c *StatsCache) GetGesamtStatistik(ctx context.Context, dst any) (bool, error) {
	return c.get(ctx, keyGesamtStatistik, dst)
}

// SetGesamtStatistik stores the payload.
func (c *StatsCache) SetGesamtStatistik(ctx context.Context, v any) error {
	return c.set(ctx, keyGesamtStatistik, v)
}

// GetGesamtwerte loads the cached lifetime totals into dst.
func (c *StatsCache) GetGesamtwerte(ctx context.Context, dst any) (bool, error) {
	return c.get(ctx, keyGesamtwerte, dst)
}

// SetGesamtwerte stores the lifetime totals.
func (c *StatsCache) SetGesamtwerte(ctx context.Context, v any) error {
	return c.set(ctx, keyGesamtwerte, v)
}

// Invalidate drops both payloads. Called after every accepted submission
// or deletion.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keyGesamtStatistik, keyGesamtwerte).Err()
}

func (c *StatsCache) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *StatsCache) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
