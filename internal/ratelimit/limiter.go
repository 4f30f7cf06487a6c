// Package ratelimit throttles write endpoints per client IP using a fixed
// window counter in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pvcommunity/internal/community"
)

// Limiter allows up to Limit hits per IP within Window.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLimiter builds limiter.
func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Hour
	}
	return &Limiter{client: client, limit: int64(limit), window: window}
}

// Allow counts one hit for ip and returns ErrRateLimited once the window
// quota is spent. The window starts with the first hit.
func (l *Limiter) Allow(ctx context.Context, ip string) error {
	key := fmt.Sprintf("ratelimit:submit:%s", ip)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return err
		}
	}
	if count > l.limit {
		return fmt.Errorf("ip %s: %w", ip, community.ErrRateLimited)
	}
	return nil
}
