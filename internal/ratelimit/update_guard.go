package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pvcommunity/internal/community"
)

// UpdateGuard caps resubmissions per installation per calendar month so a
// single hash cannot churn the statistics. Keys are stamped with the
// current month and expire on their own.
type UpdateGuard struct {
	client *redis.Client
	limit  int64
}

// NewUpdateGuard builds guard.
func NewUpdateGuard(client *redis.Client, limit int) *UpdateGuard {
	return &UpdateGuard{client: client, limit: int64(limit)}
}

// Allow counts one update for hash in the current month and returns
// ErrTooManyUpdates over the cap.
func (g *UpdateGuard) Allow(ctx context.Context, hash string) error {
	now := time.Now().UTC()
	key := fmt.Sprintf("updates:%s:%s", hash, now.Format("2006-01"))
	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		// Outlives the month it guards, then disappears.
		if err := g.client.Expire(ctx, key, 40*24*time.Hour).Err(); err != nil {
			return err
		}
	}
	if count > g.limit {
		return fmt.Errorf("anlage %s: %w", hash, community.ErrTooManyUpdates)
	}
	return nil
}
