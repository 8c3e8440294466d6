package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func windowKey(key string, window time.Duration, now time.Time) string {
	slot := now.UnixNano() / int64(window)
	return "ratelimit:" + key + ":" + strconv.FormatInt(slot, 10)
}

// RateLimiter is a fixed-window request counter shared by every server
// instance pointed at the same Redis.
type RateLimiter struct {
	client *Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per key per window.
func NewRateLimiter(client *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := windowKey(key, l.window, l.now())

	var incr *redis.IntCmd
	_, err := l.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}
