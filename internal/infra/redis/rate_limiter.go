package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter caps a caller's unsafe requests per fixed window. Each window gets
// its own counter key, so a burst straddling two windows is counted separately.
type RateLimiter struct {
	client RedisClient
	now    func() time.Time
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow counts one request against key. A non-positive limit disables the check.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	bucket := fmt.Sprintf("%s:%d", key, r.now().UnixNano()/int64(window))
	count, err := r.client.Incr(ctx, bucket)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, bucket, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// CallerWriteKey is the counter prefix for a caller's writes.
func CallerWriteKey(caller string) string {
	return fmt.Sprintf("ratelimit:write:%s", caller)
}
