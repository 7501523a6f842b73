// Package ratelimit implements per-IP fixed-window request limits backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:ip:"

// Limiter counts requests per IP and purpose in fixed windows stored in Redis.
type Limiter struct {
	client      redis.UniversalClient
	maxRequests int
	window      time.Duration
}

func NewLimiter(client redis.UniversalClient, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// CheckIPRateLimitWithPurpose reports whether ip has used up its allowance for purpose
// in the current window.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	val, err := l.client.Get(ctx, key(ip, purpose)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return false, fmt.Errorf("invalid rate limit counter %q: %w", val, err)
	}
	return count >= l.maxRequests, nil
}

// RecordIPRequestWithPurpose counts one request. The window starts with the first request.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	k := key(ip, purpose)

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, k)
	// NX keeps the original expiry so the window is fixed, not sliding.
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

func key(ip, purpose string) string {
	return keyPrefix + purpose + ":" + ip
}

// Disabled never limits. It is used when rate limiting is switched off.
type Disabled struct{}

func (Disabled) CheckIPRateLimitWithPurpose(context.Context, string, string) (bool, error) {
	return false, nil
}

func (Disabled) RecordIPRequestWithPurpose(context.Context, string, string) error {
	return nil
}
