package ratelimit

import (
	"context"
	"time"

	"github.com/smallbiznis/pixelift/internal/config"
	"go.uber.org/zap"
)

// RemovalLimiter throttles background-removal calls per user. When the
// limiter is disabled (or redis is unavailable at startup) every call
// is allowed.
type RemovalLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
	rate   float64
	burst  int
}

func NewRemovalLimiter(cfg config.Config, log *zap.Logger, bucket *TokenBucket) *RemovalLimiter {
	return &RemovalLimiter{
		bucket: bucket,
		log:    log.Named("ratelimit.removal"),
		rate:   cfg.RateLimit.RemovalRate,
		burst:  cfg.RateLimit.RemovalBurst,
	}
}

func (l *RemovalLimiter) Allow(ctx context.Context, clerkID string) (bool, time.Duration) {
	if l == nil || l.bucket == nil {
		return true, 0
	}

	result, err := l.bucket.Allow(ctx, "ratelimit:removal:"+clerkID, l.rate, l.burst)
	if err != nil {
		// Fail open: a broken limiter must not take the product down.
		l.log.Warn("rate limit check failed", zap.Error(err))
		return true, 0
	}
	return result.Allowed, result.RetryAfter
}
