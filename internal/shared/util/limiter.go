package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket. A nil Limiter imposes no limit, so callers
// holding an optional throttle need no guard around it.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter returns a bucket refilled at perSecond tokens with capacity
// burst (floored at 1). A non-positive rate returns the nil, unlimited
// limiter.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow takes n tokens when they are available right now and reports
// whether it got them.
func (l *Limiter) Allow(n int) bool {
	if l == nil {
		return true
	}
	return l.bucket.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}
	return l.bucket.WaitN(ctx, n)
}
