package util

import (
	"sync"
	"time"
)

// LimiterRegistry keys token buckets by caller, one per client, and drops
// buckets idle past ttl so one-off clients do not accumulate.
type LimiterRegistry struct {
	mu      sync.Mutex
	buckets map[string]*trackedLimiter

	perSecond float64
	burst     int
	ttl       time.Duration
}

type trackedLimiter struct {
	*Limiter
	seen time.Time
}

// NewLimiterRegistry builds a registry whose per-key buckets refill at
// perSecond with the given burst. A positive ttl starts a background sweep
// at half that interval; a non-positive ttl keeps buckets forever.
func NewLimiterRegistry(perSecond float64, burst int, ttl time.Duration) *LimiterRegistry {
	r := &LimiterRegistry{
		buckets:   make(map[string]*trackedLimiter),
		perSecond: perSecond,
		burst:     burst,
		ttl:       ttl,
	}
	if ttl > 0 {
		go r.sweepLoop(ttl / 2)
	}
	return r
}

// Get returns key's bucket, creating it on first sight.
func (r *LimiterRegistry) Get(key string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracked, ok := r.buckets[key]
	if !ok {
		tracked = &trackedLimiter{Limiter: NewLimiter(r.perSecond, r.burst)}
		r.buckets[key] = tracked
	}
	tracked.seen = time.Now()
	return tracked.Limiter
}

func (r *LimiterRegistry) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-r.ttl)
		r.mu.Lock()
		for key, tracked := range r.buckets {
			if tracked.seen.Before(cutoff) {
				delete(r.buckets, key)
			}
		}
		r.mu.Unlock()
	}
}
