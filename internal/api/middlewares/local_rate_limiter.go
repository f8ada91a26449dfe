package middlewares

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalRateLimiter is an in-process token bucket per key, used when no Redis
// is configured. Limits are per instance, not global.
type LocalRateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu      sync.Mutex
	buckets map[string]*localBucket
	swept   time.Time
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewLocalRateLimiter(ratePerSecond float64, burst int) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		buckets: make(map[string]*localBucket),
	}
}

func (l *LocalRateLimiter) Policy() string { return "token-bucket" }

// Buckets reports how many keys are currently tracked.
func (l *LocalRateLimiter) Buckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *LocalRateLimiter) bucket(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := time.Now()
	lim := l.bucket(key, now)

	res := lim.ReserveN(now, 1)
	d := Decision{Limit: l.burst}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		d.RetryAfter = delay
		return d, nil
	}
	d.Allowed = true
	d.Remaining = int(lim.TokensAt(now))
	return d, nil
}
