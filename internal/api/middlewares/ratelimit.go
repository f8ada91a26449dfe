package middlewares

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/5w1tchy/book-records/internal/api/apperr"
	"github.com/hashicorp/go-hclog"
)

type KeyFunc func(r *http.Request) string

// Decision is a limiter's answer for one request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter takes one unit from the budget of key.
type Limiter interface {
	Policy() string
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimit rejects requests over l's budget with 429. When the limiter
// itself fails the request is let through.
func RateLimit(l Limiter, key KeyFunc, log hclog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			d, err := l.Allow(r.Context(), k)
			if err != nil {
				Logger(r, log).Warn("rate limiter unavailable, allowing request", "policy", l.Policy(), "error", err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Policy", l.Policy())
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))

			if !d.Allowed {
				sec := max(int64(math.Ceil(d.RetryAfter.Seconds())), 1)
				h.Set("Retry-After", strconv.FormatInt(sec, 10))
				Logger(r, log).Info("rate limited", "policy", l.Policy(), "key", k, "retry_after_s", sec)
				apperr.WriteStatus(w, r, http.StatusTooManyRequests, "", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
