package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	mw "github.com/5w1tchy/book-records/internal/api/middlewares"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	d   mw.Decision
	err error
}

func (s stubLimiter) Policy() string { return "stub" }
func (s stubLimiter) Allow(context.Context, string) (mw.Decision, error) {
	return s.d, s.err
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := limited(t, stubLimiter{err: errors.New("dial tcp: connection refused")})

	rec := call(h, "10.0.0.1:1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Policy"))
}

func TestRateLimit_RoundsRetryAfterUp(t *testing.T) {
	h := limited(t, stubLimiter{d: mw.Decision{Limit: 5, RetryAfter: 1500 * time.Millisecond}})

	rec := call(h, "10.0.0.1:1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "stub", rec.Header().Get("X-RateLimit-Policy"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_AllowedPassesHeaders(t *testing.T) {
	h := limited(t, stubLimiter{d: mw.Decision{Allowed: true, Limit: 20, Remaining: 19}})

	rec := call(h, "10.0.0.1:1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "19", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}
