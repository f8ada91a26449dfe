package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/book-records/internal/api/httpx"
	"github.com/5w1tchy/book-records/internal/api/middlewares"
	"github.com/hashicorp/go-hclog"
)

// RootHandler sends visitors of "/" to the API description.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/docs", http.StatusFound)
}

// Pinger reports whether the backing store answers.
type Pinger func(ctx context.Context) error

// Health answers 200 while ping succeeds and 503 otherwise.
func Health(ping Pinger, log hclog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			middlewares.Logger(r, log).Warn("health check failed", "error", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
