package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/book-records/internal/api/apperr"
	"github.com/hashicorp/go-hclog"
)

// Recovery turns a handler panic into a 500 problem response and logs the
// stack. Internal details never reach the client.
func Recovery(log hclog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					Logger(r, log).Error("panic serving request",
						"method", r.Method,
						"path", r.URL.Path,
						"panic", err,
						"stack", string(debug.Stack()),
					)
					apperr.Write(w, r, apperr.Problem{Status: http.StatusInternalServerError})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
