package middlewares

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

// statusWriter records what the handler sent and stamps X-Response-Time just
// before the header goes out.
type statusWriter struct {
	http.ResponseWriter
	start  time.Time
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
	w.Header().Set("X-Response-Time", time.Since(w.start).String())
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// AccessLog times each request, sets X-Response-Time and writes one log line.
// Server errors log at error level, client errors at warn, the rest at info.
func AccessLog(log hclog.Logger, ips *ClientIP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, start: time.Now()}
			next.ServeHTTP(sw, r)
			if sw.status == 0 {
				// nothing written; net/http will send 200 with an empty body
				sw.WriteHeader(http.StatusOK)
			}

			l := Logger(r, log)
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration", time.Since(sw.start),
				"remote", ips.From(r),
			}
			switch {
			case sw.status >= 500:
				l.Error("request", args...)
			case sw.status >= 400:
				l.Warn("request", args...)
			default:
				l.Info("request", args...)
			}
		})
	}
}
