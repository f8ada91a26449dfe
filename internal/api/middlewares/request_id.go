package middlewares

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// inbound ids are echoed only when they are short and log-safe
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// RequestID tags every request with an id, reusing a well-formed inbound
// X-Request-ID and minting a UUID otherwise. The id is echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if !validRequestID.MatchString(rid) {
			rid = uuid.NewString()
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, rid))
		r.Header.Set(requestIDHeader, rid)
		w.Header().Set(requestIDHeader, rid)

		next.ServeHTTP(w, r)
	})
}

// GetRequestID returns the id RequestID assigned, or "" outside that middleware.
func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(requestIDKey{}).(string)
	return rid
}

// Logger returns base scoped to the request, carrying its request_id.
func Logger(r *http.Request, base hclog.Logger) hclog.Logger {
	if rid := GetRequestID(r); rid != "" {
		return base.With("request_id", rid)
	}
	return base
}
