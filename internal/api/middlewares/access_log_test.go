package middlewares_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/5w1tchy/book-records/internal/api/middlewares"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accessLogged(t *testing.T, buf *bytes.Buffer, h http.HandlerFunc) http.Handler {
	t.Helper()
	log := hclog.New(&hclog.LoggerOptions{Output: buf, JSONFormat: true, Level: hclog.Info})
	ips, err := mw.NewClientIP(nil)
	require.NoError(t, err)
	return mw.Chain(h, mw.RequestID, mw.AccessLog(log, ips))
}

func TestAccessLog_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := accessLogged(t, &buf, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/book/nope", nil)
	req.Header.Set("X-Request-ID", "rid-42")
	req.RemoteAddr = "203.0.113.7:5000"
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["@level"])
	assert.Equal(t, "/book/nope", line["path"])
	assert.EqualValues(t, 404, line["status"])
	assert.Equal(t, "rid-42", line["request_id"])
	assert.Equal(t, "203.0.113.7", line["remote"])
}

func TestAccessLog_SetsResponseTime(t *testing.T) {
	var buf bytes.Buffer
	h := accessLogged(t, &buf, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	d, err := time.ParseDuration(rec.Header().Get("X-Response-Time"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 10*time.Millisecond)
}

func TestAccessLog_ResponseTimeWithWriteOnly(t *testing.T) {
	var buf bytes.Buffer
	h := accessLogged(t, &buf, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("test response"))
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))
	assert.Equal(t, "test response", rec.Body.String())
}

func TestAccessLog_ResponseTimeWhenNothingWritten(t *testing.T) {
	var buf bytes.Buffer
	h := accessLogged(t, &buf, func(http.ResponseWriter, *http.Request) {})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))
}
