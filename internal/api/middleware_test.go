package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/ratelimit"
)

func TestRateLimitMiddleware(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.RateLimiter = ratelimit.New(0.001, 1)
	})
	defer ts.cleanup()

	first := ts.api.Get("/api/themes", "X-Forwarded-For: 203.0.113.7")
	assert.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Get("/api/themes", "X-Forwarded-For: 203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, second.Body.Bytes()).Code)

	other := ts.api.Get("/api/themes", "X-Forwarded-For: 198.51.100.2")
	assert.Equal(t, http.StatusOK, other.Code, "limits are per client")

	health := ts.api.Get("/health", "X-Forwarded-For: 203.0.113.7")
	assert.Equal(t, http.StatusOK, health.Code, "only /api is limited")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, remote: "10.0.0.2:1234", want: "198.51.100.2"},
		{name: "remote addr", remote: "192.0.2.1:5678", want: "192.0.2.1"},
		{name: "ipv6 remote addr", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "no port", remote: "192.0.2.9", want: "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Writer: &buf, Format: logger.FormatJSON})

	h := requestLogger(log.Logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chart/ghost", nil))

	assert.Contains(t, buf.String(), `"path":"/api/chart/ghost"`)
	assert.Contains(t, buf.String(), `"status":404`)
}
