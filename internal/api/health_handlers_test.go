package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribgraph/contribgraph-server/internal/logger"
)

type brokenCache struct{}

func (brokenCache) Ping(context.Context) error { return errors.New("closed") }

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))

	var healthResp HealthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &healthResp)
	require.NoError(t, err)

	assert.Equal(t, "healthy", healthResp.Status)
	assert.Equal(t, "dev", healthResp.Version)
	assert.Equal(t, "healthy", healthResp.Components["cache"].Status)
}

func TestCheckCache(t *testing.T) {
	tests := []struct {
		name  string
		cache Pinger
		want  string
	}{
		{name: "not configured", cache: nil, want: "degraded"},
		{name: "ping fails", cache: brokenCache{}, want: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{cache: tt.cache, logger: logger.Discard()}
			assert.Equal(t, tt.want, s.checkCache(context.Background()).Status)
		})
	}
}
