package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func healthStatus(t *testing.T, db, cache Pinger) (int, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthController(db, cache, "test").Status)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthController_Status(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		db         Pinger
		cache      Pinger
		wantCode   int
		wantStatus string
		wantCache  string
	}{
		{"healthy without cache", stubPinger{}, nil, http.StatusOK, "healthy", "disabled"},
		{"healthy with cache", stubPinger{}, stubPinger{}, http.StatusOK, "healthy", "ok"},
		{"cache down degrades", stubPinger{}, stubPinger{err: down}, http.StatusOK, "degraded", "error: connection refused"},
		{"database down", stubPinger{err: down}, stubPinger{}, http.StatusServiceUnavailable, "unhealthy", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := healthStatus(t, tt.db, tt.cache)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantCache, resp.Checks["cache"])
			assert.Equal(t, "test", resp.Version)
		})
	}
}

func TestHealthController_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", NewHealthController(nil, nil, "").Ping)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
