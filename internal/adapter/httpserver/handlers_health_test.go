package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/ai-future-predictor/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-future-predictor/internal/config"
)

func TestHealthHandler(t *testing.T) {
	srv := httpserver.NewServer(config.Config{AppEnv: "test", AppVersion: "1.2.3"}, nil, nil, nil, nil, nil, nil)
	w := httptest.NewRecorder()
	srv.HealthHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestReadyzHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	bad := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		db, redis  func(context.Context) error
		wantStatus int
		wantChecks int
	}{
		{"all ok", ok, ok, http.StatusOK, 2},
		{"redis not configured", ok, nil, http.StatusOK, 1},
		{"db down", bad, ok, http.StatusServiceUnavailable, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpserver.NewServer(config.Config{}, nil, nil, nil, nil, tt.db, tt.redis)
			w := httptest.NewRecorder()
			srv.ReadyzHandler()(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Checks []struct {
					Name    string `json:"name"`
					OK      bool   `json:"ok"`
					Details string `json:"details"`
				} `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Len(t, body.Checks, tt.wantChecks)
		})
	}
}
