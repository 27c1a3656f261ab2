package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/internal/config"
	"taxipulse/internal/services"
)

func newHealthRouter(t *testing.T, warm bool) chi.Router {
	t.Helper()

	hub := &services.MockWebSocketHub{}
	hub.On("ClientCount").Return(2)

	paths := config.PathsConfig{DataDir: t.TempDir()}
	health := services.NewHealthService("1.2.3", "2026-08-01T00:00:00Z", paths,
		newDashboardService(t, warm), hub, testLogger())
	handler := NewHealthHandler(health, testLogger())

	r := chi.NewRouter()
	r.Get("/api/health", handler.HealthCheck)
	r.Get("/api/health/ready", handler.ReadinessCheck)
	r.Get("/api/health/live", handler.LivenessCheck)
	r.Get("/api/health/stats", handler.Stats)
	r.Get("/api/version", handler.Version)
	return r
}

func TestHealthCheck(t *testing.T) {
	rec := doRequest(t, newHealthRouter(t, false), "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestReadinessCheck_BeforeWarmup(t *testing.T) {
	rec := doRequest(t, newHealthRouter(t, false), "/api/health/ready")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not_ready", body["status"])

	dataset := body["services"].(map[string]interface{})["dataset"].(map[string]interface{})
	assert.Equal(t, "not_ready", dataset["status"])
	assert.Contains(t, dataset["message"], "still loading")
}

func TestReadinessCheck_AfterWarmup(t *testing.T) {
	rec := doRequest(t, newHealthRouter(t, true), "/api/health/ready")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestLivenessCheck(t *testing.T) {
	rec := doRequest(t, newHealthRouter(t, false), "/api/health/live")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", decodeBody(t, rec)["status"])
}

func TestVersion(t *testing.T) {
	rec := doRequest(t, newHealthRouter(t, false), "/api/version")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "2026-08-01T00:00:00Z", body["build_time"])
}

func TestStats(t *testing.T) {
	rec := doRequest(t, newHealthRouter(t, true), "/api/health/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats services.SystemStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.SampleRows)
	assert.Equal(t, 2, stats.WebSocketClients)
}
