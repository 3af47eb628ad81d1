package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samijaber1/poolwatch/internal/metrics"
	"github.com/samijaber1/poolwatch/internal/watch"
)

func newTestServer(ready bool) (*Server, *watch.StatusCache) {
	status := watch.NewStatusCache()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.LinesProcessedTotal.Inc()

	s := NewServer(status, func() bool { return ready }, reg, ":0", zerolog.Nop())
	return s, status
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(true)

	rec := doRequest(t, s, http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestReadyzNotReady(t *testing.T) {
	s, _ := newTestServer(false)

	rec := doRequest(t, s, http.MethodGet, "/readyz")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.NotEmpty(t, body.Reasons)
}

func TestReadyzReady(t *testing.T) {
	s, _ := newTestServer(true)

	rec := doRequest(t, s, http.MethodGet, "/readyz")

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusReflectsSnapshot(t *testing.T) {
	s, status := newTestServer(true)
	status.Set(watch.Status{
		CurrentPool:       "green",
		WindowLen:         42,
		ErrorRatioPercent: 1.5,
		ErrorRatioDefined: true,
		LinesProcessed:    1000,
	})

	rec := doRequest(t, s, http.MethodGet, "/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	var body watch.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "green", body.CurrentPool)
	assert.Equal(t, 42, body.WindowLen)
	assert.Equal(t, int64(1000), body.LinesProcessed)
	assert.True(t, body.ErrorRatioDefined)
}

func TestStatusMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(true)

	rec := doRequest(t, s, http.MethodPost, "/v1/status")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(true)

	rec := doRequest(t, s, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "poolwatch_lines_processed_total")
}
