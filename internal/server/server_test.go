package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pvrxr/pvrxr/internal/metrics"
	"github.com/pvrxr/pvrxr/internal/probe"
	"github.com/pvrxr/pvrxr/internal/pvr"
	"github.com/pvrxr/pvrxr/internal/pvr/pvrtest"
	"github.com/pvrxr/pvrxr/internal/server"
)

func newTestServer(fake *pvrtest.Fake) *server.Server {
	return server.New(server.DefaultConfig(), fake, metrics.NewRegistry(), zerolog.Nop())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(pvrtest.New())

	rec := get(t, srv.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestStatus(t *testing.T) {
	fake := pvrtest.New()
	fake.Floats[pvr.ConfigClientFPS] = 90
	srv := newTestServer(fake)

	rec := get(t, srv.Handler(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status probe.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.Valid)
	require.InDelta(t, 90, status.RefreshRate, 1e-6)
	require.InDelta(t, 90, status.FPS, 1e-6)
	require.Equal(t, uint32(2560), status.ResolutionWidth)
}

func TestStatus_ProbeFailure(t *testing.T) {
	fake := pvrtest.New()
	fake.Errs["CreateSession"] = &pvr.CallError{Call: "CreateSession", Res: pvr.ResRPCFailed}
	srv := newTestServer(fake)

	rec := get(t, srv.Handler(), "/status")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
}

func TestMetricsExposition(t *testing.T) {
	srv := newTestServer(pvrtest.New())
	h := srv.Handler()

	get(t, h, "/status")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `pvrxr_probe_runs_total{result="ok"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(pvrtest.New())

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
