package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naidizakupku/portal/internal/observability/metrics"
)

func TestNewRouter_UnknownAPIRoute(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])
	assert.Zero(t, len(h.pages.Calls()), "api paths never reach the page renderer")
}

func TestNewRouter_PagesProxy(t *testing.T) {
	h := newHarness(t)
	h.pages.JSON("GET /about", http.StatusOK, map[string]string{"page": "about"})

	resp, body := h.do(http.MethodGet, "/about?ref=tg", "", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "about", body["page"])
	calls := h.pages.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ref=tg", calls[0].Query)
	assert.NotEmpty(t, calls[0].Header.Get("X-Forwarded-For"))
}

func TestNewRouter_WithoutPagesOrigin(t *testing.T) {
	router, err := NewRouter(RouterServices{})
	require.NoError(t, err)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_RejectsRelativePagesOrigin(t *testing.T) {
	_, err := NewRouter(RouterServices{PagesOrigin: "pages.local"})
	assert.Error(t, err)
}

func TestNewRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	rec.FenceConflict()
	router, err := NewRouter(RouterServices{Metrics: metrics.Handler(reg), MetricsPath: "/metrics", Recorder: rec})
	require.NoError(t, err)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_auth_fence_conflicts_total 1")
}

func TestNewRouter_Readiness(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	h.mr.Close()
	resp, body = h.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", body["status"])
}
