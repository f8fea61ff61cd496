package httpx

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naidizakupku/portal/internal/observability/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestEdgeAccessFilter(t *testing.T) {
	prefixes := []string{"/tenders", "/my-purchases", "/profile"}
	tests := []struct {
		name       string
		path       string
		cookies    []*http.Cookie
		wantStatus int
	}{
		{name: "public page", path: "/", wantStatus: http.StatusOK},
		{name: "protected without cookies", path: "/tenders", wantStatus: http.StatusTemporaryRedirect},
		{name: "protected subpath without cookies", path: "/profile/settings", wantStatus: http.StatusTemporaryRedirect},
		{name: "similar prefix is public", path: "/profiles", wantStatus: http.StatusOK},
		{
			name:       "token cookie passes",
			path:       "/my-purchases",
			cookies:    []*http.Cookie{{Name: CookieToken, Value: "tok"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "session id cookie passes",
			path:       "/tenders/42",
			cookies:    []*http.Cookie{{Name: CookieSessionID, Value: "sid"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty cookie does not count",
			path:       "/tenders",
			cookies:    []*http.Cookie{{Name: CookieToken, Value: ""}},
			wantStatus: http.StatusTemporaryRedirect,
		},
		{
			name:       "user data alone does not count",
			path:       "/tenders",
			cookies:    []*http.Cookie{{Name: CookieUserData, Value: "e30"}},
			wantStatus: http.StatusTemporaryRedirect,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := EdgeAccessFilter(prefixes, nil)(okHandler())
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusTemporaryRedirect {
				assert.Equal(t, "/", rec.Header().Get("Location"))
			}
		})
	}
}

func TestEdgeAccessFilter_RecordsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	handler := EdgeAccessFilter([]string{"/tenders"}, rec)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tenders", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "portal_edge_decisions_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.InDelta(t, 1, f.GetMetric()[0].GetCounter().GetValue(), 0)
		}
	}
	assert.True(t, found)
}

func TestDeviceID(t *testing.T) {
	var seen string
	handler := DeviceID("portal_device", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = DeviceFromContext(r.Context())
	}))

	t.Run("issues a device when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

		c := responseCookies(rec)["portal_device"]
		require.NotNil(t, c)
		assert.Equal(t, c.Value, seen)
		assert.True(t, c.HttpOnly)
	})

	t.Run("keeps a valid device", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: "portal_device", Value: "6f1c1b2e-8a52-4a56-9d3e-0c1b2a3d4e5f"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "6f1c1b2e-8a52-4a56-9d3e-0c1b2a3d4e5f", seen)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("replaces a malformed device", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: "portal_device", Value: "../../etc"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.NotEqual(t, "../../etc", seen)
		assert.NotNil(t, responseCookies(rec)["portal_device"])
	})
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestLogging_OmitsQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x?sessionId=secret", nil))

	assert.Contains(t, buf.String(), `"status":418`)
	assert.NotContains(t, buf.String(), "secret")
}
