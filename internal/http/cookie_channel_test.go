package httpx

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naidizakupku/portal/internal/ports"
)

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestCookieChannel_SetWritesLaxHttpOnlyCookie(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/init", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	ch := NewCookieChannel(rec, req, "naidizakupku.ru")

	require.NoError(t, ch.Set(ctx, ports.SlotToken, "tok", 30*24*time.Hour))

	c := responseCookies(rec)[CookieToken]
	require.NotNil(t, c)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, "naidizakupku.ru", c.Domain)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 30*24*60*60, c.MaxAge)

	v, ok, err := ch.Get(ctx, ports.SlotToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v, "writes are visible to the same request")
}

func TestCookieChannel_SessionSlotIsBase64(t *testing.T) {
	ctx := context.Background()
	rec := httptest.NewRecorder()
	ch := NewCookieChannel(rec, httptest.NewRequest(http.MethodGet, "/", nil), "")

	require.NoError(t, ch.Set(ctx, ports.SlotSession, `{"sessionId":"s"}`, time.Hour))

	c := responseCookies(rec)[CookieUserData]
	require.NotNil(t, c)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString([]byte(`{"sessionId":"s"}`)), c.Value)
	assert.False(t, c.Secure)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(c)
	v, ok, err := NewCookieChannel(httptest.NewRecorder(), next, "").Get(ctx, ports.SlotSession)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"sessionId":"s"}`, v)
}

func TestCookieChannel_DeleteExpiresCookie(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: CookieSessionID, Value: "sid"})
	rec := httptest.NewRecorder()
	ch := NewCookieChannel(rec, req, "")

	v, ok, err := ch.Get(ctx, ports.SlotSessionID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "sid", v)

	require.NoError(t, ch.Delete(ctx, ports.SlotSessionID))

	c := responseCookies(rec)[CookieSessionID]
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
	assert.Empty(t, c.Value)
	_, ok, err = ch.Get(ctx, ports.SlotSessionID)
	require.NoError(t, err)
	assert.False(t, ok, "deleted slot hides the request cookie")
}

func TestCookieChannel_Errors(t *testing.T) {
	ctx := context.Background()
	ch := NewCookieChannel(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "")

	assert.Error(t, ch.Set(ctx, ports.Slot("bogus"), "v", time.Hour))
	assert.Error(t, ch.Set(ctx, ports.SlotToken, strings.Repeat("a", maxCookieBytes), time.Hour))

	_, ok, err := ch.Get(ctx, ports.SlotToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieChannel_UndecodableSessionCookieIsAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserData, Value: "%%%"})

	_, ok, err := NewCookieChannel(httptest.NewRecorder(), req, "").Get(context.Background(), ports.SlotSession)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieChannel_MaxAgeRounding(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want int
	}{
		{name: "sub-second expiry stays persistent", ttl: 300 * time.Millisecond, want: 1},
		{name: "fraction rounds up", ttl: 1500 * time.Millisecond, want: 2},
		{name: "whole seconds", ttl: time.Minute, want: 60},
		{name: "zero uses default", ttl: 0, want: 30 * 24 * 60 * 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ch := NewCookieChannel(rec, httptest.NewRequest(http.MethodGet, "/", nil), "")

			require.NoError(t, ch.Set(context.Background(), ports.SlotToken, "tok", tt.ttl))

			c := responseCookies(rec)[CookieToken]
			require.NotNil(t, c)
			assert.Equal(t, tt.want, c.MaxAge)
		})
	}
}
