package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	apperrors "github.com/naidizakupku/portal/internal/errors"
	"github.com/naidizakupku/portal/internal/testutil"
)

func newTestClient(t *testing.T) (*Client, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	return NewClient(NewStaticResolver(fb.URL+"/api"), NewFetcher(FetcherOptions{Timeout: time.Second})), fb
}

func TestClient_ValidateTelegram(t *testing.T) {
	c, fb := newTestClient(t)
	fb.JSON("POST /api/auth/telegram/validate", http.StatusOK, map[string]any{
		"success": true,
		"token":   "jwt",
		"session": map[string]any{
			"sessionId":  "s-1",
			"telegramId": 42,
			"firstName":  "Ivan",
			"isActive":   true,
			"createdAt":  "2025-03-01T10:00:00",
		},
	})

	resp, err := c.ValidateTelegram(context.Background(), domainauth.IdentityClaim{
		ID: 42, FirstName: "Ivan", AuthDate: 1700000000, Hash: "h", QueryID: "AAH",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "jwt", resp.Token)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "s-1", resp.Session.SessionID)

	calls := fb.Calls()
	require.Len(t, calls, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.EqualValues(t, 42, sent["id"])
	assert.Equal(t, "Ivan", sent["first_name"])
	assert.Equal(t, "h", sent["hash"])
	assert.Equal(t, "AAH", sent["query_id"])
	assert.NotContains(t, sent, "username", "absent optional fields are omitted")
}

func TestClient_LoginWithCode(t *testing.T) {
	c, fb := newTestClient(t)
	fb.JSON("POST /api/auth/telegram-bot/login", http.StatusOK, map[string]any{"success": false, "error": "expired"})

	resp, err := c.LoginWithCode(context.Background(), 123456)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "expired", resp.Reason())
	assert.JSONEq(t, `{"code":123456}`, string(fb.Calls()[0].Body))
}

func TestClient_LookupSessionSendsCredentials(t *testing.T) {
	c, fb := newTestClient(t)
	fb.JSON("GET /api/auth/telegram/session/s 1", http.StatusOK, map[string]any{
		"success": true,
		"session": map[string]any{"sessionId": "s 1", "telegramId": 1, "firstName": "A", "isActive": true},
	})

	resp, err := c.LookupSession(context.Background(), domainauth.Credentials{SessionID: "s 1", Token: "tok"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	call := fb.Calls()[0]
	assert.Equal(t, "Bearer tok", call.Header.Get("Authorization"))
	assert.Equal(t, "s 1", call.Header.Get("X-Session-ID"))

	_, err = c.LookupSession(context.Background(), domainauth.Credentials{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Len(t, fb.Calls(), 1, "validation failures never reach the backend")
}

func TestClient_VerifyToken(t *testing.T) {
	c, fb := newTestClient(t)
	fb.JSON("GET /api/v1/verify-token", http.StatusOK, map[string]any{
		"success": true, "valid": true,
		"user": map[string]any{"telegramId": 42, "firstName": "Ivan", "username": "iv"},
	})

	resp, err := c.VerifyToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(42), resp.User.TelegramID)
	assert.Equal(t, "Bearer tok", fb.Calls()[0].Header.Get("Authorization"))
	assert.Empty(t, fb.Calls()[0].Header.Get("X-Session-ID"))
}

func TestClient_LogoutVariants(t *testing.T) {
	c, fb := newTestClient(t)
	fb.JSON("DELETE /api/auth/telegram/logout", http.StatusOK, map[string]any{"success": true})
	fb.JSON("DELETE /api/auth/telegram/logout/all", http.StatusOK, map[string]any{"success": true})

	creds := domainauth.Credentials{SessionID: "s-1", Token: "tok"}
	_, err := c.Logout(context.Background(), creds)
	require.NoError(t, err)
	_, err = c.LogoutAll(context.Background(), creds, 42)
	require.NoError(t, err)

	calls := fb.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "sessionId=s-1", calls[0].Query)
	assert.Equal(t, "telegramId=42", calls[1].Query)

	_, err = c.LogoutAll(context.Background(), creds, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_RawPayloads(t *testing.T) {
	c, fb := newTestClient(t)
	fb.JSON("GET /api/news/top", http.StatusOK, []map[string]any{{"id": 1, "title": "t"}})
	fb.Handle("GET /api/admin/common/info", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	})
	fb.JSON("POST /api/auth/telegram-bot/qr-code", http.StatusOK, map[string]any{"qrCode": "data:image/png;base64,AA"})

	news, err := c.NewsTop(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"t"}]`, string(news))

	_, err = c.CommonInfo(context.Background())
	assert.True(t, apperrors.IsRejected(err))

	qr, err := c.BotQRCode(context.Background(), "https://t.me/naidizakupku_bot")
	require.NoError(t, err)
	assert.Contains(t, string(qr), "qrCode")
	assert.JSONEq(t, `{"botUrl":"https://t.me/naidizakupku_bot"}`, string(fb.Calls()[2].Body))

	_, err = c.BotQRCode(context.Background(), "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_DecodeFailureIsRejected(t *testing.T) {
	c, fb := newTestClient(t)
	fb.Handle("GET /api/v1/verify-token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	_, err := c.VerifyToken(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsRejected(err))
}
