package httpx

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	apperrors "github.com/naidizakupku/portal/internal/errors"
)

func TestBotInfo(t *testing.T) {
	t.Run("passes backend payload through", func(t *testing.T) {
		h := newHarness(t)
		h.bot.EXPECT().BotInfo(gomock.Any()).
			Return(json.RawMessage(`{"success":true,"botUsername":"naidizakupku_bot"}`), nil)

		resp, body := h.do(http.MethodGet, "/api/auth/telegram-bot/info", "", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "naidizakupku_bot", body["botUsername"])
	})

	t.Run("backend failure", func(t *testing.T) {
		h := newHarness(t)
		h.bot.EXPECT().BotInfo(gomock.Any()).Return(nil, apperrors.Unavailable("down", nil))

		resp, body := h.do(http.MethodGet, "/api/auth/telegram-bot/info", "", nil)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	})
}

func TestBotQRCode(t *testing.T) {
	t.Run("requires bot url", func(t *testing.T) {
		h := newHarness(t)

		resp, body := h.do(http.MethodPost, "/api/auth/telegram-bot/qr-code", `{"botUrl":"  "}`, nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "botUrl is required", body["error"])
	})

	t.Run("passes backend payload through", func(t *testing.T) {
		h := newHarness(t)
		h.bot.EXPECT().BotQRCode(gomock.Any(), "https://t.me/naidizakupku_bot").
			Return(json.RawMessage(`{"success":true,"qrCode":"data:image/png;base64,AAA"}`), nil)

		resp, body := h.do(http.MethodPost, "/api/auth/telegram-bot/qr-code", `{"botUrl":"https://t.me/naidizakupku_bot"}`, nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "data:image/png;base64,AAA", body["qrCode"])
	})

	t.Run("backend failure", func(t *testing.T) {
		h := newHarness(t)
		h.bot.EXPECT().BotQRCode(gomock.Any(), gomock.Any()).Return(nil, apperrors.Rejected("HTTP 500"))

		resp, body := h.do(http.MethodPost, "/api/auth/telegram-bot/qr-code", `{"botUrl":"https://t.me/x"}`, nil)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, false, body["success"])
	})
}
