package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/naidizakupku/portal/internal/ports"
)

// BotHandlers passes the Telegram bot helper endpoints through to the backend.
type BotHandlers struct {
	Gateway ports.BotGateway
	Logger  *slog.Logger
}

func (h *BotHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type qrCodeRequest struct {
	BotURL string `json:"botUrl"`
}

// Info handles GET /api/auth/telegram-bot/info.
func (h *BotHandlers) Info(w http.ResponseWriter, r *http.Request) {
	data, err := h.Gateway.BotInfo(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "fetch bot info failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to fetch bot info")
		return
	}
	WriteJSON(w, http.StatusOK, data)
}

// QRCode handles POST /api/auth/telegram-bot/qr-code with {"botUrl": "..."}.
func (h *BotHandlers) QRCode(w http.ResponseWriter, r *http.Request) {
	var req qrCodeRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	botURL := strings.TrimSpace(req.BotURL)
	if botURL == "" {
		writeFailure(w, http.StatusBadRequest, "botUrl is required")
		return
	}

	data, err := h.Gateway.BotQRCode(r.Context(), botURL)
	if err != nil {
		h.logger().WarnContext(r.Context(), "generate bot qr code failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}
	WriteJSON(w, http.StatusOK, data)
}
