package httpx

import (
	"log/slog"
	"net/http"

	"github.com/naidizakupku/portal/internal/observability/metrics"
)

// RouterServices holds everything the HTTP router serves.
type RouterServices struct {
	Auth    *AuthHandlers
	Bot     *BotHandlers     // Optional
	Content *ContentHandlers // Optional

	// Ready is checked by /readyz. Optional.
	Ready HealthChecker

	// Metrics is mounted at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string

	ProtectedPrefixes []string
	DeviceCookie      string
	CookieDomain      string
	PagesOrigin       string

	Recorder *metrics.Recorder
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	if services.Auth != nil {
		registerAuthRoutes(mux, services.Auth, DeviceID(deviceCookieName(services.DeviceCookie), services.CookieDomain))
	}
	if services.Bot != nil {
		registerBotRoutes(mux, services.Bot)
	}
	if services.Content != nil {
		mux.HandleFunc("GET /api/news/top", services.Content.TopNews)
		mux.HandleFunc("GET /api/admin/common/info", services.Content.ProjectInfo)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Ready, logger))
	if services.Metrics != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.Metrics)
	}

	mux.HandleFunc("/api/", notFound)

	pages, err := newPagesHandler(services.PagesOrigin, logger)
	if err != nil {
		return nil, err
	}
	mux.Handle("/", EdgeAccessFilter(services.ProtectedPrefixes, services.Recorder)(pages))

	return mux, nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, device func(http.Handler) http.Handler) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST /api/auth/init", h.Init},
		{"POST /api/auth/telegram/login", h.TelegramLogin},
		{"POST /api/auth/telegram-bot/login", h.BotLogin},
		{"GET /api/auth/session", h.Session},
		{"GET /api/auth/status", h.Status},
		{"POST /api/auth/token/verify", h.VerifyToken},
		{"POST /api/auth/logout", h.Logout},
		{"POST /api/auth/logout/all", h.LogoutAll},
	}
	for _, rt := range routes {
		mux.Handle(rt.pattern, device(rt.handler))
	}
}

func registerBotRoutes(mux *http.ServeMux, h *BotHandlers) {
	mux.HandleFunc("GET /api/auth/telegram-bot/info", h.Info)
	mux.HandleFunc("POST /api/auth/telegram-bot/qr-code", h.QRCode)
}

func deviceCookieName(name string) string {
	if name == "" {
		return "portal_device"
	}
	return name
}
