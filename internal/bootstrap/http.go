package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/naidizakupku/portal/config"
	httpx "github.com/naidizakupku/portal/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router and wraps it in middleware.
// Order: Recover -> Logging -> Router.
func BuildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	if cfg == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Auth:              cfg.Services.Auth,
		Bot:               cfg.Services.Bot,
		ProtectedPrefixes: appCfg.Auth.ProtectedPrefixes,
		DeviceCookie:      appCfg.Auth.DeviceCookie,
		CookieDomain:      appCfg.HTTP.CookieDomain,
		PagesOrigin:       appCfg.HTTP.PagesOrigin,
		Recorder:          cfg.Services.Metrics.Recorder,
		Logger:            logger,
	}
	if cfg.Services.Cache != nil {
		services.Ready = cfg.Services.Cache
	}
	if cfg.Services.Content != nil {
		services.Content = &httpx.ContentHandlers{Svc: cfg.Services.Content}
	}
	if appCfg.Observability.Metrics.IsEnabled() && cfg.Services.Metrics.Registry != nil {
		services.Metrics = cfg.Services.Metrics.Handler()
		services.MetricsPath = appCfg.Observability.Metrics.Path
	}

	router, err := httpx.NewRouter(services)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	h := httpx.Logging(logger)(router)
	h = httpx.Recover(logger)(h)
	return h, nil
}

// StartHTTPServer binds the listener and serves in the background. Bind
// errors are returned synchronously; serve errors are sent on errCh.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) (*http.Server, error) {
	handler, err := BuildHTTPHandler(cfg)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpCfg := config.HTTPConfig{}
	if cfg.Config != nil {
		httpCfg = cfg.Config.HTTP
	}
	httpCfg.Sanitize()

	server := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           handler,
		ReadTimeout:       httpCfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      httpCfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", server.Addr, err)
	}

	go func() {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", serveErr)
			if errCh != nil {
				errCh <- fmt.Errorf("http server: %w", serveErr)
			}
		}
	}()

	return server, nil
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
