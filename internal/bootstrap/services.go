package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/naidizakupku/portal/config"
	"github.com/naidizakupku/portal/internal/adapters/backend"
	redisadapter "github.com/naidizakupku/portal/internal/adapters/redis"
	"github.com/naidizakupku/portal/internal/adapters/telegram"
	"github.com/naidizakupku/portal/internal/core"
	httpx "github.com/naidizakupku/portal/internal/http"
	"github.com/naidizakupku/portal/internal/observability/metrics"
	"github.com/naidizakupku/portal/internal/ports"
	"github.com/naidizakupku/portal/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Backend  *backend.Client
	Cache    *redisadapter.CacheRepo
	Channels *redisadapter.ClientChannelFactory
	Auth     *httpx.AuthHandlers
	Bot      *httpx.BotHandlers
	Content  *service.ContentService
	Warmer   *service.WarmerService
	Metrics  MetricsContainer
}

// MetricsContainer groups the Prometheus registry and the recorder writing to it.
type MetricsContainer struct {
	Registry *prometheus.Registry
	Recorder *metrics.Recorder
}

// Handler returns the exposition handler for the registry.
func (m MetricsContainer) Handler() http.Handler {
	return metrics.Handler(m.Registry)
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient // Optional: without it credentials cannot be kept
	HTTPClient  *http.Client          // Optional: backend transport
	Logger      *slog.Logger
}

// NewServices wires adapters and services from configuration.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := buildMetrics(cfg.Observability.Metrics)
	client := newBackendClient(cfg.Backend, deps.HTTPClient, logger, m.Recorder)

	container := ServiceContainer{
		Backend: client,
		Bot:     &httpx.BotHandlers{Gateway: client, Logger: logger},
		Metrics: m,
	}

	var cacheRepo core.CacheRepository
	if deps.RedisClient != nil {
		container.Cache = redisadapter.NewCacheRepo(deps.RedisClient)
		container.Channels = redisadapter.NewClientChannelFactory(deps.RedisClient, cfg.Redis.KeyPrefix, cfg.Auth.CredentialTTL)
		cacheRepo = container.Cache
	} else {
		logger.Warn("redis unavailable; auth routes and proxy cache disabled")
	}

	content, err := newContentService(cfg, cacheRepo, client, logger, m.Recorder)
	if err != nil {
		return ServiceContainer{}, err
	}
	container.Content = content

	if container.Channels != nil {
		container.Auth = newAuthHandlers(cfg, container.Channels, cacheRepo, client, logger, m.Recorder)
	}

	if cfg.IsWarmerEnabled() {
		warmer, werr := service.NewWarmerService(service.WarmerServiceOptions{
			Resources: content.Resources(),
			Interval:  cfg.Proxy.WarmInterval,
			Logger:    logger,
		})
		if werr != nil {
			return ServiceContainer{}, fmt.Errorf("build warmer: %w", werr)
		}
		container.Warmer = warmer
	}

	return container, nil
}

func buildMetrics(cfg config.ObservabilityMetricsConfig) MetricsContainer {
	if !cfg.IsEnabled() {
		return MetricsContainer{}
	}
	reg := metrics.NewRegistry()
	return MetricsContainer{Registry: reg, Recorder: metrics.NewRecorder(reg)}
}

func newBackendClient(
	cfg config.BackendConfig,
	httpClient *http.Client,
	logger *slog.Logger,
	rec *metrics.Recorder,
) *backend.Client {
	fetcher := backend.NewFetcher(backend.FetcherOptions{
		Client:    httpClient,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
		Metrics:   rec,
	})
	return backend.NewClient(backend.NewResolver(cfg), fetcher)
}

func newContentService(
	cfg *config.AppConfig,
	cache core.CacheRepository,
	gateway ports.ContentGateway,
	logger *slog.Logger,
	rec *metrics.Recorder,
) (*service.ContentService, error) {
	var resourceCache *core.ResourceCacheService
	if cache != nil {
		resourceCache = core.NewResourceCacheService(cache, core.ResourceCacheConfig{
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Proxy.CacheTTL,
		})
	}
	svc, err := service.NewContentService(service.ContentServiceOptions{
		Gateway:  gateway,
		Cache:    resourceCache,
		NewsExpr: cfg.Proxy.NewsExpr,
		InfoExpr: cfg.Proxy.InfoExpr,
		Logger:   logger,
		Metrics:  rec,
	})
	if err != nil {
		return nil, fmt.Errorf("build content service: %w", err)
	}
	return svc, nil
}

func newAuthHandlers(
	cfg *config.AppConfig,
	channels *redisadapter.ClientChannelFactory,
	cache core.CacheRepository,
	gateway ports.AuthGateway,
	logger *slog.Logger,
	rec *metrics.Recorder,
) *httpx.AuthHandlers {
	return &httpx.AuthHandlers{
		Gateway:   gateway,
		Extractor: telegram.NewExtractor(),
		ClientChannel: func(device string) ports.CredentialChannel {
			return channels.For(device)
		},
		Fence:         service.NewAuthFence(cache, cfg.Redis.KeyPrefix, cfg.Auth.FenceTTL),
		CredentialTTL: cfg.Auth.CredentialTTL,
		CookieDomain:  cfg.HTTP.CookieDomain,
		InitHeader:    cfg.Auth.TelegramInitHeader,
		Logger:        logger,
		Metrics:       rec,
	}
}

// ServiceOrchestrationConfig contains everything needed to run the enabled services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunServices(ctx, cfg)
}

// RunServices runs the enabled services until ctx is done or one of them fails.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		serveErr := make(chan error, 1)
		server, startErr := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		}, serveErr)
		if startErr != nil {
			return startErr
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case e := <-serveErr:
				return e
			}
			return ShutdownHTTPServer(ShutdownConfig{
				Context: context.WithoutCancel(gctx),
				Server:  server,
				Timeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeWarmer] && cfg.Services.Warmer != nil {
		logger.InfoContext(gctx, "background service started", "service", "warmer")
		g.Go(func() error {
			if runErr := cfg.Services.Warmer.Run(gctx); runErr != nil {
				return fmt.Errorf("warmer failed: %w", runErr)
			}
			logger.Info("warmer stopped")
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		logger.Error("service error", "error", err)
	}
	return err
}

// shutdownWaitTimeout bounds how long main waits for Redis to close.
const shutdownWaitTimeout = 5 * time.Second

// CloseRedis closes the Redis client, logging instead of failing.
func CloseRedis(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	done := make(chan error, 1)
	go func() { done <- client.Close() }()
	select {
	case err := <-done:
		if err != nil && logger != nil {
			logger.Warn("close redis client", "error", err)
		}
	case <-time.After(shutdownWaitTimeout):
		if logger != nil {
			logger.Warn("timeout closing redis client")
		}
	}
}
