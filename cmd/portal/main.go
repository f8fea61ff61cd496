package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/naidizakupku/portal/config"
	"github.com/naidizakupku/portal/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(os.Stdout, err == nil && cfg.IsDev)
	if err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	if err = run(ctx, logger, &cfg); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) error {
	logStartupInfo(ctx, logger, cfg)

	if err := bootstrap.ValidateServiceConfig(cfg); err != nil {
		return err
	}

	redisClient, err := bootstrap.ConnectRedis(bootstrap.RedisConnectConfig{
		Redis:  cfg.Redis,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer bootstrap.CloseRedis(redisClient, logger)

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting portal service",
		"backend_override", cfg.Backend.HasOverride(),
		"pages_origin", cfg.HTTP.PagesOrigin,
		"enabled_services", bootstrap.GetEnabledServices(cfg))
}
