package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/naidizakupku/portal/config"
)

// InitLogger installs a JSON slog logger writing to w as the process default.
// Development mode logs at debug level.
func InitLogger(w io.Writer, isDev bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isDev {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads an optional .env file, then the environment, and applies
// Sanitize. Variables already set in the environment win over the file.
func LoadConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env file: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig fails when SERVICES does not name at least one known mode.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	if _, err := cfg.GetEnabledServices(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}
	return nil
}

// GetEnabledServices returns the sorted names of enabled services, or none
// when the configuration is invalid.
func GetEnabledServices(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	enabled, err := cfg.GetEnabledServices()
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(enabled))
	for _, mode := range slices.Sorted(maps.Keys(enabled)) {
		names = append(names, string(mode))
	}
	return names
}
