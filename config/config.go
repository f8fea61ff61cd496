package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: session engine, credential cookies and the edge filter
//   - backend.go: backend candidate origins and request timeouts
//   - redis.go: Redis connection configuration
//   - http.go: HTTP server configuration
//   - proxy.go: degrading proxy cache and warmer configuration
//   - services.go: service mode configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth    AuthConfig
	Backend BackendConfig `envPrefix:"BACKEND_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	HTTP    HTTPConfig
	Proxy   ProxyConfig `envPrefix:"PROXY_"`

	// Services is a comma separated list of service modes to run.
	Services string `env:"SERVICES" envDefault:"http"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Backend.Sanitize()
	c.Proxy.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks NODE_ENV as a fallback when DEV is unset.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsWarmerEnabled returns true if the proxy cache warmer is enabled.
func (c *AppConfig) IsWarmerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWarmer]
}
