package config

import (
	"strings"
	"time"
)

const (
	defaultBackendTimeout = 5 * time.Second
	maxBackendTimeout     = 30 * time.Second
)

// BackendConfig describes where the backend API can be reached.
//
// When BaseURL (BACKEND_BASE_URL) is set it is the only candidate. Otherwise
// the loopback base is tried first and the public origin plus reverse-proxy
// prefix second.
type BackendConfig struct {
	BaseURL          string        `env:"BASE_URL"`
	LoopbackBaseURL  string        `env:"LOOPBACK_BASE_URL"  envDefault:"http://localhost:9000/api"`
	PublicOrigin     string        `env:"PUBLIC_ORIGIN"      envDefault:"https://naidizakupku.ru"`
	PublicPathPrefix string        `env:"PUBLIC_PATH_PREFIX" envDefault:"/api/backend/api"`
	Timeout          time.Duration `env:"TIMEOUT"            envDefault:"5s"`
	UserAgent        string        `env:"USER_AGENT"         envDefault:"naidizakupku-portal"`
}

// Sanitize trims trailing slashes and clamps the per-attempt timeout.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = trimBase(b.BaseURL)
	b.LoopbackBaseURL = trimBase(b.LoopbackBaseURL)
	b.PublicOrigin = trimBase(b.PublicOrigin)

	prefix := strings.TrimSpace(b.PublicPathPrefix)
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	b.PublicPathPrefix = prefix

	if b.Timeout <= 0 {
		b.Timeout = defaultBackendTimeout
	}
	if b.Timeout > maxBackendTimeout {
		b.Timeout = maxBackendTimeout
	}
}

// HasOverride reports whether an explicit base URL replaces the defaults.
func (b *BackendConfig) HasOverride() bool {
	return b.BaseURL != ""
}

func trimBase(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
