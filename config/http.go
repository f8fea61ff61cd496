package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for credential cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// PagesOrigin is the origin of the page renderer that serves everything
	// outside /api. Requests are reverse proxied to it after the edge filter.
	// Empty means non-API paths answer 404.
	PagesOrigin string `env:"PAGES_ORIGIN" envDefault:""`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Addr = strings.TrimSpace(h.Addr)
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	h.CookieDomain = sanitizeCookieDomain(h.CookieDomain)
	h.PagesOrigin = strings.TrimRight(strings.TrimSpace(h.PagesOrigin), "/")
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// sanitizeCookieDomain drops a domain that browsers would reject outright:
// a bare public suffix such as "ru" or "co.uk".
func sanitizeCookieDomain(raw string) string {
	d := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
	if d == "" {
		return ""
	}
	if suffix, _ := publicsuffix.PublicSuffix(d); suffix == d {
		return ""
	}
	return d
}
