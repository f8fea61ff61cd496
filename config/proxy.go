package config

import (
	"strings"
	"time"
)

// ProxyConfig controls the degrading news and project statistics proxies.
type ProxyConfig struct {
	// CacheTTL is how long a live backend payload is served from cache.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"300s"`

	// WarmInterval is the refresh period of the warmer service.
	WarmInterval time.Duration `env:"WARM_INTERVAL" envDefault:"4m"`

	// NewsExpr and InfoExpr are JMESPath expressions that pluck the payload
	// out of the backend response.
	NewsExpr string `env:"NEWS_EXPR" envDefault:"not_null(data, @)"`
	InfoExpr string `env:"INFO_EXPR" envDefault:"not_null(data, @)"`
}

// Sanitize applies guardrails to proxy configuration values.
func (p *ProxyConfig) Sanitize() {
	if p.CacheTTL < 0 {
		p.CacheTTL = 0
	}
	if p.WarmInterval < 30*time.Second {
		p.WarmInterval = 30 * time.Second
	}
	if strings.TrimSpace(p.NewsExpr) == "" {
		p.NewsExpr = "not_null(data, @)"
	}
	if strings.TrimSpace(p.InfoExpr) == "" {
		p.InfoExpr = "not_null(data, @)"
	}
}
