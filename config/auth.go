package config

import (
	"net/http"
	"strings"
	"time"
)

// DefaultProtectedPrefixes are the page prefixes gated by the edge filter.
var DefaultProtectedPrefixes = []string{"/tenders", "/my-purchases", "/profile"}

// AuthConfig groups session engine and credential cookie configuration.
type AuthConfig struct {
	// ProtectedPrefixes lists path prefixes that require a credential cookie.
	ProtectedPrefixes []string `env:"AUTH_PROTECTED_PREFIXES" envDefault:"/tenders,/my-purchases,/profile"`

	// CredentialTTL is the lifetime of edge cookies and client-channel entries.
	CredentialTTL time.Duration `env:"AUTH_CREDENTIAL_TTL" envDefault:"720h"`

	// FenceTTL bounds how long one device can hold the auth operation fence.
	FenceTTL time.Duration `env:"AUTH_FENCE_TTL" envDefault:"15s"`

	// TelegramInitHeader carries raw Mini App launch data on auth requests.
	TelegramInitHeader string `env:"AUTH_TELEGRAM_INIT_HEADER" envDefault:"X-Telegram-Init-Data"`

	// DeviceCookie names the cookie holding the opaque device identifier.
	DeviceCookie string `env:"AUTH_DEVICE_COOKIE" envDefault:"portal_device"`
}

// Sanitize normalises prefixes and enforces sane lifetimes.
func (a *AuthConfig) Sanitize() {
	prefixes := make([]string, 0, len(a.ProtectedPrefixes))
	seen := make(map[string]struct{}, len(a.ProtectedPrefixes))
	for _, p := range a.ProtectedPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if len(p) > 1 {
			p = strings.TrimRight(p, "/")
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		prefixes = append(prefixes, p)
	}
	if len(prefixes) == 0 {
		prefixes = append(prefixes, DefaultProtectedPrefixes...)
	}
	a.ProtectedPrefixes = prefixes

	if a.CredentialTTL <= 0 {
		a.CredentialTTL = 30 * 24 * time.Hour
	}
	if a.FenceTTL <= 0 {
		a.FenceTTL = 15 * time.Second
	}
	a.TelegramInitHeader = http.CanonicalHeaderKey(strings.TrimSpace(a.TelegramInitHeader))
	if a.TelegramInitHeader == "" {
		a.TelegramInitHeader = "X-Telegram-Init-Data"
	}
	a.DeviceCookie = strings.TrimSpace(a.DeviceCookie)
	if a.DeviceCookie == "" {
		a.DeviceCookie = "portal_device"
	}
}
