package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/naidizakupku/portal/internal/ports"
)

// Edge-readable credential cookies.
const (
	CookieSessionID = "telegram_session_id"
	CookieToken     = "telegram_token"
	CookieUserData  = "telegram_user_data"
)

// defaultCookieTTL applies when a channel write carries no lifetime.
const defaultCookieTTL = 30 * 24 * time.Hour

// maxCookieBytes is the per-cookie limit browsers reliably honour.
const maxCookieBytes = 4096

//nolint:gochecknoglobals // static read-only slot mapping
var slotCookies = map[ports.Slot]string{
	ports.SlotSessionID: CookieSessionID,
	ports.SlotToken:     CookieToken,
	ports.SlotSession:   CookieUserData,
}

// CookieForSlot returns the edge cookie name mirroring slot.
func CookieForSlot(slot ports.Slot) (string, bool) {
	name, ok := slotCookies[slot]
	return name, ok
}

// isSecure reports whether the request arrived over TLS, directly or behind a proxy.
func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setCookie writes a lax, HttpOnly cookie living for ttl.
func setCookie(w http.ResponseWriter, r *http.Request, c cookieSpec) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAgeSeconds(c.TTL),
	})
}

// maxAgeSeconds rounds ttl up to whole seconds. A Max-Age of 0 would turn the
// cookie into a session cookie, so any positive ttl yields at least 1.
func maxAgeSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		ttl = defaultCookieTTL
	}
	return int((ttl + time.Second - 1) / time.Second)
}

// clearCookie expires a cookie immediately. It mirrors the attributes used
// when setting so every browser matches and drops it.
func clearCookie(w http.ResponseWriter, r *http.Request, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// cookieSpec groups the values of setCookie.
type cookieSpec struct {
	Name   string
	Value  string
	Domain string
	TTL    time.Duration
}

// hasCookie reports whether a non-empty cookie named name was sent.
func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}
