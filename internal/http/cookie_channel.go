package httpx

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/naidizakupku/portal/internal/ports"
)

var _ ports.CredentialChannel = (*CookieChannel)(nil)

// CookieChannel is the edge-readable credential channel of one request. It
// reads the request's cookies and writes Set-Cookie headers; writes made
// during the request are visible to later reads of the same request.
//
// The cached session slot is stored base64url encoded since raw JSON is not
// a valid cookie value.
type CookieChannel struct {
	w      http.ResponseWriter
	r      *http.Request
	domain string

	mu      sync.Mutex
	pending map[ports.Slot]*string // nil marks a delete
}

// NewCookieChannel binds a channel to one request/response pair.
func NewCookieChannel(w http.ResponseWriter, r *http.Request, domain string) *CookieChannel {
	return &CookieChannel{w: w, r: r, domain: domain, pending: make(map[ports.Slot]*string)}
}

func (c *CookieChannel) Get(_ context.Context, slot ports.Slot) (string, bool, error) {
	name, ok := CookieForSlot(slot)
	if !ok {
		return "", false, fmt.Errorf("unknown credential slot %q", slot)
	}

	c.mu.Lock()
	v, written := c.pending[slot]
	c.mu.Unlock()
	if written {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	cookie, err := c.r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}
	value, err := decodeCookieValue(slot, cookie.Value)
	if err != nil {
		return "", false, nil
	}
	return value, true, nil
}

func (c *CookieChannel) Set(_ context.Context, slot ports.Slot, value string, ttl time.Duration) error {
	name, ok := CookieForSlot(slot)
	if !ok {
		return fmt.Errorf("unknown credential slot %q", slot)
	}
	encoded := EncodeCookieValue(slot, value)
	if len(name)+len(encoded) > maxCookieBytes {
		return fmt.Errorf("cookie %s exceeds %d bytes", name, maxCookieBytes)
	}

	setCookie(c.w, c.r, cookieSpec{Name: name, Value: encoded, Domain: c.domain, TTL: ttl})

	c.mu.Lock()
	c.pending[slot] = &value
	c.mu.Unlock()
	return nil
}

func (c *CookieChannel) Delete(_ context.Context, slot ports.Slot) error {
	name, ok := CookieForSlot(slot)
	if !ok {
		return fmt.Errorf("unknown credential slot %q", slot)
	}
	clearCookie(c.w, c.r, name, c.domain)

	c.mu.Lock()
	c.pending[slot] = nil
	c.mu.Unlock()
	return nil
}

// EncodeCookieValue returns the cookie form of a slot value. The session
// snapshot is base64url encoded so its JSON survives cookie syntax.
func EncodeCookieValue(slot ports.Slot, value string) string {
	if slot == ports.SlotSession {
		return base64.RawURLEncoding.EncodeToString([]byte(value))
	}
	return value
}

func decodeCookieValue(slot ports.Slot, value string) (string, error) {
	if slot != ports.SlotSession {
		return value, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
