package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	httpx "github.com/naidizakupku/portal/internal/http"
	"github.com/naidizakupku/portal/internal/ports"
)

const stateFileName = "state.json"

// storedValue is one persisted credential with its expiry.
type storedValue struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// stateDoc is the on-disk layout: one section per credential channel.
type stateDoc struct {
	Client map[ports.Slot]storedValue `json:"client"`
	Edge   map[ports.Slot]storedValue `json:"edge"`
}

// stateFile persists both credential channels of the CLI in one 0600 file.
type stateFile struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
	doc  stateDoc
}

// defaultStatePath resolves the state file under the user config directory.
func defaultStatePath() (string, error) {
	if p := os.Getenv("PORTAL_ADMIN_STATE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "portal-admin", stateFileName), nil
}

func openStateFile(path string, now func() time.Time) (*stateFile, error) {
	if now == nil {
		now = time.Now
	}
	s := &stateFile{path: path, now: now}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read state: %w", err)
	default:
		if uerr := json.Unmarshal(raw, &s.doc); uerr != nil {
			return nil, fmt.Errorf("decode state %s: %w", path, uerr)
		}
	}
	if s.doc.Client == nil {
		s.doc.Client = make(map[ports.Slot]storedValue)
	}
	if s.doc.Edge == nil {
		s.doc.Edge = make(map[ports.Slot]storedValue)
	}
	return s, nil
}

func (s *stateFile) section(edge bool) map[ports.Slot]storedValue {
	if edge {
		return s.doc.Edge
	}
	return s.doc.Client
}

func (s *stateFile) get(edge bool, slot ports.Slot) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.section(edge)[slot]
	if !ok || (!v.ExpiresAt.IsZero() && !s.now().Before(v.ExpiresAt)) {
		return "", false
	}
	return v.Value, true
}

func (s *stateFile) set(edge bool, slot ports.Slot, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := storedValue{Value: value}
	if ttl > 0 {
		v.ExpiresAt = s.now().Add(ttl).UTC()
	}
	s.section(edge)[slot] = v
	return s.saveLocked()
}

func (s *stateFile) remove(edge bool, slot ports.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.section(edge), slot)
	return s.saveLocked()
}

func (s *stateFile) saveLocked() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// fileChannel is one section of the state file: the client section read by
// the session engine, or the edge section replayed by page when edge is set.
type fileChannel struct {
	state *stateFile
	edge  bool
}

func (c fileChannel) Get(_ context.Context, slot ports.Slot) (string, bool, error) {
	v, ok := c.state.get(c.edge, slot)
	return v, ok, nil
}

func (c fileChannel) Set(_ context.Context, slot ports.Slot, value string, ttl time.Duration) error {
	return c.state.set(c.edge, slot, value, ttl)
}

func (c fileChannel) Delete(_ context.Context, slot ports.Slot) error {
	return c.state.remove(c.edge, slot)
}

// newPortalJar rebuilds the browser-equivalent cookie jar for origin from the
// edge section, so page requests carry what a browser would send.
func newPortalJar(state *stateFile, origin *url.URL) (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(ports.AllSlots))
	for _, slot := range ports.AllSlots {
		value, ok := state.get(true, slot)
		if !ok {
			continue
		}
		name, _ := httpx.CookieForSlot(slot)
		cookies = append(cookies, &http.Cookie{
			Name:     name,
			Value:    httpx.EncodeCookieValue(slot, value),
			Path:     "/",
			HttpOnly: true,
		})
	}
	jar.SetCookies(origin, cookies)
	return jar, nil
}
