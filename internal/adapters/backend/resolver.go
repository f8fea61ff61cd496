// Package backend talks to the procurement backend over HTTP, trying each
// candidate origin in order until one answers with a success status.
package backend

import (
	"strings"

	"github.com/naidizakupku/portal/config"
)

// Resolver maps logical endpoints to ordered candidate URLs. The candidate
// bases are computed once at construction; the environment does not change
// within a process lifetime.
type Resolver struct {
	bases []string
}

// NewResolver builds the candidate bases from cfg. An explicit override is
// the sole candidate; otherwise the loopback base comes before the public
// reverse-proxied origin.
func NewResolver(cfg config.BackendConfig) *Resolver {
	if cfg.HasOverride() {
		return &Resolver{bases: []string{trimBase(cfg.BaseURL)}}
	}

	var bases []string
	if b := trimBase(cfg.LoopbackBaseURL); b != "" {
		bases = append(bases, b)
	}
	if origin := trimBase(cfg.PublicOrigin); origin != "" {
		bases = append(bases, origin+joinPath(cfg.PublicPathPrefix))
	}
	return &Resolver{bases: bases}
}

// NewStaticResolver returns a resolver over fixed bases, in order.
func NewStaticResolver(bases ...string) *Resolver {
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		if b = trimBase(b); b != "" {
			out = append(out, b)
		}
	}
	return &Resolver{bases: out}
}

// Bases returns a copy of the candidate bases.
func (r *Resolver) Bases() []string {
	out := make([]string, len(r.bases))
	copy(out, r.bases)
	return out
}

// Resolve returns the candidate URLs for endpoint, e.g. "/news/top".
// The endpoint may carry a query string.
func (r *Resolver) Resolve(endpoint string) []string {
	path := joinPath(endpoint)
	out := make([]string, len(r.bases))
	for i, b := range r.bases {
		out[i] = b + path
	}
	return out
}

func trimBase(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// joinPath returns p with exactly one leading slash and no trailing slash,
// or "" for an empty path.
func joinPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
