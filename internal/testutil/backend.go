package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// BackendCall records one request received by a FakeBackend.
type BackendCall struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// FakeBackend is an httptest server with per-route handlers and call counting.
// Unknown routes answer 404.
type FakeBackend struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []BackendCall
}

// NewFakeBackend starts a FakeBackend that is closed when the test finishes.
func NewFakeBackend(t TestingTB) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{routes: make(map[string]http.HandlerFunc)}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Close)
	return fb
}

// Handle registers h for "METHOD /path".
func (f *FakeBackend) Handle(pattern string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[pattern] = h
}

// JSON registers a handler answering status with v encoded as JSON.
func (f *FakeBackend) JSON(pattern string, status int, v any) {
	f.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	})
}

// Calls returns a copy of every recorded request.
func (f *FakeBackend) Calls() []BackendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]BackendCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many requests hit "METHOD /path".
func (f *FakeBackend) Count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method+" "+c.Path == pattern {
			n++
		}
	}
	return n
}

func (f *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	pattern := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, BackendCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h := f.routes[pattern]
	f.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// UnreachableURL returns the URL of a server that has already been shut
// down, so connections to it fail immediately.
func UnreachableURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}
