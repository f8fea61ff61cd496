// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	"github.com/naidizakupku/portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialChannel = (*MemoryChannel)(nil)
	_ ports.CredentialChannel = (*FailingChannel)(nil)
	_ ports.LaunchExtractor   = StaticExtractor{}
)

// ErrInjected is returned by FailingChannel for the operations it is told to fail.
var ErrInjected = errors.New("injected channel failure")

// MemoryChannel is an in-memory credential channel for unit tests.
type MemoryChannel struct {
	mu      sync.Mutex
	values  map[ports.Slot]string
	ttls    map[ports.Slot]time.Duration
	Writes  int
	Deletes int
}

// NewMemoryChannel creates an empty in-memory channel.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{
		values: make(map[ports.Slot]string),
		ttls:   make(map[ports.Slot]time.Duration),
	}
}

func (m *MemoryChannel) Get(_ context.Context, slot ports.Slot) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[slot]
	return v, ok, nil
}

func (m *MemoryChannel) Set(_ context.Context, slot ports.Slot, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[slot] = value
	m.ttls[slot] = ttl
	m.Writes++
	return nil
}

func (m *MemoryChannel) Delete(_ context.Context, slot ports.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, slot)
	delete(m.ttls, slot)
	m.Deletes++
	return nil
}

// Snapshot returns a copy of all populated slots.
func (m *MemoryChannel) Snapshot() map[ports.Slot]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values)
}

// TTL returns the lifetime last used to write slot.
func (m *MemoryChannel) TTL(slot ports.Slot) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[slot]
}

// Empty reports whether no slot is populated.
func (m *MemoryChannel) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values) == 0
}

// FailingChannel wraps a MemoryChannel and fails selected operations.
type FailingChannel struct {
	*MemoryChannel

	FailGet    bool
	FailSet    bool
	FailDelete bool
	// FailSlots restricts failures to the listed slots when non-empty.
	FailSlots []ports.Slot
}

// NewFailingChannel creates a FailingChannel over an empty memory channel.
func NewFailingChannel() *FailingChannel {
	return &FailingChannel{MemoryChannel: NewMemoryChannel()}
}

func (f *FailingChannel) applies(slot ports.Slot) bool {
	if len(f.FailSlots) == 0 {
		return true
	}
	for _, s := range f.FailSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func (f *FailingChannel) Get(ctx context.Context, slot ports.Slot) (string, bool, error) {
	if f.FailGet && f.applies(slot) {
		return "", false, ErrInjected
	}
	return f.MemoryChannel.Get(ctx, slot)
}

func (f *FailingChannel) Set(ctx context.Context, slot ports.Slot, value string, ttl time.Duration) error {
	if f.FailSet && f.applies(slot) {
		return ErrInjected
	}
	return f.MemoryChannel.Set(ctx, slot, value, ttl)
}

func (f *FailingChannel) Delete(ctx context.Context, slot ports.Slot) error {
	if f.FailDelete && f.applies(slot) {
		return ErrInjected
	}
	return f.MemoryChannel.Delete(ctx, slot)
}

// StaticExtractor returns a fixed claim whenever the launch is present.
type StaticExtractor struct {
	Claim domainauth.IdentityClaim
	// Absent forces the extractor to report no claim.
	Absent bool
}

func (s StaticExtractor) Extract(launch domainauth.Launch) (domainauth.IdentityClaim, bool) {
	if s.Absent || !launch.Present {
		return domainauth.IdentityClaim{}, false
	}
	return s.Claim, true
}
