// Package core provides cache orchestration shared by the portal services.
package core

import (
	"bytes"
	"context"
	"strings"
	"time"
)

// CacheRepository defines the interface for caching operations.
// This follows the hexagonal architecture pattern where the core defines interfaces
// and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// SetTTL updates the TTL for an existing key.
	// Returns true if the key exists and TTL was updated.
	SetTTL(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// CompareAndDelete atomically removes key only while it still holds value.
	// Returns true if the key was removed.
	CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// ResourceCacheService caches live backend payloads of degrading resources.
type ResourceCacheService struct {
	cache  CacheRepository
	prefix string
	ttl    time.Duration
}

// ResourceCacheConfig holds configuration for resource caching.
type ResourceCacheConfig struct {
	// KeyPrefix namespaces every key, e.g. "portal:".
	KeyPrefix string
	TTL       time.Duration
}

// DefaultResourceCacheConfig returns a ResourceCacheConfig with sensible defaults.
func DefaultResourceCacheConfig() ResourceCacheConfig {
	return ResourceCacheConfig{
		KeyPrefix: "portal:",
		TTL:       300 * time.Second,
	}
}

// NewResourceCacheService creates a new ResourceCacheService. A nil cache
// yields a service where every lookup misses and every store is a no-op.
func NewResourceCacheService(cache CacheRepository, cfg ResourceCacheConfig) *ResourceCacheService {
	return &ResourceCacheService{
		cache:  cache,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
	}
}

// Enabled reports whether payloads are actually cached.
func (s *ResourceCacheService) Enabled() bool {
	return s != nil && s.cache != nil && s.ttl > 0
}

// Load returns the cached payload for resource, or nil on a miss.
func (s *ResourceCacheService) Load(ctx context.Context, resource string) ([]byte, error) {
	if !s.Enabled() || resource == "" {
		return nil, nil
	}
	return s.cache.Get(ctx, s.Key(resource))
}

// Store caches payload for resource for the configured TTL. A payload
// identical to the cached one only has its expiry pushed out.
func (s *ResourceCacheService) Store(ctx context.Context, resource string, payload []byte) error {
	if !s.Enabled() || resource == "" || len(payload) == 0 {
		return nil
	}
	key := s.Key(resource)
	if current, err := s.cache.Get(ctx, key); err == nil && bytes.Equal(current, payload) {
		if extended, err := s.cache.SetTTL(ctx, key, s.ttl); err == nil && extended {
			return nil
		}
	}
	return s.cache.Set(ctx, key, payload, s.ttl)
}

// Invalidate removes the cached payload for resource.
// It reports whether anything was removed.
func (s *ResourceCacheService) Invalidate(ctx context.Context, resource string) (bool, error) {
	if s == nil || s.cache == nil || resource == "" {
		return false, nil
	}
	return s.cache.Delete(ctx, s.Key(resource))
}

// Key generates the cache key for a resource.
func (s *ResourceCacheService) Key(resource string) string {
	return s.prefix + "proxy:" + strings.Trim(resource, "/")
}
