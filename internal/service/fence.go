package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/naidizakupku/portal/internal/core"
	apperrors "github.com/naidizakupku/portal/internal/errors"
)

// DefaultFenceTTL bounds how long a crashed holder can keep a device fenced.
const DefaultFenceTTL = 15 * time.Second

// AuthFence serialises mutating auth operations per device across requests
// and processes with a SET NX lock.
type AuthFence struct {
	cache  core.CacheRepository
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewAuthFence creates a fence. A nil cache disables fencing.
func NewAuthFence(cache core.CacheRepository, prefix string, ttl time.Duration) *AuthFence {
	if ttl <= 0 {
		ttl = DefaultFenceTTL
	}
	return &AuthFence{cache: cache, prefix: prefix, ttl: ttl, logger: slog.Default()}
}

// Acquire takes the fence for device. It returns a Conflict error while
// another holder has it. The returned release func must be called once.
func (f *AuthFence) Acquire(ctx context.Context, device string) (func(context.Context), error) {
	if f == nil || f.cache == nil || device == "" {
		return func(context.Context) {}, nil
	}

	key := f.key(device)
	token := []byte(uuid.NewString())
	ok, err := f.cache.SetIfNotExists(ctx, key, token, f.ttl)
	if err != nil {
		return nil, apperrors.Unavailable("auth fence unavailable", err)
	}
	if !ok {
		return nil, apperrors.Conflict("another auth operation is in progress")
	}

	return func(ctx context.Context) {
		// An expired fence may already belong to someone else.
		if _, err := f.cache.CompareAndDelete(ctx, key, token); err != nil {
			f.logger.WarnContext(ctx, "release auth fence failed", "error", err)
		}
	}, nil
}

func (f *AuthFence) key(device string) string {
	return f.prefix + "fence:" + device
}
