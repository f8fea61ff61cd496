package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// WarmerServiceOptions groups dependencies for WarmerService.
type WarmerServiceOptions struct {
	Resources []Refresher   // Required: resources to keep warm
	Interval  time.Duration // Required: refresh period
	Logger    *slog.Logger  // Optional: structured logger
}

// WarmerService periodically refreshes the cached payloads of the degrading
// proxies so page requests are answered from cache.
type WarmerService struct {
	resources []Refresher
	interval  time.Duration
	logger    *slog.Logger
}

// NewWarmerService constructs a new WarmerService.
func NewWarmerService(opts WarmerServiceOptions) (*WarmerService, error) {
	if len(opts.Resources) == 0 {
		return nil, errors.New("at least one resource is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("warm interval must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WarmerService{
		resources: opts.Resources,
		interval:  opts.Interval,
		logger:    logger.With("component", "warmer_service"),
	}, nil
}

// Run refreshes every resource immediately and then on each tick until ctx
// is cancelled. Returns nil on graceful shutdown.
func (s *WarmerService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting warmer service", "interval", s.interval, "resources", len(s.resources))

	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.WarmOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "warmer service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.WarmOnce(ctx)
		}
	}
}

// WarmOnce refreshes all resources concurrently and returns how many failed.
// Failures are logged; stale cache entries simply expire.
func (s *WarmerService) WarmOnce(ctx context.Context) int {
	failed := make([]bool, len(s.resources))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range s.resources {
		g.Go(func() error {
			start := time.Now()
			if err := r.Refresh(gctx); err != nil {
				failed[i] = true
				s.logger.WarnContext(gctx, "warm resource failed", "resource", r.Name(), "error", err)
				return nil
			}
			s.logger.DebugContext(gctx, "warmed resource", "resource", r.Name(), "took", time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return n
}

// waitWithJitter delays startup by up to 10% of the interval so replicas
// started together do not refresh in lockstep.
func (s *WarmerService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
