package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/singleflight"

	"github.com/naidizakupku/portal/internal/core"
	"github.com/naidizakupku/portal/internal/domain/model"
	apperrors "github.com/naidizakupku/portal/internal/errors"
	"github.com/naidizakupku/portal/internal/observability/metrics"
	"github.com/naidizakupku/portal/internal/ports"
)

// DefaultPayloadExpr plucks a "data" member when present and otherwise keeps
// the whole backend document.
const DefaultPayloadExpr = "not_null(data, @)"

// Resource names of the degrading proxies. They double as cache keys.
const (
	ResourceNewsTop    = "/news/top"
	ResourceCommonInfo = "/admin/common/info"
)

// DegradingResourceOptions configures a DegradingResource.
type DegradingResourceOptions[T any] struct {
	Name     string
	Fetch    func(context.Context) (json.RawMessage, error)
	Expr     string
	Fallback func() T
	Cache    *core.ResourceCacheService
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// DegradingResource serves a read-only backend payload that never fails:
// a live fetch, else a cached copy of the last live payload, else a static
// fallback of the same shape. Concurrent misses share one backend fetch.
type DegradingResource[T any] struct {
	name     string
	fetch    func(context.Context) (json.RawMessage, error)
	expr     string
	fallback func() T
	cache    *core.ResourceCacheService
	logger   *slog.Logger
	metrics  *metrics.Recorder
	group    singleflight.Group
}

// NewDegradingResource validates the payload expression and builds the resource.
func NewDegradingResource[T any](opts DegradingResourceOptions[T]) (*DegradingResource[T], error) {
	if opts.Fetch == nil || opts.Fallback == nil {
		return nil, fmt.Errorf("resource %s: fetch and fallback are required", opts.Name)
	}
	expr := opts.Expr
	if expr == "" {
		expr = DefaultPayloadExpr
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("resource %s: invalid payload expression %q: %w", opts.Name, expr, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DegradingResource[T]{
		name:     opts.Name,
		fetch:    opts.Fetch,
		expr:     expr,
		fallback: opts.Fallback,
		cache:    opts.Cache,
		logger:   logger.With("resource", opts.Name),
		metrics:  opts.Metrics,
	}, nil
}

// Name returns the backend path the resource proxies.
func (r *DegradingResource[T]) Name() string { return r.name }

// Get returns the payload and where it came from: metrics.SourceLive,
// metrics.SourceCache or metrics.SourceFallback.
func (r *DegradingResource[T]) Get(ctx context.Context) (T, string) {
	if v, ok := r.cached(ctx); ok {
		r.metrics.ProxyServed(r.name, metrics.SourceCache)
		return v, metrics.SourceCache
	}

	ch := r.group.DoChan(r.name, func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err == nil {
			r.metrics.ProxyServed(r.name, metrics.SourceLive)
			return res.Val.(T), metrics.SourceLive
		}
		r.logger.WarnContext(ctx, "serving fallback payload", "error", res.Err)
	case <-ctx.Done():
		r.logger.DebugContext(ctx, "caller gone before fetch finished", "error", ctx.Err())
	}

	r.metrics.ProxyServed(r.name, metrics.SourceFallback)
	return r.fallback(), metrics.SourceFallback
}

// Refresh fetches a live payload and stores it in the cache. It is used by
// the warmer and reports the fetch failure instead of degrading.
func (r *DegradingResource[T]) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do(r.name, func() (any, error) {
		return r.refresh(ctx)
	})
	return err
}

// Invalidate drops the cached payload.
func (r *DegradingResource[T]) Invalidate(ctx context.Context) (bool, error) {
	return r.cache.Invalidate(ctx, r.name)
}

func (r *DegradingResource[T]) refresh(ctx context.Context) (T, error) {
	var zero T
	raw, err := r.fetch(ctx)
	if err != nil {
		return zero, err
	}
	v, err := r.extract(raw)
	if err != nil {
		return zero, err
	}
	if encoded, err := json.Marshal(v); err == nil {
		if err := r.cache.Store(ctx, r.name, encoded); err != nil {
			r.logger.WarnContext(ctx, "cache live payload failed", "error", err)
		}
	}
	return v, nil
}

// extract applies the payload expression and decodes the result into T.
func (r *DegradingResource[T]) extract(raw json.RawMessage) (T, error) {
	var zero T
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, apperrors.Wrap(err, apperrors.ErrCodeRejected, "decode backend payload")
	}
	picked, err := jmespath.Search(r.expr, doc)
	if err != nil {
		return zero, apperrors.Wrap(err, apperrors.ErrCodeRejected, "evaluate payload expression")
	}
	if picked == nil {
		return zero, apperrors.Rejected("backend payload is empty")
	}
	encoded, err := json.Marshal(picked)
	if err != nil {
		return zero, apperrors.Wrap(err, apperrors.ErrCodeInternal, "re-encode payload")
	}
	var v T
	if err := json.Unmarshal(encoded, &v); err != nil {
		return zero, apperrors.Wrap(err, apperrors.ErrCodeRejected, "payload has unexpected shape")
	}
	return v, nil
}

func (r *DegradingResource[T]) cached(ctx context.Context) (T, bool) {
	var v T
	if !r.cache.Enabled() {
		return v, false
	}
	data, err := r.cache.Load(ctx, r.name)
	if err != nil {
		r.logger.WarnContext(ctx, "read cached payload failed", "error", err)
		return v, false
	}
	if len(data) == 0 || json.Unmarshal(data, &v) != nil {
		return v, false
	}
	return v, true
}

// ContentServiceOptions groups dependencies for ContentService.
type ContentServiceOptions struct {
	Gateway  ports.ContentGateway
	Cache    *core.ResourceCacheService
	NewsExpr string
	InfoExpr string
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// ContentService serves the news and project statistics proxies.
type ContentService struct {
	news *DegradingResource[[]model.News]
	info *DegradingResource[model.ProjectInfo]
}

// NewContentService builds both degrading resources.
func NewContentService(opts ContentServiceOptions) (*ContentService, error) {
	news, err := NewDegradingResource(DegradingResourceOptions[[]model.News]{
		Name:     ResourceNewsTop,
		Fetch:    opts.Gateway.NewsTop,
		Expr:     opts.NewsExpr,
		Fallback: model.FallbackNews,
		Cache:    opts.Cache,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	info, err := NewDegradingResource(DegradingResourceOptions[model.ProjectInfo]{
		Name:     ResourceCommonInfo,
		Fetch:    opts.Gateway.CommonInfo,
		Expr:     opts.InfoExpr,
		Fallback: model.FallbackProjectInfo,
		Cache:    opts.Cache,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &ContentService{news: news, info: info}, nil
}

// TopNews returns the news envelope and its source.
func (s *ContentService) TopNews(ctx context.Context) (model.NewsEnvelope, string) {
	items, source := s.news.Get(ctx)
	return model.NewNewsEnvelope(items), source
}

// ProjectInfo returns the project statistics envelope and its source.
func (s *ContentService) ProjectInfo(ctx context.Context) (model.ProjectInfoEnvelope, string) {
	info, source := s.info.Get(ctx)
	return model.ProjectInfoEnvelope{Data: info}, source
}

// Refresh warms every resource and reports every failure.
func (s *ContentService) Refresh(ctx context.Context) error {
	var errs []error
	for _, r := range s.Resources() {
		if err := r.Refresh(ctx); err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Invalidate drops every cached payload and returns how many were removed.
func (s *ContentService) Invalidate(ctx context.Context) (int, error) {
	removed := 0
	for _, r := range s.Resources() {
		ok, err := r.Invalidate(ctx)
		if err != nil {
			return removed, fmt.Errorf("invalidate %s: %w", r.Name(), err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Refresher is the non-generic surface shared by every degrading resource.
type Refresher interface {
	Name() string
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context) (bool, error)
}

// Resources lists every degrading resource.
func (s *ContentService) Resources() []Refresher {
	return []Refresher{s.news, s.info}
}
