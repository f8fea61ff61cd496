package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisadapter "github.com/naidizakupku/portal/internal/adapters/redis"
	"github.com/naidizakupku/portal/internal/bootstrap"
	"github.com/naidizakupku/portal/internal/core"
	"github.com/naidizakupku/portal/internal/service"
)

// contentService builds the proxy service, with the shared Redis cache when
// client is non-nil.
func contentService(cc *commandContext, client redis.UniversalClient) (*service.ContentService, error) {
	var cache *core.ResourceCacheService
	if client != nil {
		cache = core.NewResourceCacheService(redisadapter.NewCacheRepo(client), core.ResourceCacheConfig{
			KeyPrefix: cc.Config.Redis.KeyPrefix,
			TTL:       cc.Config.Proxy.CacheTTL,
		})
	}
	return service.NewContentService(service.ContentServiceOptions{
		Gateway:  newBackendClient(cc),
		Cache:    cache,
		NewsExpr: cc.Config.Proxy.NewsExpr,
		InfoExpr: cc.Config.Proxy.InfoExpr,
		Logger:   cc.Logger,
	})
}

func connectRedis(cc *commandContext) (redis.UniversalClient, error) {
	client, err := bootstrap.ConnectRedis(bootstrap.RedisConnectConfig{Redis: cc.Config.Redis})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

type contentFlags struct {
	useCache bool
}

func parseContentFlags(name string, args []string) (contentFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var f contentFlags
	fs.BoolVar(&f.useCache, "cache", false, "Read and fill the shared Redis cache")
	return f, fs.Parse(args)
}

func withContent(cc *commandContext, name string, args []string, fn func(*service.ContentService) (any, string)) error {
	f, err := parseContentFlags(name, args)
	if err != nil {
		return err
	}
	var client redis.UniversalClient
	if f.useCache {
		if client, err = connectRedis(cc); err != nil {
			return err
		}
		defer bootstrap.CloseRedis(client, cc.Logger)
	}
	svc, err := contentService(cc, client)
	if err != nil {
		return err
	}
	payload, source := fn(svc)
	if err = writef(cc.Out, "source: %s\n", source); err != nil {
		return err
	}
	enc := json.NewEncoder(cc.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func runNews(cc *commandContext, args []string) error {
	return withContent(cc, "news", args, func(svc *service.ContentService) (any, string) {
		return svc.TopNews(cc.Ctx)
	})
}

func runStats(cc *commandContext, args []string) error {
	return withContent(cc, "stats", args, func(svc *service.ContentService) (any, string) {
		return svc.ProjectInfo(cc.Ctx)
	})
}

func runCacheClear(cc *commandContext, _ []string) error {
	client, err := connectRedis(cc)
	if err != nil {
		return err
	}
	defer bootstrap.CloseRedis(client, cc.Logger)

	svc, err := contentService(cc, client)
	if err != nil {
		return err
	}
	n, err := svc.Invalidate(cc.Ctx)
	if err != nil {
		return err
	}
	return writef(cc.Out, "removed %d cached payload(s)\n", n)
}
