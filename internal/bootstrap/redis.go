package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naidizakupku/portal/config"
)

const (
	redisClientName  = "portal"
	redisPingTimeout = 5 * time.Second
)

// RedisConnectConfig contains configuration for the Redis connection that
// backs client credential channels, the auth fence and the proxy cache.
type RedisConnectConfig struct {
	Redis  config.RedisConfig
	Logger *slog.Logger
}

// redisTarget is a resolved connection mode. desc never carries credentials.
type redisTarget struct {
	desc string
	dial func() redis.UniversalClient
}

// ConnectRedis dials Redis in direct, sentinel or cluster mode and pings it
// before handing the client out.
//
//nolint:ireturn // the concrete client depends on the configured mode.
func ConnectRedis(cfg RedisConnectConfig) (redis.UniversalClient, error) {
	target, err := resolveRedisTarget(cfg.Redis)
	if err != nil {
		return nil, err
	}
	client := target.dial()

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis %s: %w", target.desc, err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "target", target.desc)
	}
	return client, nil
}

func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	switch {
	case cfg.UseCluster:
		return clusterTarget(cfg)
	case cfg.UseSentinel:
		return sentinelTarget(cfg)
	default:
		return directTarget(cfg)
	}
}

func directTarget(cfg config.RedisConfig) (redisTarget, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return redisTarget{}, errors.New("redis direct mode requires REDIS_URI")
	}

	opts := &redis.Options{Addr: uri, Password: cfg.Password, DB: cfg.DB}
	if isRedisURL(uri) {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return redisTarget{}, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	opts.ClientName = redisClientName

	return redisTarget{
		desc: opts.Addr,
		dial: func() redis.UniversalClient { return redis.NewClient(opts) },
	}, nil
}

func sentinelTarget(cfg config.RedisConfig) (redisTarget, error) {
	nodes := trimNonEmpty(cfg.SentinelNodes)
	if len(nodes) == 0 {
		return redisTarget{}, errors.New("redis sentinel mode requires REDIS_SENTINEL_NODES")
	}

	opts := &redis.FailoverOptions{
		MasterName:       cfg.SentinelMasterName,
		SentinelAddrs:    nodes,
		Password:         cfg.Password,
		SentinelPassword: cfg.SentinelPassword,
		DB:               cfg.DB,
		ClientName:       redisClientName,
	}
	return redisTarget{
		desc: "sentinel:" + cfg.SentinelMasterName,
		dial: func() redis.UniversalClient { return redis.NewFailoverClient(opts) },
	}, nil
}

// clusterTarget uses REDIS_CLUSTER_NODES, or a single seed taken from
// REDIS_URI when no nodes are listed.
func clusterTarget(cfg config.RedisConfig) (redisTarget, error) {
	opts := &redis.ClusterOptions{
		Addrs:      trimNonEmpty(cfg.ClusterNodes),
		Password:   cfg.Password,
		ClientName: redisClientName,
	}

	if len(opts.Addrs) == 0 {
		seed := strings.TrimSpace(cfg.URI)
		switch {
		case seed == "":
		case isRedisURL(seed):
			parsed, err := redis.ParseURL(seed)
			if err != nil {
				return redisTarget{}, fmt.Errorf("parse redis cluster url: %w", err)
			}
			opts.Addrs = []string{parsed.Addr}
			opts.Username = parsed.Username
			opts.TLSConfig = parsed.TLSConfig
			if parsed.Password != "" {
				opts.Password = parsed.Password
			}
		default:
			opts.Addrs = []string{seed}
		}
	}

	if len(opts.Addrs) == 0 {
		return redisTarget{}, errors.New("redis cluster mode requires at least one node")
	}
	return redisTarget{
		desc: "cluster:" + strings.Join(opts.Addrs, ","),
		dial: func() redis.UniversalClient { return redis.NewClusterClient(opts) },
	}, nil
}

func trimNonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
