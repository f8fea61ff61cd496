package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naidizakupku/portal/internal/core"
)

var _ core.CacheRepository = (*CacheRepo)(nil)

// CacheRepo implements core.CacheRepository using Redis.
type CacheRepo struct {
	client redis.UniversalClient
}

// NewCacheRepo creates a new CacheRepo with the given Redis client.
func NewCacheRepo(client redis.UniversalClient) *CacheRepo {
	return &CacheRepo{client: client}
}

// Set stores a value in Redis with the given key and TTL.
func (r *CacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get retrieves a value from Redis by key. A missing key yields nil, nil.
func (r *CacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	result, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return result, nil
}

// Delete removes a key from Redis.
func (r *CacheRepo) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}

	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// SetTTL updates the TTL for an existing key in Redis.
func (r *CacheRepo) SetTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}

	ok, err := r.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis expire: %w", err)
	}
	return ok, nil
}

// SetIfNotExists atomically sets a key only if it doesn't already exist.
// SET NX with the TTL in one command; SETNX followed by EXPIRE would leave a
// window where the key never expires.
func (r *CacheRepo) SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	status, err := r.client.SetArgs(ctx, key, value, redis.SetArgs{Mode: "NX", TTL: ttl}).Result()
	if err != nil {
		// A nil reply means the key already exists.
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis SET NX: %w", err)
	}
	return status == "OK", nil
}

// compareAndDelete deletes KEYS[1] only while it holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CompareAndDelete removes key only while it still holds value. The check
// and the delete run as one script.
func (r *CacheRepo) CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}

	n, err := compareAndDelete.Run(ctx, r.client, []string{key}, value).Int64()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete: %w", err)
	}
	return n > 0, nil
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed. Keys are walked with SCAN so large keyspaces are not blocked.
func (r *CacheRepo) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, errEmptyKey
	}

	var removed int64
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("redis del: %w", err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	return removed, nil
}

// Health checks the health of the Redis connection.
func (r *CacheRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var errEmptyKey = errors.New("key cannot be empty")
