package location

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares resolved variant sets across server instances.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisCache{client: c, prefix: "loc:variants:", ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]string, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, false
	}
	var variants []string
	if err := json.Unmarshal([]byte(raw), &variants); err != nil {
		return nil, false
	}
	return variants, true
}

func (r *RedisCache) Set(ctx context.Context, key string, variants []string) {
	b, err := json.Marshal(variants)
	if err != nil {
		return
	}
	// best-effort; a cache miss later is fine
	_ = r.client.Set(ctx, r.prefix+key, b, r.ttl).Err()
}

func (r *RedisCache) Close() error { return r.client.Close() }
