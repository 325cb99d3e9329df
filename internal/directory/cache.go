package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
)

// CacheKey holds the serialized full practitioner list.
const CacheKey = "all_doctors"

var ErrCacheMiss = errors.New("cache miss")

// KV is the byte store behind the directory cache.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) KV {
	return &redisKV{client: client}
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (r *redisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Cache is a cache-aside view of the practitioner list under one fixed key.
// Nothing serializes a miss with its repopulation: concurrent misses each
// write a fresh full read and the last SET wins.
type Cache struct {
	kv      KV
	repo    Repository
	ttl     time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewCache(kv KV, repo Repository, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *Cache {
	return &Cache{
		kv:      kv,
		repo:    repo,
		ttl:     ttl,
		metrics: m,
		log:     log,
	}
}

// Get returns the JSON array of all practitioners and whether it came from
// the cache. Cached bytes are returned as stored.
func (c *Cache) Get(ctx context.Context) ([]byte, bool, error) {
	cached, err := c.kv.Get(ctx, CacheKey)
	switch {
	case err == nil:
		c.metrics.DirectoryCache.WithLabelValues(metrics.CacheHit).Inc()
		c.log.Debug().Str("key", CacheKey).Msg("directory served from cache")
		return cached, true, nil
	case !errors.Is(err, ErrCacheMiss):
		return nil, false, fmt.Errorf("read directory cache: %w", err)
	}

	c.metrics.DirectoryCache.WithLabelValues(metrics.CacheMiss).Inc()

	list, err := c.repo.ListPractitioners(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list practitioners: %w", err)
	}
	if list == nil {
		list = []Practitioner{}
	}

	payload, err := json.Marshal(list)
	if err != nil {
		return nil, false, fmt.Errorf("encode practitioners: %w", err)
	}

	if err := c.kv.Set(ctx, CacheKey, payload, c.ttl); err != nil {
		return nil, false, fmt.Errorf("populate directory cache: %w", err)
	}
	c.log.Debug().Str("key", CacheKey).Int("count", len(list)).Dur("ttl", c.ttl).Msg("directory cache populated")

	return payload, false, nil
}

// Invalidate drops the whole cached list.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.kv.Del(ctx, CacheKey); err != nil {
		return fmt.Errorf("invalidate directory cache: %w", err)
	}
	return nil
}
