package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the shared-cache backend, adapted from the
// teacher's cache.CacheConfig (connection/pool/timeout/retry knobs);
// the circuit-breaker and SET-specific fields that cache.CacheConfig
// carried for alert-tracking have no SqlGuard analogue and are dropped
// (DESIGN.md "Dropped teacher dependencies").
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return c
}

// RedisCache is the shared-instance dedup backend (§4.2 "alternate
// implementation for multi-instance deployments sharing dedup state").
// Fails open on every Redis error: a dedup cache outage must never block
// or fail a validation call (§4.2 "the dedup filter is best-effort; a
// cache failure degrades to always-run, never to always-block").
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache builds a shared dedup cache over a Redis connection,
// pinging it once up front to fail fast on a bad connection.
func NewRedisCache(ctx context.Context, cfg Config, rcfg RedisConfig, logger *slog.Logger) (*RedisCache, error) {
	cfg = cfg.withDefaults()
	rcfg = rcfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:            rcfg.Addr,
		Password:        rcfg.Password,
		DB:              rcfg.DB,
		PoolSize:        rcfg.PoolSize,
		MinIdleConns:    rcfg.MinIdleConns,
		DialTimeout:     rcfg.DialTimeout,
		ReadTimeout:     rcfg.ReadTimeout,
		WriteTimeout:    rcfg.WriteTimeout,
		MaxRetries:      rcfg.MaxRetries,
		MinRetryBackoff: rcfg.MinRetryBackoff,
		MaxRetryBackoff: rcfg.MaxRetryBackoff,
	})

	pingCtx, cancel := context.WithTimeout(ctx, rcfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("dedup: failed to connect to redis", "error", err, "addr", rcfg.Addr)
		return nil, fmt.Errorf("dedup: connecting to redis at %s: %w", rcfg.Addr, err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

// NewRedisCacheFromClient wraps an already-constructed redis.Client,
// used by tests against miniredis where the dial options above don't
// apply.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// ShouldSkip uses SET ... NX as an atomic "seen before" check: the key
// is written with the dedup TTL only on first sight, so concurrent
// callers racing the same SQL text converge on a single "don't skip"
// winner (§4.2 "concurrency: must not double-count a race as two misses").
func (c *RedisCache) ShouldSkip(ctx context.Context, key string) (bool, error) {
	ok, err := c.client.SetNX(ctx, dedupKey(key), 1, c.ttl).Result()
	if err != nil {
		c.logger.Warn("dedup: redis unavailable, failing open", "error", err)
		return false, nil
	}
	// SetNX true means "I just wrote it" -> first sight -> do not skip.
	return !ok, nil
}

// Reset flushes every dedup key via SCAN+DEL rather than FLUSHALL,
// since the dedup keyspace may share a Redis instance with other
// tenants of the deployment.
func (c *RedisCache) Reset(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, dedupKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("dedup: scanning redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("dedup: deleting redis keys: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

const dedupKeyPrefix = "sqlguard:dedup:"

func dedupKey(key string) string {
	return dedupKeyPrefix + key
}
