// Package dedup implements C2, the deduplication filter that lets the
// orchestrator skip re-running checkers against SQL it has already
// validated recently (§4.2). Two implementations share the Cache
// interface: an in-process bounded LRU+TTL cache (the default) and a
// Redis-backed cache for sharing dedup state across instances.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the dedup contract every backend implements. ShouldSkip
// reports whether key has been seen within the configured TTL; as a
// side effect it records key as seen so the NEXT call within the window
// is skipped (§4.2: "first occurrence always runs; repeats within the
// window are skipped").
type Cache interface {
	ShouldSkip(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context) error
}

// Key derives the dedup cache key from the inputs that make two
// validation calls "the same" for dedup purposes: mapper id, raw SQL
// text, and sqlType (§4.2: "keyed on mapperId + sql text, not on
// SqlContext identity"). Hashed rather than used verbatim so arbitrarily
// long SQL text never inflates cache memory or a Redis key length.
func Key(mapperID, sql, sqlType string) string {
	h := sha256.New()
	h.Write([]byte(mapperID))
	h.Write([]byte{0})
	h.Write([]byte(sql))
	h.Write([]byte{0})
	h.Write([]byte(sqlType))
	return hex.EncodeToString(h.Sum(nil))
}

// Config is shared sizing/TTL configuration for both backends (§4.2).
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

// Defaults match §3/§6's documented out-of-the-box dedup behavior: a
// 1000-entry cache with a 100ms TTL.
func (c Config) withDefaults() Config {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 1_000
	}
	if c.TTL <= 0 {
		c.TTL = 100 * time.Millisecond
	}
	return c
}
