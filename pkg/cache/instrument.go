package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/blockflow/pkg/observability"
)

type instrumented struct {
	Cache
}

// Instrument reports hits, misses and writes of c to the registered
// [observability.CacheHooks]. The key type passed to the hooks is the key
// namespace ("layout", "artifact").
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	if _, ok := c.(instrumented); ok {
		return c
	}
	return instrumented{Cache: c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType returns the namespace of key, skipping any scope prefix.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == "layout" || parts[i] == "artifact" {
			return parts[i]
		}
	}
	if len(parts) > 1 {
		return parts[0]
	}
	return "unknown"
}
