package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCache is the single-process cache backend.
type MemoryCache struct {
	cache *cache.Cache
}

// Ensure MemoryCache implements CacheInterface
var _ CacheInterface = (*MemoryCache)(nil)

func NewMemoryCache(defaultExpiration, cleanUpInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (mc *MemoryCache) Set(key string, value interface{}, duration time.Duration) {
	mc.cache.Set(key, value, duration)
}

func (mc *MemoryCache) Get(key string) (interface{}, bool) {
	return mc.cache.Get(key)
}

func (mc *MemoryCache) Delete(key string) {
	mc.cache.Delete(key)
}

// Close is a no-op for the in-memory cache
func (mc *MemoryCache) Close() error {
	return nil
}
