package common

import (
	"time"

	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/logging"
)

// CacheInterface defines the contract for cache implementations.
// Values should be JSON-friendly: the Redis backend round-trips them
// through JSON, so a string stored is a string read back.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// NewCache picks the backend named by CACHE_BACKEND. A Redis backend that
// cannot be reached falls back to memory so the service still starts.
func NewCache(cfg *config.Config) CacheInterface {
	if cfg.CacheBackend == "redis" {
		c, err := NewRedisCache(NewRedisClient(cfg))
		if err == nil {
			return c
		}
		logging.Warn("Redis cache unavailable, using in-memory cache", "error", err)
	}
	return NewMemoryCache(cfg.RuleCacheTTL, 2*cfg.RuleCacheTTL)
}
