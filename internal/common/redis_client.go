package common

import (
	"time"

	"github.com/redis/go-redis/v9"

	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/logging"
)

func NewRedisClient(cfg *config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	logging.Info("Initializing Redis client", "addr", addr)

	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}
