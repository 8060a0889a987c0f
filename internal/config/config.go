package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"skyline/opsboard/internal/constants"
)

type Config struct {
	AppEnv     string
	ServerPort int

	DBDriver   string
	PGHost     string
	PGPort     string
	PGUser     string
	PGDB       string
	PGPassword string
	SQLitePath string

	CacheBackend  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RuleCacheTTL  time.Duration

	// Zero disables the scheduled canonical type backfill.
	BackfillInterval time.Duration

	JWTSecret string

	FuzzyMatchThreshold int
	ConflictMode        constants.ConflictMode
	ExactPriorityMark   int

	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadBytes int64
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGUser:     getEnv("PG_USER", ""),
		PGDB:       getEnv("PG_DB", ""),
		PGPassword: getEnv("PG_PASSWORD", ""),
		SQLitePath: getEnv("SQLITE_PATH", "opsboard.db"),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RuleCacheTTL:  getEnvDuration("RULE_CACHE_TTL", 10*time.Minute),

		BackfillInterval: getEnvDuration("BACKFILL_INTERVAL", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),

		FuzzyMatchThreshold: getEnvInt("FUZZY_MATCH_THRESHOLD", 70),
		ConflictMode:        constants.ConflictMode(getEnv("CONFLICT_MODE", string(constants.ConflictWarn))),
		ExactPriorityMark:   getEnvInt("EXACT_PRIORITY_MARK", 100),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.FuzzyMatchThreshold < 0 || c.FuzzyMatchThreshold > 100 {
		return fmt.Errorf("FUZZY_MATCH_THRESHOLD must be within 0..100, got %d", c.FuzzyMatchThreshold)
	}
	if _, ok := constants.ParseConflictMode(string(c.ConflictMode)); !ok {
		return fmt.Errorf("CONFLICT_MODE must be allow, warn or reject, got %q", c.ConflictMode)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}
	if c.BackfillInterval < 0 {
		return fmt.Errorf("BACKFILL_INTERVAL must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// PostgresDSN builds the connection string shared by sqlx and GORM.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
