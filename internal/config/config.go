package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string
	LogLevel  string
	LogFormat string

	BackendURL     string
	BackendTimeout time.Duration
	JWTSecret      string

	CartStorage       string // sqlite | redis
	RedisAddr         string
	CartKeyPrefix     string
	CartSnapshotTTL   time.Duration
	CartSweepInterval time.Duration
	CartIdleTTL       time.Duration

	PlatformFeeRate string
	TaxRate         string
}

func Load() Config {
	cfg := Config{
		Port:      getenv("PORT", "8080"),
		DBDSN:     getenv("DB_DSN", "storefront.db"), // sqlite file in project root
		LogFile:   getenv("LOG_FILE", "./storefront.log"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		BackendURL:     getenv("BACKEND_URL", "http://localhost:9000"),
		BackendTimeout: getduration("BACKEND_TIMEOUT", 10*time.Second),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret-change-me"),

		CartStorage:       getenv("CART_STORAGE", "sqlite"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		CartKeyPrefix:     getenv("CART_KEY_PREFIX", "storefront-cart:"),
		CartSnapshotTTL:   getduration("CART_SNAPSHOT_TTL", 30*24*time.Hour),
		CartSweepInterval: getduration("CART_SWEEP_INTERVAL", time.Hour),
		CartIdleTTL:       getduration("CART_IDLE_TTL", 30*time.Minute),

		PlatformFeeRate: getenv("PLATFORM_FEE_RATE", "0.10"),
		TaxRate:         getenv("TAX_RATE", "0.11"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s BACKEND_URL=%s CART_STORAGE=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDSN, cfg.BackendURL, cfg.CartStorage, cfg.LogFile)
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a duration, using %s", k, v, def)
		return def
	}
	return d
}
