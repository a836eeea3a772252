// Package config reads the cart service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// KV backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Port      string
	AdminPort string
	LogLevel  string
	CartKey   string

	KVBackend   string
	KVFile      string
	RedisAddr   string
	DatabaseURL string

	InventoryURL     string
	InventoryTimeout time.Duration

	AMQPURL      string
	AMQPExchange string

	OTLPEndpoint string
	OTelDisabled bool
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := Config{
		Port:         getenv("PORT", "8080"),
		AdminPort:    getenv("ADMIN_PORT", "7070"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		CartKey:      getenv("CART_KEY", "@RocketShoes:cart"),
		KVBackend:    strings.ToLower(getenv("KV_BACKEND", BackendFile)),
		KVFile:       getenv("KV_FILE", "data/cart.json"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		InventoryURL: getenv("INVENTORY_URL", "http://localhost:3333"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getenv("AMQP_EXCHANGE", "cart.events"),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	timeout, err := time.ParseDuration(getenv("INVENTORY_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, errors.Wrap(err, "INVENTORY_TIMEOUT")
	}
	if timeout <= 0 {
		return Config{}, errors.Errorf("INVENTORY_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.InventoryTimeout = timeout

	if v := os.Getenv("OTEL_DISABLED"); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "OTEL_DISABLED")
		}
		cfg.OTelDisabled = disabled
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.KVBackend {
	case BackendFile:
		if c.KVFile == "" {
			return errors.New("KV_FILE is required for the file backend")
		}
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return errors.Errorf("unknown KV_BACKEND %q", c.KVBackend)
	}
	if c.CartKey == "" {
		return errors.New("CART_KEY must not be empty")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
