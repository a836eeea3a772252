package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "ADMIN_PORT", "LOG_LEVEL", "CART_KEY", "KV_BACKEND", "KV_FILE",
	"REDIS_ADDR", "DATABASE_URL", "INVENTORY_URL", "INVENTORY_TIMEOUT",
	"AMQP_URL", "AMQP_EXCHANGE", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_DISABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:             "8080",
		AdminPort:        "7070",
		LogLevel:         "info",
		CartKey:          "@RocketShoes:cart",
		KVBackend:        BackendFile,
		KVFile:           "data/cart.json",
		InventoryURL:     "http://localhost:3333",
		InventoryTimeout: 5 * time.Second,
		AMQPExchange:     "cart.events",
		OTLPEndpoint:     "localhost:4317",
	}, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("KV_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("INVENTORY_TIMEOUT", "750ms")
	t.Setenv("OTEL_DISABLED", "true")
	t.Setenv("CART_KEY", "cart:alice")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, BackendRedis, cfg.KVBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 750*time.Millisecond, cfg.InventoryTimeout)
	assert.True(t, cfg.OTelDisabled)
	assert.Equal(t, "cart:alice", cfg.CartKey)
}

func TestLoad_Invalid(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"unknown backend":  {"KV_BACKEND": "etcd"},
		"redis no addr":    {"KV_BACKEND": "redis"},
		"postgres no dsn":  {"KV_BACKEND": "postgres"},
		"bad timeout":      {"INVENTORY_TIMEOUT": "soon"},
		"negative timeout": {"INVENTORY_TIMEOUT": "-1s"},
		"bad otel flag":    {"OTEL_DISABLED": "maybe"},
	} {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
