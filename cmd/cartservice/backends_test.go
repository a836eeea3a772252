package main

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketshoes/cartservice/config"
	"github.com/rocketshoes/cartservice/events"
	"github.com/rocketshoes/cartservice/kvstore"
)

func TestOpenKV(t *testing.T) {
	log, _ := test.NewNullLogger()

	kv, err := openKV(config.Config{KVBackend: config.BackendMemory}, log)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.LocalStore{}, kv)

	kv, err = openKV(config.Config{KVBackend: config.BackendFile, KVFile: filepath.Join(t.TempDir(), "cart.json")}, log)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.FileStore{}, kv)

	kv, err = openKV(config.Config{KVBackend: config.BackendRedis, RedisAddr: "redis"}, log)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.RedisStore{}, kv)
	assert.NoError(t, kv.Close())

	_, err = openKV(config.Config{KVBackend: "etcd"}, log)
	assert.Error(t, err)
}

func TestOpenPublisher_DefaultsToLog(t *testing.T) {
	log, _ := test.NewNullLogger()

	p, err := openPublisher(config.Config{}, log)
	require.NoError(t, err)
	assert.IsType(t, &events.LogPublisher{}, p)
}

func TestOpenPublisher_BadURL(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := openPublisher(config.Config{AMQPURL: "not-a-url", AMQPExchange: "cart.events"}, log)
	assert.Error(t, err)
}
