package kvstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	redisPingAttempts = 30
	redisMaxBackoff   = 30 * time.Second
)

// RedisStore is a key/value store backed by Redis.
type RedisStore struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisStore accepts a Redis connection string ("redis://..." or
// "hostname:port") and returns a store instance.
func NewRedisStore(redisAddr string, log logrus.FieldLogger) *RedisStore {
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		// Not a "redis://..." URL, use it as a plain Addr.
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  30 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}

	client := redis.NewClient(opts)
	client.AddHook(redisotel.NewTracingHook())

	return &RedisStore{client: client, log: log}
}

// Initialize waits for Redis to answer a Ping, backing off exponentially
// between attempts.
func (r *RedisStore) Initialize(ctx context.Context) error {
	r.log.Info("RedisStore: initializing connection...")

	for i := 0; i < redisPingAttempts; i++ {
		if r.Ping(ctx) {
			r.log.Infof("RedisStore: Ping successful on attempt %d", i+1)
			return nil
		}

		backoff := time.Duration(1000*(1<<uint(i))) * time.Millisecond
		if backoff > redisMaxBackoff || backoff <= 0 {
			backoff = redisMaxBackoff
		}
		r.log.Infof("RedisStore: waiting %v before attempt %d/%d", backoff, i+2, redisPingAttempts)

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "kvstore: redis initialization cancelled")
		case <-time.After(backoff):
		}
	}

	return errors.Errorf("kvstore: failed to connect to Redis after %d attempts", redisPingAttempts)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "kvstore: redis GET %s", key)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "kvstore: redis SET %s", key)
	}
	return nil
}

// Ping checks if Redis is alive.
func (r *RedisStore) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		r.log.WithError(err).Debug("RedisStore: Ping failed")
		return false
	}
	return true
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
