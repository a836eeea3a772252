package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rocketshoes/cartservice/config"
	"github.com/rocketshoes/cartservice/events"
	"github.com/rocketshoes/cartservice/kvstore"
)

func openKV(cfg config.Config, log logrus.FieldLogger) (kvstore.Store, error) {
	switch cfg.KVBackend {
	case config.BackendMemory:
		return kvstore.NewLocalStore(), nil
	case config.BackendFile:
		return kvstore.NewFileStore(cfg.KVFile, log), nil
	case config.BackendRedis:
		addr := cfg.RedisAddr
		if !strings.Contains(addr, ":") {
			addr += ":6379"
		}
		return kvstore.NewRedisStore(addr, log), nil
	case config.BackendPostgres:
		return kvstore.OpenPostgres(cfg.DatabaseURL)
	default:
		return nil, errors.Errorf("unknown KV backend %q", cfg.KVBackend)
	}
}

func openPublisher(cfg config.Config, log logrus.FieldLogger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.NewLogPublisher(log), nil
	}
	p, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	log.WithField("exchange", cfg.AMQPExchange).Info("publishing cart events to AMQP")
	return p, nil
}
