package config

import (
	"context"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis returns nil clients when REDIS_ADDRESS is unset.
func ConnectRedis(ctx context.Context, s *Settings, logg *logrus.Logger) (*redis.Client, *redislock.Client, error) {
	if s.RedisAddress == "" {
		logg.WithField("field", "redis").Info("REDIS_ADDRESS not set; backfill lock disabled")
		return nil, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddress,
		PoolSize: 10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", s.RedisAddress, err)
	}
	logg.WithFields(logrus.Fields{"field": "redis", "addr": s.RedisAddress}).Info("connected to redis")
	return rdb, redislock.New(rdb), nil
}
