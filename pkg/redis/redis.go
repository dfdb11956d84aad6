package redis

import (
	"context"

	"github.com/IVANFROL/reklama-oleg/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis",
	fx.Provide(New),
)

func New(lc fx.Lifecycle, c *config.Config) *redis.Client {
	if c.Redis.Addr == "" {
		zap.L().Info("[Redis] No address configured, catalog caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        c.Redis.Addr,
		Password:    c.Redis.Password,
		DB:          c.Redis.DB,
		PoolSize:    c.Redis.PoolSize,
		PoolTimeout: c.Redis.PoolTimeout,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		zap.L().Warn("[Redis] Redis not reachable, continuing without cache", zap.String("addr", c.Redis.Addr), zap.Error(err))
	} else {
		zap.L().Info("[Redis] Connected to Redis", zap.String("addr", c.Redis.Addr))
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	return rdb
}
