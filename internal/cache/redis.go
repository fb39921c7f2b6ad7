// Package cache provides the shared redis client used for rate table
// lookups and gateway token caching.
package cache

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/taxops/fbrgate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewRedis),
)

// NewRedis connects to redis when an address is configured. A nil client
// is a valid result: consumers treat caching as best-effort and skip it.
func NewRedis(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) redis.UniversalClient {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("redis disabled, caching is off")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable at startup", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}
