package retryqueue

import (
	"github.com/openfiscal/nfeingest/internal/config"
	"github.com/openfiscal/nfeingest/internal/ingest"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("retryqueue",
	fx.Provide(NewClient),
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			WorkList:    cfg.QueueWorkList,
			DelayedSet:  cfg.QueueDelayedSet,
			DeadList:    cfg.QueueDeadList,
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		}
	}),
	fx.Provide(New),
	fx.Provide(func(q *Queue) ingest.RetryQueue { return q }),
)

func NewClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
