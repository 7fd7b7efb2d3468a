package cache

import (
	"context"
	"fmt"
	"time"

	"ai-promoter/infrastructure/configuration"
	"ai-promoter/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache returns a connected redis client. Callers treat a nil client as "no coordination".
func NewCache(cfg configuration.RedisClient) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	logger.GetLogger().WithField("addr", client.Options().Addr).Info("Redis connected")
	return client, nil
}
