package cache

import (
	"context"
	"time"

	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "promoter:lock:"

// releaseScript deletes the key only while it still holds our owner value.
var releaseScript = redis.NewScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`)

// Lock guards scheduled jobs across replicas with SETNX. Without redis every Acquire succeeds.
type Lock struct {
	client *redis.Client
	owner  string
}

func NewLock(client *redis.Client) repository.ILock {
	return &Lock{client: client, owner: uuid.NewString()}
}

func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, lockPrefix+key, l.owner, ttl).Result()
	if err != nil {
		logger.GetLogger().WithField("key", key).WithError(err).Warn("Lock acquire failed")
		return false, err
	}
	return ok, nil
}

func (l *Lock) Release(ctx context.Context, key string) error {
	if l.client == nil {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{lockPrefix + key}, l.owner).Err()
}
