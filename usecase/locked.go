package usecase

import (
	"context"
	"time"

	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

// RunLocked runs fn only while holding key. ran is false when another holder has it.
// The lock is released when fn returns; ttl only bounds a holder that dies mid-run.
func RunLocked(ctx context.Context, lock repository.ILock, key string, ttl time.Duration, fn func(context.Context) error) (ran bool, err error) {
	ok, err := lock.Acquire(ctx, key, ttl)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	defer func() {
		if rerr := lock.Release(context.WithoutCancel(ctx), key); rerr != nil {
			logger.GetLogger().WithField("key", key).WithError(rerr).Warn("Lock release failed")
		}
	}()
	return true, fn(ctx)
}
