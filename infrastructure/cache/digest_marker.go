package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-promoter/domain/repository"

	"github.com/redis/go-redis/v9"
)

const digestMarkerKey = "promoter:digest:last_run"

// DigestMarker stores the last digest time in redis, falling back to process memory.
type DigestMarker struct {
	client *redis.Client

	mu    sync.Mutex
	local time.Time
}

func NewDigestMarker(client *redis.Client) repository.IDigestMarker {
	return &DigestMarker{client: client}
}

func (m *DigestMarker) LastRun(ctx context.Context) (time.Time, bool, error) {
	if m.client == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.local, !m.local.IsZero(), nil
	}
	v, err := m.client.Get(ctx, digestMarkerKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (m *DigestMarker) SetLastRun(ctx context.Context, at time.Time) error {
	if m.client == nil {
		m.mu.Lock()
		m.local = at
		m.mu.Unlock()
		return nil
	}
	return m.client.Set(ctx, digestMarkerKey, at.UTC().Format(time.RFC3339Nano), 0).Err()
}
