package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tutorly/pkg/logger"
)

const redisRetryInterval = 50 * time.Millisecond

// releaseScript deletes the key only when it still holds our token, so
// a holder whose lease already expired cannot release a competitor's
// lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisManager implements Manager on a single Redis instance using
// SET NX PX with a per-acquisition token. The PX expiry is the lease.
type RedisManager struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisManager(client *redis.Client, log *logger.Logger) *RedisManager {
	return &RedisManager{
		client: client,
		log:    log,
	}
}

func (m *RedisManager) WithLock(ctx context.Context, key string, wait, lease time.Duration, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	if err := m.acquire(ctx, key, token, wait, lease); err != nil {
		return err
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.release(releaseCtx, key, token); err != nil {
			m.log.Warn("Failed to release lock", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}

func (m *RedisManager) acquire(ctx context.Context, key, token string, wait, lease time.Duration) error {
	deadline := time.Now().Add(wait)

	for {
		ok, err := m.client.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		if time.Now().After(deadline) {
			return ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(redisRetryInterval):
		}
	}
}

func (m *RedisManager) release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, m.client, []string{key}, token).Err()
}
