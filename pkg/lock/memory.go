package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const memoryRetryInterval = 5 * time.Millisecond

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryManager implements Manager for a single process with the same
// wait/lease contract as the Redis variant: an expired lease is treated
// as released, so a stalled holder cannot block competitors forever.
type MemoryManager struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		locks: make(map[string]memoryEntry),
	}
}

func (m *MemoryManager) WithLock(ctx context.Context, key string, wait, lease time.Duration, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	if err := m.acquire(ctx, key, token, wait, lease); err != nil {
		return err
	}
	defer m.release(key, token)

	return fn(ctx)
}

func (m *MemoryManager) acquire(ctx context.Context, key, token string, wait, lease time.Duration) error {
	deadline := time.Now().Add(wait)

	for {
		if m.tryAcquire(key, token, lease) {
			return nil
		}

		if time.Now().After(deadline) {
			return ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(memoryRetryInterval):
		}
	}
}

func (m *MemoryManager) tryAcquire(key, token string, lease time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if entry, held := m.locks[key]; held && entry.expiresAt.After(now) {
		return false
	}

	m.locks[key] = memoryEntry{
		token:     token,
		expiresAt: now.Add(lease),
	}
	return true
}

func (m *MemoryManager) release(key, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Only the current holder may release; after lease expiry the key
	// may already belong to someone else.
	if entry, held := m.locks[key]; held && entry.token == token {
		delete(m.locks, key)
	}
}
