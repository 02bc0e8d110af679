package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithLock_MutualExclusion(t *testing.T) {
	m := NewMemoryManager()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(context.Background(), "booking:t1:2030-01-01T14:00", time.Second, 2*time.Second, func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					prev := atomic.LoadInt32(&maxInside)
					if n <= prev || atomic.CompareAndSwapInt32(&maxInside, prev, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxInside); got != 1 {
		t.Errorf("expected at most 1 holder inside the critical section, got %d", got)
	}
}

func TestWithLock_WaitTimeout(t *testing.T) {
	m := NewMemoryManager()

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.WithLock(context.Background(), "k", time.Second, time.Minute, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := m.WithLock(context.Background(), "k", 30*time.Millisecond, time.Minute, func(ctx context.Context) error {
		t.Fatal("critical section must not run when the lock is not acquired")
		return nil
	})
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
}

func TestWithLock_LeaseExpiryUnblocksCompetitor(t *testing.T) {
	m := NewMemoryManager()

	// Simulate a crashed holder: acquire and never release.
	if !m.tryAcquire("k", "dead-holder", 20*time.Millisecond) {
		t.Fatal("initial acquire failed")
	}

	ran := false
	err := m.WithLock(context.Background(), "k", 500*time.Millisecond, time.Minute, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected lock takeover after lease expiry, got %v", err)
	}
	if !ran {
		t.Fatal("critical section did not run")
	}
}

func TestWithLock_ReleasedOnError(t *testing.T) {
	m := NewMemoryManager()
	boom := errors.New("boom")

	err := m.WithLock(context.Background(), "k", time.Second, time.Minute, func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}

	// The failed critical section must still release the lock.
	err = m.WithLock(context.Background(), "k", 50*time.Millisecond, time.Minute, func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("lock was not released after failure: %v", err)
	}
}

func TestWithLock_ContextCancelledWhileWaiting(t *testing.T) {
	m := NewMemoryManager()

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.WithLock(context.Background(), "k", time.Second, time.Minute, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.WithLock(ctx, "k", time.Minute, time.Minute, func(ctx context.Context) error {
		t.Fatal("critical section must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
