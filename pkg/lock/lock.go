// Package lock provides named, time-bounded mutual exclusion for the
// booking path. A lock is identified purely by its key string; the
// lessons service keys locks by (tutor, start time) so unrelated
// bookings never contend.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when the lock is still held by a
// competitor after the wait timeout. The protected function is never
// invoked in that case.
var ErrNotAcquired = errors.New("lock not acquired within wait timeout")

// Manager runs a function under an exclusive named lock.
//
// The lock is acquired within wait or the call fails with
// ErrNotAcquired. Once acquired, it is released on every exit path.
// The lease bounds how long the lock survives a crashed or stalled
// holder; it is a safety net, not a normal-path timeout, and must
// comfortably exceed the expected critical section duration.
type Manager interface {
	WithLock(ctx context.Context, key string, wait, lease time.Duration, fn func(ctx context.Context) error) error
}
