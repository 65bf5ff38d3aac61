// Package lock serialises writers per key: one doctor's schedule or one
// appointment at a time.
package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker runs fn while holding the lock named key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type entry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex. Waiters give up when their
// context ends.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*entry)}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	e := l.acquireRef(key)
	defer l.releaseRef(key, e)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		return errors.Join(ErrLockNotAcquired, ctx.Err())
	}
	defer func() { <-e.ch }()

	return fn(ctx)
}

func (l *LocalLocker) acquireRef(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) releaseRef(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
