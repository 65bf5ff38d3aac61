package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerialisesSameKey(t *testing.T) {
	l := NewLocalLocker()
	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), "doctor:1", func(context.Context) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.locks, "entries are dropped once unused")
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = l.WithLock(context.Background(), "doctor:1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ran := false
	require.NoError(t, l.WithLock(ctx, "doctor:2", func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	close(release)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = l.WithLock(context.Background(), "appointment:1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.WithLock(ctx, "appointment:1", func(context.Context) error {
		t.Fatal("must not run while the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-done
}

func TestLocalLockerPropagatesError(t *testing.T) {
	l := NewLocalLocker()
	want := assert.AnError
	err := l.WithLock(context.Background(), "k", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}
