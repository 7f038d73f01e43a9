package logic_test

import (
	"context"
	"errors"
	"fedi_engine/logic"
	"fedi_engine/test"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemLock_MutualExclusion(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := logic.WithLock(context.Background(), sut, "https://remote.example/notes/1", func() (bool, error) {
				n := inside.Add(1)
				for {
					cur := maxInside.Load()
					if n <= cur || maxInside.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestMemLock_DistinctKeysDoNotBlock(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())
	ctx := context.Background()

	var guards []logic.IGuard
	for i := 0; i < 200; i++ {
		guard, ok, err := sut.TryAcquire(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		require.True(t, ok, i)
		guards = append(guards, guard)
	}
	for _, guard := range guards {
		guard.Release()
	}
}

func TestMemLock_TryAcquire(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())
	ctx := context.Background()

	guard, ok, err := sut.TryAcquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = sut.TryAcquire(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	guard.Release()
	guard.Release()
	again, ok, err := sut.TryAcquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// A stale guard's second release must not free the new holder
	guard.Release()
	_, ok, _ = sut.TryAcquire(ctx, "k")
	assert.False(t, ok)
	again.Release()
}

func TestMemLock_ReleasedOnPanic(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())

	assert.Panics(t, func() {
		_, _ = logic.WithLock(context.Background(), sut, "k", func() (int, error) {
			panic("boom")
		})
	})
	guard, ok, err := sut.TryAcquire(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	guard.Release()
}

func TestMemLock_ReleasedOnError(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())
	failure := errors.New("failed")

	_, err := logic.WithLock(context.Background(), sut, "k", func() (int, error) {
		return 0, failure
	})
	assert.ErrorIs(t, err, failure)
	guard, ok, _ := sut.TryAcquire(context.Background(), "k")
	assert.True(t, ok)
	guard.Release()
}

func TestMemLock_Timeout(t *testing.T) {
	cfg := test.MakeConfig()
	cfg.Locks.AcquireTimeoutSec = 1
	sut := logic.NewMemLockManager(cfg)

	guard, err := sut.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer guard.Release()

	start := time.Now()
	_, err = sut.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, logic.ErrLockTimeout)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestMemLock_Canceled(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())
	guard, err := sut.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer guard.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = sut.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, _, err = sut.TryAcquire(canceled, "other")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemLock_WaiterGetsLockAfterRelease(t *testing.T) {
	sut := logic.NewMemLockManager(test.MakeConfig())
	guard, err := sut.Acquire(context.Background(), "k")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		g, err := sut.Acquire(context.Background(), "k")
		if err == nil {
			g.Release()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("waiter got the lock while it was held")
	case <-time.After(20 * time.Millisecond):
	}
	guard.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}
