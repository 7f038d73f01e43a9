package logic

import (
	"context"
	"errors"
	"fedi_engine/shared"
	"fmt"
	"github.com/spaolacci/murmur3"
	"sync"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_lock_manager.go -package mocks fedi_engine/logic ILockManager

const lockShardCount = 64

var ErrLockTimeout = errors.New("timed out waiting for lock")

// IGuard is a held lock. Release is idempotent.
type IGuard interface {
	Release()
}

// ILockManager hands out mutual exclusion keyed by string, typically an object's canonical URI.
type ILockManager interface {
	Acquire(ctx context.Context, key string) (IGuard, error)
	TryAcquire(ctx context.Context, key string) (IGuard, bool, error)
}

// WithLock runs fn while holding key. The lock is released however fn returns, panics included.
func WithLock[T any](ctx context.Context, lm ILockManager, key string, fn func() (T, error)) (T, error) {
	guard, err := lm.Acquire(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	defer guard.Release()
	return fn()
}

func NewLockManager(cfg *shared.Config, logger shared.ILogger) ILockManager {
	if cfg.Locks.Backend == shared.LockBackendRedis {
		logger.Infof("Using Redis lock manager at %s", cfg.Locks.RedisAddr)
		return NewRedisLockManager(cfg, logger)
	}
	return NewMemLockManager(cfg)
}

type lockEntry struct {
	released chan struct{}
}

type lockShard struct {
	mu   sync.Mutex
	held map[string]*lockEntry
}

type memLockManager struct {
	acquireTimeout time.Duration
	shards         [lockShardCount]lockShard
}

// NewMemLockManager returns a lock manager for a single process.
func NewMemLockManager(cfg *shared.Config) ILockManager {
	lm := memLockManager{
		acquireTimeout: time.Second * time.Duration(cfg.Locks.AcquireTimeoutSec),
	}
	for i := range lm.shards {
		lm.shards[i].held = make(map[string]*lockEntry)
	}
	return &lm
}

func (lm *memLockManager) shard(key string) *lockShard {
	return &lm.shards[murmur3.Sum32([]byte(key))%lockShardCount]
}

type memGuard struct {
	once  sync.Once
	shard *lockShard
	key   string
	entry *lockEntry
}

func (g *memGuard) Release() {
	g.once.Do(func() {
		g.shard.mu.Lock()
		if g.shard.held[g.key] == g.entry {
			delete(g.shard.held, g.key)
		}
		g.shard.mu.Unlock()
		close(g.entry.released)
	})
}

// tryTake returns a guard if key was free, else the entry to wait on.
func (lm *memLockManager) tryTake(key string) (*memGuard, *lockEntry) {
	shard := lm.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok := shard.held[key]; ok {
		return nil, entry
	}
	entry := &lockEntry{released: make(chan struct{})}
	shard.held[key] = entry
	return &memGuard{shard: shard, key: key, entry: entry}, nil
}

func (lm *memLockManager) Acquire(ctx context.Context, key string) (IGuard, error) {

	timeout := time.NewTimer(lm.acquireTimeout)
	defer timeout.Stop()

	for {
		guard, holder := lm.tryTake(key)
		if guard != nil {
			return guard, nil
		}
		select {
		case <-holder.released:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
	}
}

func (lm *memLockManager) TryAcquire(ctx context.Context, key string) (IGuard, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	guard, _ := lm.tryTake(key)
	if guard == nil {
		return nil, false, nil
	}
	return guard, true, nil
}
