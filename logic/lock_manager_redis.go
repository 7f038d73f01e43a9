package logic

import (
	"context"
	"fedi_engine/shared"
	"fmt"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"sync"
	"time"
)

const (
	redisLockPrefix   = "fedi:lock:"
	redisLockPollTime = 50 * time.Millisecond
)

// Deletes the key only if we still own it; a lease that expired may belong to someone else by now.
var redisReleaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLockManager struct {
	logger         shared.ILogger
	client         *redis.Client
	lease          time.Duration
	acquireTimeout time.Duration
}

// NewRedisLockManager returns a lock manager shared by every process that talks to the same Redis.
func NewRedisLockManager(cfg *shared.Config, logger shared.ILogger) ILockManager {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Locks.RedisAddr,
		Password: cfg.Secrets.RedisPassword,
		DB:       cfg.Locks.RedisDb,
	})
	return &redisLockManager{
		logger:         logger,
		client:         rdb,
		lease:          time.Second * time.Duration(cfg.Locks.LeaseSec),
		acquireTimeout: time.Second * time.Duration(cfg.Locks.AcquireTimeoutSec),
	}
}

type redisGuard struct {
	once  sync.Once
	lm    *redisLockManager
	key   string
	token string
}

func (g *redisGuard) Release() {
	g.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisReleaseScript.Run(ctx, g.lm.client, []string{g.key}, g.token).Err(); err != nil {
			g.lm.logger.Warnf("Failed to release lock %s: %v", g.key, err)
		}
	})
}

func (lm *redisLockManager) take(ctx context.Context, key string) (*redisGuard, bool, error) {
	redisKey := redisLockPrefix + key
	token := uuid.NewString()
	ok, err := lm.client.SetNX(ctx, redisKey, token, lm.lease).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock error: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisGuard{lm: lm, key: redisKey, token: token}, true, nil
}

func (lm *redisLockManager) Acquire(ctx context.Context, key string) (IGuard, error) {

	ctx, cancel := context.WithTimeout(ctx, lm.acquireTimeout)
	defer cancel()

	ticker := time.NewTicker(redisLockPollTime)
	defer ticker.Stop()

	for {
		guard, ok, err := lm.take(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return guard, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
	}
}

func (lm *redisLockManager) TryAcquire(ctx context.Context, key string) (IGuard, bool, error) {
	guard, ok, err := lm.take(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return guard, true, nil
}
