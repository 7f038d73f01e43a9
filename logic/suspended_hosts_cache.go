package logic

import (
	"context"
	"fedi_engine/dal"
	"fedi_engine/shared"
	"golang.org/x/sync/singleflight"
	"sync"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_suspended_hosts_cache.go -package mocks fedi_engine/logic ISuspendedHostsCache

// ISuspendedHostsCache is a snapshot of suspended hosts, reloaded from the store when it goes stale.
type ISuspendedHostsCache interface {
	IsSuspended(ctx context.Context, host string) (bool, error)
	Invalidate()
}

type suspendedHostsCache struct {
	repo     dal.IRepo
	clock    shared.IClock
	ttl      time.Duration
	sf       singleflight.Group
	mu       sync.Mutex
	hosts    map[string]struct{}
	loadedAt time.Time
	valid    bool
	gen      uint64
}

func NewSuspendedHostsCache(cfg *shared.Config, repo dal.IRepo, clock shared.IClock) ISuspendedHostsCache {
	return &suspendedHostsCache{
		repo:  repo,
		clock: clock,
		ttl:   cfg.SuspendedHostsCacheTtl(),
	}
}

func (c *suspendedHostsCache) current() (map[string]struct{}, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.clock.Now().Sub(c.loadedAt) < c.ttl {
		return c.hosts, c.gen, true
	}
	return nil, c.gen, false
}

func (c *suspendedHostsCache) get(ctx context.Context) (map[string]struct{}, error) {

	hosts, gen, ok := c.current()
	if ok {
		return hosts, nil
	}

	// Concurrent misses share one store round-trip
	resCh := c.sf.DoChan("hosts", func() (any, error) {
		list, err := c.repo.GetSuspendedHosts()
		if err != nil {
			return nil, err
		}
		loaded := make(map[string]struct{}, len(list))
		for _, host := range list {
			loaded[shared.NormalizeHost(host)] = struct{}{}
		}
		c.mu.Lock()
		// An invalidation that raced with the load wins; the next call reloads
		if c.gen == gen {
			c.hosts = loaded
			c.loadedAt = c.clock.Now()
			c.valid = true
		}
		c.mu.Unlock()
		return loaded, nil
	})

	select {
	case res := <-resCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]struct{}), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *suspendedHostsCache) IsSuspended(ctx context.Context, host string) (bool, error) {
	hosts, err := c.get(ctx)
	if err != nil {
		return false, err
	}
	_, ok := hosts[shared.NormalizeHost(host)]
	return ok, nil
}

func (c *suspendedHostsCache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.gen++
	c.mu.Unlock()
}
