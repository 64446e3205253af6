package memocache

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/memocache/expiration"
	"github.com/unkn0wn-root/memocache/internal/lru"
)

type syncCache[K comparable, V any] struct {
	fetch   SyncFetcher[K, V]
	enabled func() bool
	maxSize *int

	mu        sync.Mutex
	repo      *lru.Repository[K, *syncRecord[V]]
	hits      uint64
	misses    uint64
	lastSweep time.Time

	expPolicy  expiration.Policy
	negPolicy  expiration.Policy
	exec       execInfo
	sweepEvery time.Duration

	log    Logger
	hooks  Hooks
	params Parameters

	deregister func()
}

type syncSweepEntry[K comparable, V any] struct {
	key K
	rec *syncRecord[V]
}

func newSyncCache[K comparable, V any](opts SyncOptions[K, V]) (*syncCache[K, V], error) {
	var errs []string
	if opts.Fetch == nil {
		errs = append(errs, "fetch function is required")
	}

	expPolicy, err := expiration.ResolveSync(opts.Expiration)
	if err != nil {
		errs = append(errs, "invalid expiration: "+err.Error())
	}
	negValue := opts.NegativeExpiration
	if negValue == nil {
		negValue = defaultNegativeExpiration
	}
	negPolicy, err := expiration.ResolveSync(negValue)
	if err != nil {
		errs = append(errs, "invalid negative expiration: "+err.Error())
	}
	sweepEvery, err := expiration.ResolveInterval(opts.SweepInterval)
	if err != nil {
		errs = append(errs, "invalid expired items removal period: "+err.Error())
	}
	if len(errs) > 0 {
		return nil, &InvalidCacheConfigError{Errors: errs}
	}

	c := &syncCache[K, V]{
		fetch:      opts.Fetch,
		maxSize:    normalizeMaxSize(opts.MaxSize),
		expPolicy:  expPolicy,
		negPolicy:  negPolicy,
		sweepEvery: sweepEvery,
		exec: execInfo{
			negativeCache:  opts.NegativeCache,
			retries:        clampRetries(opts.RetryCount),
			backoffSeconds: max(opts.BackoffSeconds, 0),
		},
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.enabled = enabledFunc(c.maxSize, opts.Enabled, opts.Disabled)
	c.repo = newRepository[K, *syncRecord[V]](c.maxSize)
	c.params = Parameters{
		MaxSize:            c.maxSize,
		Expiration:         opts.Expiration,
		NegativeCache:      opts.NegativeCache,
		NegativeExpiration: negValue,
		RetryCount:         int(c.exec.retries),
		BackoffSeconds:     c.exec.backoffSeconds,
		SweepInterval:      opts.SweepInterval,
	}

	if opts.Registry != nil {
		c.deregister = opts.Registry.RegisterSync(c)
	}
	return c, nil
}

func (c *syncCache[K, V]) Get(key K) (V, error) {
	if !c.enabled() {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		c.hooks.Miss(key)
		return c.fetch(key)
	}

	c.maybeSweep()

	c.mu.Lock()
	var rec *syncRecord[V]
	var ok bool
	if c.maxSize == nil {
		rec, ok = c.repo.GetNoAdjust(key)
	} else {
		rec, ok = c.repo.Get(key)
	}
	var evictedKey K
	var evictedAny bool
	if ok {
		c.hits++
	} else {
		c.misses++
		rec = c.newRecord(key)
		if c.maxSize == nil {
			c.repo.AddNoAdjust(key, rec)
		} else if ek, ev, did := c.repo.Add(key, rec); did {
			evictedKey, evictedAny = ek, true
			ev.destroy()
		}
	}
	c.mu.Unlock()

	if ok {
		c.hooks.Hit(key)
	} else {
		c.hooks.Miss(key)
	}
	if evictedAny {
		c.hooks.Evicted(evictedKey)
	}

	return rec.getCached()
}

func (c *syncCache[K, V]) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Info{
		Hits:                c.hits,
		Misses:              c.misses,
		MaxSize:             c.maxSize,
		CurrentSize:         c.repo.Len(),
		LastExpirationCheck: c.lastSweep,
	}
}

func (c *syncCache[K, V]) Parameters() Parameters { return c.params }

func (c *syncCache[K, V]) Clear() {
	c.mu.Lock()
	var records []*syncRecord[V]
	c.repo.Every(func(_ K, rec *syncRecord[V]) {
		records = append(records, rec)
	})
	c.repo.Clear()
	c.hits, c.misses = 0, 0
	c.mu.Unlock()

	for _, rec := range records {
		rec.destroy()
	}
}

func (c *syncCache[K, V]) RemoveExpired() {
	c.mu.Lock()
	entries := c.sweepSnapshotLocked()
	c.mu.Unlock()
	c.sweep(entries)
}

// maybeSweep runs the lazy removal pass once per sweep interval.
func (c *syncCache[K, V]) maybeSweep() {
	if c.sweepEvery <= 0 {
		return
	}
	c.mu.Lock()
	if time.Since(c.lastSweep) < c.sweepEvery {
		c.mu.Unlock()
		return
	}
	entries := c.sweepSnapshotLocked()
	c.mu.Unlock()
	c.sweep(entries)
}

// sweepSnapshotLocked stamps the sweep time and captures the entries to
// examine. Caller holds c.mu.
func (c *syncCache[K, V]) sweepSnapshotLocked() []syncSweepEntry[K, V] {
	c.lastSweep = time.Now().UTC()
	entries := make([]syncSweepEntry[K, V], 0, c.repo.Len())
	c.repo.Every(func(key K, rec *syncRecord[V]) {
		entries = append(entries, syncSweepEntry[K, V]{key: key, rec: rec})
	})
	return entries
}

// sweep evaluates expiry outside the structural lock; policies may run user
// predicates. An entry is removed only if its record is unchanged.
func (c *syncCache[K, V]) sweep(entries []syncSweepEntry[K, V]) {
	var stale []syncSweepEntry[K, V]
	for _, e := range entries {
		expired, err := e.rec.isExpired()
		if err != nil {
			c.log.Warn("expiration check failed during sweep", Fields{"key": e.key, "err": err})
			continue
		}
		if expired {
			stale = append(stale, e)
		}
	}

	var removed []*syncRecord[V]
	if len(stale) > 0 {
		c.mu.Lock()
		for _, e := range stale {
			if cur, ok := c.repo.GetNoAdjust(e.key); ok && cur == e.rec {
				c.repo.Remove(e.key)
				removed = append(removed, e.rec)
			}
		}
		c.mu.Unlock()
	}

	for _, rec := range removed {
		rec.destroy()
	}
	c.hooks.SweepDone(len(removed))
}

func (c *syncCache[K, V]) newRecord(key K) *syncRecord[V] {
	return &syncRecord[V]{
		fetch: func() (V, error) {
			return c.fetch(key)
		},
		exec:          c.exec,
		expiration:    c.expPolicy,
		negExpiration: c.negPolicy,
		hooks:         c.hooks,
		log:           c.log,
	}
}
