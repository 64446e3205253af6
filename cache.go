package memocache

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/memocache/expiration"
	"github.com/unkn0wn-root/memocache/internal/lru"
)

const defaultNegativeExpiration = "10 seconds"

type cache[K comparable, V any] struct {
	fetch   Fetcher[K, V]
	enabled func() bool
	maxSize *int // normalized copy; nil = uncapped

	mu        sync.Mutex // guards repo, counters, lastSweep
	repo      *lru.Repository[K, *record[V]]
	hits      uint64
	misses    uint64
	lastSweep time.Time

	expPolicy  expiration.ContextPolicy
	negPolicy  expiration.ContextPolicy
	exec       execInfo
	wrap       resourceWrap
	closeDelay time.Duration
	sweepEvery time.Duration

	log    Logger
	hooks  Hooks
	params Parameters

	sweepStop  chan struct{}
	sweepWG    sync.WaitGroup
	closeWG    sync.WaitGroup
	stopOnce   sync.Once
	deregister func()
}

func newCache[K comparable, V any](opts Options[K, V]) (*cache[K, V], error) {
	var errs []string
	if opts.Fetch == nil {
		errs = append(errs, "fetch function is required")
	}

	expPolicy, err := expiration.Resolve(opts.Expiration)
	if err != nil {
		errs = append(errs, "invalid expiration: "+err.Error())
	}
	negValue := opts.NegativeExpiration
	if negValue == nil {
		negValue = defaultNegativeExpiration
	}
	negPolicy, err := expiration.Resolve(negValue)
	if err != nil {
		errs = append(errs, "invalid negative expiration: "+err.Error())
	}
	sweepEvery, err := expiration.ResolveInterval(opts.SweepInterval)
	if err != nil {
		errs = append(errs, "invalid expired items removal period: "+err.Error())
	}
	closeDelay, err := expiration.ResolveInterval(opts.CloseDelay)
	if err != nil {
		errs = append(errs, "invalid close delay: "+err.Error())
	}
	if opts.WrapResources && len(opts.ResourcePaths) > 0 {
		errs = append(errs, "wrap resources and resource paths are mutually exclusive")
	}
	if len(errs) > 0 {
		return nil, &InvalidCacheConfigError{Errors: errs}
	}

	c := &cache[K, V]{
		fetch:      opts.Fetch,
		maxSize:    normalizeMaxSize(opts.MaxSize),
		expPolicy:  expPolicy,
		negPolicy:  negPolicy,
		wrap:       resourceWrap{wrapValue: opts.WrapResources, paths: opts.ResourcePaths},
		closeDelay: closeDelay,
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
	c.repo = newRepository[K, *record[V]](c.maxSize)
	c.params = Parameters{
		MaxSize:            c.maxSize,
		Expiration:         opts.Expiration,
		NegativeCache:      opts.NegativeCache,
		NegativeExpiration: negValue,
		RetryCount:         int(c.exec.retries),
		BackoffSeconds:     c.exec.backoffSeconds,
		SweepInterval:      opts.SweepInterval,
		WrapResources:      opts.WrapResources,
		ResourcePaths:      opts.ResourcePaths,
		CloseDelay:         opts.CloseDelay,
	}

	if opts.Registry != nil {
		c.deregister = opts.Registry.Register(c)
	}
	c.startSweeper()
	return c, nil
}

func (c *cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if !c.enabled() {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		c.hooks.Miss(key)
		return c.fetch(ctx, key)
	}

	c.mu.Lock()
	var rec *record[V]
	var ok bool
	if c.maxSize == nil {
		rec, ok = c.repo.GetNoAdjust(key)
	} else {
		rec, ok = c.repo.Get(key)
	}
	var evicted *record[V]
	var evictedKey K
	if ok {
		c.hits++
	} else {
		c.misses++
		rec = c.newRecord(key)
		if c.maxSize == nil {
			c.repo.AddNoAdjust(key, rec)
		} else if ek, ev, did := c.repo.Add(key, rec); did {
			evictedKey, evicted = ek, ev
		}
	}
	c.mu.Unlock()

	if ok {
		c.hooks.Hit(key)
	} else {
		c.hooks.Miss(key)
	}
	if evicted != nil {
		// release the evicted record off the caller's path
		c.hooks.Evicted(evictedKey)
		c.spawn(evicted.destroy)
	}

	return rec.getCached(ctx)
}

func (c *cache[K, V]) Info() Info {
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

func (c *cache[K, V]) Parameters() Parameters { return c.params }

func (c *cache[K, V]) Clear(_ context.Context) error {
	c.mu.Lock()
	var records []*record[V]
	c.repo.Every(func(_ K, rec *record[V]) {
		records = append(records, rec)
	})
	c.repo.Clear()
	c.hits, c.misses = 0, 0
	c.mu.Unlock()

	for _, rec := range records {
		rec.destroy()
	}
	return nil
}

type sweepEntry[K comparable, V any] struct {
	key K
	rec *record[V]
}

// RemoveExpired evicts and destroys every expired record. Policies may run
// user predicates, so expiry is evaluated on a snapshot outside the
// structural lock; an entry is then removed only if its record is unchanged.
// Policy evaluation failures keep the entry; sweeping never fails.
func (c *cache[K, V]) RemoveExpired(ctx context.Context) error {
	c.mu.Lock()
	c.lastSweep = time.Now().UTC()
	entries := make([]sweepEntry[K, V], 0, c.repo.Len())
	c.repo.Every(func(key K, rec *record[V]) {
		entries = append(entries, sweepEntry[K, V]{key: key, rec: rec})
	})
	c.mu.Unlock()

	var stale []sweepEntry[K, V]
	for _, e := range entries {
		expired, err := e.rec.isExpired(ctx)
		if err != nil {
			c.log.Warn("expiration check failed during sweep", Fields{"key": e.key, "err": err})
			continue
		}
		if expired {
			stale = append(stale, e)
		}
	}

	var removed []*record[V]
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
	return nil
}

func (c *cache[K, V]) Destroy(ctx context.Context) error {
	c.stopOnce.Do(func() {
		if c.sweepStop != nil {
			close(c.sweepStop)
		}
	})
	c.sweepWG.Wait()

	if err := c.Clear(ctx); err != nil {
		return err
	}
	if c.deregister != nil {
		c.deregister()
	}

	// wait for delayed resource releases, honoring the caller's deadline
	done := make(chan struct{})
	go func() {
		c.closeWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *cache[K, V]) newRecord(key K) *record[V] {
	return &record[V]{
		fetch: func(ctx context.Context) (V, error) {
			return c.fetch(ctx, key)
		},
		exec:          c.exec,
		expiration:    c.expPolicy,
		negExpiration: c.negPolicy,
		wrap:          c.wrap,
		closeDelay:    c.closeDelay,
		hooks:         c.hooks,
		log:           c.log,
		spawn:         c.spawn,
	}
}

func (c *cache[K, V]) spawn(fn func()) {
	c.closeWG.Add(1)
	go func() {
		defer c.closeWG.Done()
		fn()
	}()
}

func (c *cache[K, V]) startSweeper() {
	if c.sweepEvery <= 0 {
		return
	}
	c.sweepStop = make(chan struct{})
	ticker := time.NewTicker(c.sweepEvery)
	c.sweepWG.Add(1)
	go func() {
		defer c.sweepWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = c.RemoveExpired(context.Background())
			case <-c.sweepStop:
				return
			}
		}
	}()
}

func normalizeMaxSize(maxSize *int) *int {
	if maxSize == nil {
		return nil
	}
	m := *maxSize
	if m < 0 {
		m = 0
	}
	return &m
}

func clampRetries(n int) uint {
	if n < 0 {
		return 0
	}
	return uint(n)
}

func enabledFunc(maxSize *int, enabled func() bool, disabled bool) func() bool {
	return func() bool {
		if maxSize != nil && *maxSize == 0 {
			return false
		}
		if enabled != nil {
			return enabled()
		}
		return !disabled
	}
}

func newRepository[K comparable, V any](maxSize *int) *lru.Repository[K, V] {
	if maxSize == nil {
		return lru.New[K, V](0, false)
	}
	return lru.New[K, V](*maxSize, true)
}
