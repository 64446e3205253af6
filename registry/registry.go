// Package registry fans out bulk clear/destroy calls to live cache
// instances. A Registry is an explicit value handed to each cache at
// construction rather than process-wide mutable state; tie its lifetime to
// your application and call DestroyAll at shutdown.
package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Cache is the context-aware side of the fan-out.
type Cache interface {
	Clear(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// SyncCache is the blocking side of the fan-out.
type SyncCache interface {
	Clear()
}

// Registry tracks live caches. Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	caches map[uint64]Cache
	syncs  map[uint64]SyncCache
}

func New() *Registry {
	return &Registry{
		caches: make(map[uint64]Cache),
		syncs:  make(map[uint64]SyncCache),
	}
}

// Register enrolls a context-aware cache and returns its deregister func.
// Deregistering twice is harmless.
func (r *Registry) Register(c Cache) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.caches[id] = c
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.caches, id)
		r.mu.Unlock()
	}
}

// RegisterSync enrolls a blocking cache.
func (r *Registry) RegisterSync(c SyncCache) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.syncs[id] = c
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.syncs, id)
		r.mu.Unlock()
	}
}

// ClearAll clears every registered cache, blocking ones included. Context
// caches are cleared concurrently; the first error is returned after all
// complete.
func (r *Registry) ClearAll(ctx context.Context) error {
	caches, syncs := r.snapshot()
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range caches {
		g.Go(func() error { return c.Clear(gctx) })
	}
	for _, c := range syncs {
		c.Clear()
	}
	return g.Wait()
}

// ClearAllSync clears only the blocking caches. Useful from code that has no
// context to offer.
func (r *Registry) ClearAllSync() {
	_, syncs := r.snapshot()
	for _, c := range syncs {
		c.Clear()
	}
}

// DestroyAll destroys every registered context cache concurrently. Destroyed
// caches deregister themselves. Blocking caches have no destroy operation;
// clear them via ClearAllSync.
func (r *Registry) DestroyAll(ctx context.Context) error {
	caches, _ := r.snapshot()
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range caches {
		g.Go(func() error { return c.Destroy(gctx) })
	}
	return g.Wait()
}

// Size reports how many caches are currently registered.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.caches) + len(r.syncs)
}

func (r *Registry) snapshot() ([]Cache, []SyncCache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	caches := make([]Cache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	syncs := make([]SyncCache, 0, len(r.syncs))
	for _, c := range r.syncs {
		syncs = append(syncs, c)
	}
	return caches, syncs
}
