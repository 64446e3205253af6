// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/memocache"
//	"github.com/unkn0wn-root/memocache/hooks/async"
//	"github.com/unkn0wn-root/memocache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 1,   // log every miss
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := memocache.New[string, User](memocache.Options[string, User]{
//	    Fetch:      fetchUser,
//	    Expiration: "5 minutes",
//	    Hooks:      hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/memocache"
)

type Hooks struct {
	inner memocache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ memocache.Hooks = (*Hooks)(nil)

func New(inner memocache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(key any)            { h.try(func() { h.inner.Hit(key) }) }
func (h *Hooks) Miss(key any)           { h.try(func() { h.inner.Miss(key) }) }
func (h *Hooks) Evicted(key any)        { h.try(func() { h.inner.Evicted(key) }) }
func (h *Hooks) SweepDone(removed int)  { h.try(func() { h.inner.SweepDone(removed) }) }
func (h *Hooks) ResourceCloseError(err error) {
	h.try(func() { h.inner.ResourceCloseError(err) })
}
func (h *Hooks) RetryScheduled(err error, delay time.Duration) {
	h.try(func() { h.inner.RetryScheduled(err, delay) })
}
