package memocache

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/unkn0wn-root/memocache/expiration"
)

// flight is the broadcast-once primitive coordinating one fetch generation.
// The producer fills value/err and closes done; waiters read the fields only
// after done is closed, so no lock is needed on the consumer side. A waiter
// may abandon the wait (context cancellation) without affecting the producer
// or the other waiters.
type flight struct {
	done  chan struct{}
	value any
	err   error
}

// record is the context-aware single-flight memoization cell. State machine:
// empty -> fetching -> ready -> (fetching on refresh) -> ready -> destroyed.
// All state is guarded by mu; the fetch itself runs outside the lock so
// records for different keys never serialize on each other.
type record[V any] struct {
	mu sync.Mutex

	fetch func(context.Context) (V, error)
	exec  execInfo

	expiration    expiration.ContextPolicy
	negExpiration expiration.ContextPolicy

	val      expiration.CachedValue
	inflight *flight
	closer   io.Closer
	dead     bool

	wrap       resourceWrap
	closeDelay time.Duration

	hooks Hooks
	log   Logger

	// spawn runs fn on a goroutine tracked by the owning cache so Destroy
	// can await delayed resource releases.
	spawn func(fn func())
}

// getCached returns the cached value, waits for an inflight fetch, or
// becomes the producer for a new generation.
func (r *record[V]) getCached(ctx context.Context) (V, error) {
	var zero V

	r.mu.Lock()
	if !r.val.LastFetched.IsZero() {
		expired, err := r.expiredLocked(ctx)
		if err != nil {
			r.mu.Unlock()
			return zero, err
		}
		if !expired {
			if r.val.IsError {
				err := r.val.Value.(error)
				r.mu.Unlock()
				return zero, err
			}
			v := r.val.Value.(V)
			r.mu.Unlock()
			return v, nil
		}
	}

	if fl := r.inflight; fl != nil {
		r.mu.Unlock()
		select {
		case <-fl.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		if fl.err != nil {
			return zero, fl.err
		}
		return fl.value.(V), nil
	}

	fl := &flight{done: make(chan struct{})}
	r.inflight = fl
	r.mu.Unlock()

	return r.produce(ctx, fl)
}

// produce runs the fetch for one generation and publishes the outcome.
// Only the caller that installed the inflight token gets here.
func (r *record[V]) produce(ctx context.Context, fl *flight) (V, error) {
	var zero V

	v, err := runFetch(ctx, r.exec, r.hooks, r.fetch)

	r.mu.Lock()
	if r.inflight != fl {
		r.mu.Unlock()
		derr := &DeadlockError{}
		fl.err = derr
		close(fl.done)
		return zero, derr
	}

	r.releaseLocked()

	if err == nil {
		closer, werr := r.wrap.acquire(v)
		if werr != nil {
			err = werr
		} else {
			r.closer = closer
		}
	}

	now := time.Now().UTC()
	switch {
	case err == nil:
		r.val = expiration.CachedValue{Value: v, LastFetched: now}
	case r.exec.negativeCache:
		r.val = expiration.CachedValue{Value: err, LastFetched: now, IsError: true}
	default:
		// failed generation is not retained: the next call fetches again
	}

	r.inflight = nil
	if r.dead {
		// the repository dropped this record mid-flight; hand the outcome
		// to waiters but do not retain it or its resource handle
		r.releaseLocked()
	}
	fl.value, fl.err = v, err
	close(fl.done)
	r.mu.Unlock()

	if err != nil {
		return zero, err
	}
	return v, nil
}

// isExpired consults the success or negative policy depending on the cached
// outcome. A record that never fetched reports false - callers treat that
// state as "compute now", not as expired.
func (r *record[V]) isExpired(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.val.LastFetched.IsZero() {
		return false, nil
	}
	return r.expiredLocked(ctx)
}

func (r *record[V]) expiredLocked(ctx context.Context) (bool, error) {
	policy := r.expiration
	if r.val.IsError {
		policy = r.negExpiration
	}
	return policy.IsValueExpired(ctx, &r.val)
}

// destroy releases the resource handle, resets the record to its empty form
// and tombstones it. The repository calls this when it stops referencing the
// record; an in-flight fetch still completes and signals its waiters, but
// its stored outcome is released instead of retained.
func (r *record[V]) destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dead = true
	r.releaseLocked()
}

func (r *record[V]) releaseLocked() {
	if r.val.LastFetched.IsZero() {
		return
	}
	if c := r.closer; c != nil {
		r.closer = nil
		if r.closeDelay > 0 {
			delay := r.closeDelay
			r.spawn(func() {
				time.Sleep(delay)
				r.closeHandle(c)
			})
		} else {
			r.closeHandle(c)
		}
	}
	r.val = expiration.CachedValue{}
}

func (r *record[V]) closeHandle(c io.Closer) {
	if err := c.Close(); err != nil {
		r.hooks.ResourceCloseError(err)
		r.log.Warn("resource close failed", Fields{"err": err})
	}
}
