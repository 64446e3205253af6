package memocache

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/memocache/expiration"
)

// syncRecord is the blocking twin of record: the identical state machine
// built on OS-thread primitives. Waiting for an inflight generation blocks
// the goroutine on the flight channel; backoff sleeps block inside the retry
// executor. No other behavioral difference is permitted between the two.
type syncRecord[V any] struct {
	mu sync.Mutex

	fetch func() (V, error)
	exec  execInfo

	expiration    expiration.Policy
	negExpiration expiration.Policy

	val      expiration.CachedValue
	inflight *flight

	hooks Hooks
	log   Logger
}

func (r *syncRecord[V]) getCached() (V, error) {
	var zero V

	r.mu.Lock()
	if !r.val.LastFetched.IsZero() {
		expired, err := r.expiredLocked()
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
		<-fl.done
		if fl.err != nil {
			return zero, fl.err
		}
		return fl.value.(V), nil
	}

	fl := &flight{done: make(chan struct{})}
	r.inflight = fl
	r.mu.Unlock()

	return r.produce(fl)
}

func (r *syncRecord[V]) produce(fl *flight) (V, error) {
	var zero V

	v, err := runFetch(context.Background(), r.exec, r.hooks, func(context.Context) (V, error) {
		return r.fetch()
	})

	r.mu.Lock()
	if r.inflight != fl {
		r.mu.Unlock()
		derr := &DeadlockError{}
		fl.err = derr
		close(fl.done)
		return zero, derr
	}

	r.destroyLocked()

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
	fl.value, fl.err = v, err
	close(fl.done)
	r.mu.Unlock()

	if err != nil {
		return zero, err
	}
	return v, nil
}

func (r *syncRecord[V]) isExpired() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.val.LastFetched.IsZero() {
		return false, nil
	}
	return r.expiredLocked()
}

func (r *syncRecord[V]) expiredLocked() (bool, error) {
	policy := r.expiration
	if r.val.IsError {
		policy = r.negExpiration
	}
	return policy.IsValueExpired(&r.val)
}

func (r *syncRecord[V]) destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.val.LastFetched.IsZero() {
		return
	}
	r.val = expiration.CachedValue{}
}

func (r *syncRecord[V]) destroyLocked() {
	if r.val.LastFetched.IsZero() {
		return
	}
	r.val = expiration.CachedValue{}
}
