package memocache

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// execInfo is the per-record task execution policy, fixed at construction.
type execInfo struct {
	negativeCache  bool
	retries        uint
	backoffSeconds float64
}

// expBackoff implements backoff.BackOff as base*2^attempt seconds plus up to
// one second of jitter. A zero base retries immediately with no sleep.
type expBackoff struct {
	base    float64
	attempt int
}

func (b *expBackoff) NextBackOff() time.Duration {
	if b.base == 0 {
		return 0
	}
	secs := b.base*math.Pow(2, float64(b.attempt)) + rand.Float64()
	b.attempt++
	return time.Duration(secs * float64(time.Second))
}

func (b *expBackoff) Reset() { b.attempt = 0 }

// runFetch executes fetch with the record's retry policy. After exhausting
// retries the last error is returned and becomes the generation's outcome.
func runFetch[V any](ctx context.Context, exec execInfo, hooks Hooks, fetch func(context.Context) (V, error)) (V, error) {
	return backoff.Retry(ctx,
		func() (V, error) { return fetch(ctx) },
		backoff.WithBackOff(&expBackoff{base: exec.backoffSeconds}),
		backoff.WithMaxTries(exec.retries+1),
		backoff.WithNotify(func(err error, delay time.Duration) {
			hooks.RetryScheduled(err, delay)
		}),
	)
}
