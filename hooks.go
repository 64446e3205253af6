package memocache

import "time"

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking - the cache calls them on
// hot paths. Wrap with hooks/async to offload slow sinks.
type Hooks interface {
	// A Get was answered from an existing record.
	Hit(key any)

	// A Get created a new record (or caching is disabled).
	Miss(key any)

	// A record was dropped because the repository was at capacity.
	Evicted(key any)

	// An expiry sweep finished; removed is the number of destroyed records.
	SweepDone(removed int)

	// The retry executor scheduled another attempt after a failure.
	RetryScheduled(err error, delay time.Duration)

	// Releasing a cached value's resource handle failed. Cleanup is
	// best-effort; the failure is reported here instead of blocking progress.
	ResourceCloseError(err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(any)                             {}
func (NopHooks) Miss(any)                            {}
func (NopHooks) Evicted(any)                         {}
func (NopHooks) SweepDone(int)                       {}
func (NopHooks) RetryScheduled(error, time.Duration) {}
func (NopHooks) ResourceCloseError(error)            {}
