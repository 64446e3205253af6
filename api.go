package memocache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/memocache/registry"
)

// Fetcher computes the value for a key. It is invoked single-flight: for any
// given key at most one call is in progress at a time, no matter how many
// goroutines ask.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

// SyncFetcher is the blocking-variant fetcher.
type SyncFetcher[K comparable, V any] func(key K) (V, error)

// Cache is the context-aware memoization cache. Get either returns the
// cached value, waits for an inflight fetch, or performs the fetch itself.
// A background sweeper (when configured) evicts expired records; Destroy
// cancels it and waits for outstanding cleanup.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, error)

	// Info reports hit/miss counters, size and the last sweep time.
	Info() Info

	// Clear destroys and evicts every record and resets the counters.
	Clear(ctx context.Context) error

	// RemoveExpired runs a manual expiry sweep.
	RemoveExpired(ctx context.Context) error

	// Parameters echoes the configuration the cache was built with.
	Parameters() Parameters

	// Destroy stops the background sweeper, clears the cache and waits for
	// delayed resource-release operations. The cache must not be used after.
	Destroy(ctx context.Context) error
}

// SyncCache is the blocking variant. Expired-item removal is lazy: each
// operation checks whether the sweep cadence elapsed.
type SyncCache[K comparable, V any] interface {
	Get(key K) (V, error)
	Info() Info
	Clear()
	RemoveExpired()
	Parameters() Parameters
}

// Info is the cache statistics snapshot.
type Info struct {
	Hits                uint64
	Misses              uint64
	MaxSize             *int // nil when uncapped
	CurrentSize         int
	LastExpirationCheck time.Time
}

// Parameters echoes the effective configuration.
type Parameters struct {
	MaxSize            *int
	Expiration         any
	NegativeCache      bool
	NegativeExpiration any
	RetryCount         int
	BackoffSeconds     float64
	SweepInterval      any
	WrapResources      bool
	ResourcePaths      []string
	CloseDelay         any
}

// Options tune the context-aware cache. Only Fetch is required.
type Options[K comparable, V any] struct {
	// Required
	Fetch Fetcher[K, V]

	// Disabled turns caching off entirely; Enabled, when set, is consulted
	// on every call instead (dynamic toggle).
	Disabled bool
	Enabled  func() bool

	// MaxSize bounds the repository: nil is uncapped, 0 disables caching,
	// negative values clamp to 0.
	MaxSize *int

	// Expiration for successful values; nil means non-expiring. Accepts any
	// value understood by expiration.Resolve (policy, bool, duration, time,
	// epoch number, grammar string, "$."-path, predicate func).
	Expiration any

	// NegativeCache keeps failed outcomes; NegativeExpiration bounds their
	// lifetime (default "10 seconds"). Without NegativeCache a failed
	// generation is not retained and every call re-runs the fetch.
	NegativeCache      bool
	NegativeExpiration any

	// RetryCount retries per generation (negative clamps to 0);
	// BackoffSeconds is the exponential backoff base, 0 retries immediately.
	RetryCount     int
	BackoffSeconds float64

	// SweepInterval enables the background expired-item sweeper; nil
	// disables it. Accepts any duration value of the grammar.
	SweepInterval any

	// WrapResources holds the cached value's io.Closer and releases it when
	// the record is destroyed. ResourcePaths instead extracts closers from
	// dotted paths inside the value (":ignore_missing" suffix tolerated).
	// CloseDelay postpones the release on a tracked background goroutine.
	WrapResources bool
	ResourcePaths []string
	CloseDelay    any

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// Registry, when set, enrolls the cache for ClearAll/DestroyAll fan-out.
	Registry *registry.Registry
}

// SyncOptions tune the blocking cache. Resource wrapping is not available:
// releasing handles may suspend, which the blocking variant cannot do safely
// during a sweep.
type SyncOptions[K comparable, V any] struct {
	Fetch SyncFetcher[K, V]

	Disabled bool
	Enabled  func() bool

	MaxSize *int

	Expiration         any
	NegativeCache      bool
	NegativeExpiration any

	RetryCount     int
	BackoffSeconds float64

	SweepInterval any

	Logger Logger
	Hooks  Hooks

	Registry *registry.Registry
}

// New builds a context-aware cache and starts its sweeper when configured.
func New[K comparable, V any](opts Options[K, V]) (Cache[K, V], error) {
	return newCache[K, V](opts)
}

// NewSync builds a blocking cache.
func NewSync[K comparable, V any](opts SyncOptions[K, V]) (SyncCache[K, V], error) {
	return newSyncCache[K, V](opts)
}
