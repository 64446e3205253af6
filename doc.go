// Package memocache implements single-flight memoization with rich
// expiration policies. Each key owns a record; concurrent callers of the
// same key share one in-progress fetch, and a stale value is refreshed by
// exactly one producer while late consumers wait on the result.
//
// Components:
//   - Cache[K, V]: context-aware facade with an LRU-bounded repository,
//     background expired-item sweeper and resource wrapping.
//   - SyncCache[K, V]: blocking twin; sweeps lazily on access.
//   - expiration: the policy set (bool, date, refresh interval, "$."-path
//     attribute, predicate) plus the value/string resolution grammar.
//   - registry: opt-in fan-out for clearing or destroying many caches.
//   - keys: canonical argument hashing for callers that derive keys from
//     composite values.
//
// Expiration accepts almost anything:
//
//	cache, _ := memocache.New[string, Token](memocache.Options[string, Token]{
//	    Fetch:      fetchToken,
//	    Expiration: "$.expiry",     // read expiry out of the value itself
//	    RetryCount: 3,
//	})
//
// Failed generations are not retained unless NegativeCache is set, in which
// case the error is cached under NegativeExpiration (default "10 seconds").
package memocache
