// Package expiration decides when a cached value is stale.
//
// Policies form a closed set of variants resolved once at cache
// configuration time via Resolve/ResolveSync. Blocking callers use Policy;
// callers with a context use ContextPolicy. Attribute and predicate policies
// re-resolve their extracted value recursively, so a predicate may return a
// duration string, an epoch number, a bool or another policy.
package expiration

import (
	"context"
	"time"

	"github.com/unkn0wn-root/memocache/internal/extract"
)

// timeNow is swapped out by tests that pin the clock.
var timeNow = time.Now

// CachedValue is the policy's view of a cache record. A zero LastFetched
// means nothing has been computed yet.
type CachedValue struct {
	Value       any
	LastFetched time.Time
	IsError     bool
}

// Policy reports whether a cached value is expired. Evaluation may fail for
// attribute policies (missing path) and predicate policies.
type Policy interface {
	IsValueExpired(v *CachedValue) (bool, error)
}

// ContextPolicy is the context-aware form of Policy. Evaluation may suspend
// (user predicates doing I/O), so it takes a context.
type ContextPolicy interface {
	IsValueExpired(ctx context.Context, v *CachedValue) (bool, error)
}

// Wrap lifts a blocking Policy into a ContextPolicy.
func Wrap(p Policy) ContextPolicy { return wrapped{p} }

type wrapped struct{ p Policy }

func (w wrapped) IsValueExpired(_ context.Context, v *CachedValue) (bool, error) {
	return w.p.IsValueExpired(v)
}

// NonExpiring only expires when nothing has been fetched yet; once a value
// exists it is kept forever.
type NonExpiring struct{}

func (NonExpiring) IsValueExpired(v *CachedValue) (bool, error) {
	return v.LastFetched.IsZero(), nil
}

// Bool is a constant verdict.
type Bool struct {
	Expired bool
}

func (b Bool) IsValueExpired(*CachedValue) (bool, error) { return b.Expired, nil }

// Date expires a value once it was fetched at or after Expiry.
type Date struct {
	Expiry time.Time
}

func (d Date) IsValueExpired(v *CachedValue) (bool, error) {
	if v.LastFetched.IsZero() {
		return true, nil
	}
	return !v.LastFetched.Before(d.Expiry), nil
}

// Refreshing expires a value Interval after it was fetched.
type Refreshing struct {
	Interval time.Duration
}

func (r Refreshing) IsValueExpired(v *CachedValue) (bool, error) {
	if v.LastFetched.IsZero() {
		return true, nil
	}
	return timeNow().Sub(v.LastFetched) >= r.Interval, nil
}

// Attribute extracts a dotted path ("$.token.expiration") from the cached
// value, re-resolves the extracted value as another expiration and evaluates
// it. A missing path is an extraction error, not "never expires".
type Attribute struct {
	Path string
}

func (a Attribute) IsValueExpired(v *CachedValue) (bool, error) {
	raw, err := extract.FromObj(v.Value, a.Path)
	if err != nil {
		return false, err
	}
	p, err := ResolveSync(raw)
	if err != nil {
		return false, err
	}
	return p.IsValueExpired(v)
}

// ContextAttribute is Attribute for context-aware callers; the extracted
// value may resolve to a context policy.
type ContextAttribute struct {
	Path string
}

func (a ContextAttribute) IsValueExpired(ctx context.Context, v *CachedValue) (bool, error) {
	raw, err := extract.FromObj(v.Value, a.Path)
	if err != nil {
		return false, err
	}
	p, err := Resolve(raw)
	if err != nil {
		return false, err
	}
	return p.IsValueExpired(ctx, v)
}

// PredicateFunc inspects a cached value and returns any expiration value,
// which is resolved recursively.
type PredicateFunc func(v *CachedValue) (any, error)

// ContextPredicateFunc is the context-aware predicate form.
type ContextPredicateFunc func(ctx context.Context, v *CachedValue) (any, error)

// Predicate evaluates a user function and interprets its result as another
// expiration value.
type Predicate struct {
	Func PredicateFunc
}

func (p Predicate) IsValueExpired(v *CachedValue) (bool, error) {
	out, err := p.Func(v)
	if err != nil {
		return false, err
	}
	resolved, err := ResolveSync(out)
	if err != nil {
		return false, err
	}
	return resolved.IsValueExpired(v)
}

// ContextPredicate is Predicate for context-aware callers.
type ContextPredicate struct {
	Func ContextPredicateFunc
}

func (p ContextPredicate) IsValueExpired(ctx context.Context, v *CachedValue) (bool, error) {
	out, err := p.Func(ctx, v)
	if err != nil {
		return false, err
	}
	resolved, err := Resolve(out)
	if err != nil {
		return false, err
	}
	return resolved.IsValueExpired(ctx, v)
}
