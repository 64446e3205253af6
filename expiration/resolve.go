package expiration

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Numbers above this are epoch timestamps; at or below they are refresh
// intervals in seconds.
const epochThreshold = 1e8

// Resolve interprets an arbitrary configuration value as a context-aware
// expiration policy:
//
//   - nil: NonExpiring
//   - bool: constant verdict
//   - time.Duration: Refreshing
//   - time.Time: Date
//   - number: epoch timestamp above 1e8, refresh interval in seconds below
//   - string: "$." attribute path, else datetime / date / clock time /
//     duration grammar, tried in that order
//   - Policy / ContextPolicy: passed through
//   - PredicateFunc / ContextPredicateFunc: predicate policy
func Resolve(value any) (ContextPolicy, error) {
	switch v := value.(type) {
	case nil:
		return Wrap(NonExpiring{}), nil
	case ContextPolicy:
		return v, nil
	case Policy:
		return Wrap(v), nil
	case ContextPredicateFunc:
		return ContextPredicate{Func: v}, nil
	case func(ctx context.Context, cv *CachedValue) (any, error):
		return ContextPredicate{Func: v}, nil
	case PredicateFunc:
		return Wrap(Predicate{Func: v}), nil
	case func(cv *CachedValue) (any, error):
		return Wrap(Predicate{Func: v}), nil
	case bool:
		return Wrap(Bool{Expired: v}), nil
	case time.Duration:
		return Wrap(Refreshing{Interval: v}), nil
	case time.Time:
		return Wrap(Date{Expiry: v}), nil
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "$.") {
			return ContextAttribute{Path: s}, nil
		}
		p, err := resolveString(s)
		if err != nil {
			return nil, err
		}
		return Wrap(p), nil
	default:
		if f, ok := asFloat(value); ok {
			return Wrap(fromNumber(f)), nil
		}
		return nil, &InvalidExpirationTypeError{Value: value}
	}
}

// ResolveSync is Resolve restricted to blocking policies. Values that only
// resolve to context-bound policies are rejected, since blocking callers
// cannot evaluate them.
func ResolveSync(value any) (Policy, error) {
	switch v := value.(type) {
	case nil:
		return NonExpiring{}, nil
	case Policy:
		return v, nil
	case ContextPolicy:
		return nil, &InvalidSyncExpirationTypeError{Value: value}
	case ContextPredicateFunc:
		return nil, &InvalidSyncExpirationTypeError{Value: value}
	case func(ctx context.Context, cv *CachedValue) (any, error):
		return nil, &InvalidSyncExpirationTypeError{Value: value}
	case PredicateFunc:
		return Predicate{Func: v}, nil
	case func(cv *CachedValue) (any, error):
		return Predicate{Func: v}, nil
	case bool:
		return Bool{Expired: v}, nil
	case time.Duration:
		return Refreshing{Interval: v}, nil
	case time.Time:
		return Date{Expiry: v}, nil
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "$.") {
			return Attribute{Path: s}, nil
		}
		return resolveString(s)
	default:
		if f, ok := asFloat(value); ok {
			return fromNumber(f), nil
		}
		return nil, &InvalidExpirationTypeError{Value: value}
	}
}

// ResolveInterval parses a pure duration value (sweep cadence, close delay).
// nil means "not set" and yields zero.
func ResolveInterval(value any) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		return ParseDuration(v)
	default:
		if f, ok := asFloat(value); ok {
			return time.Duration(f * float64(time.Second)), nil
		}
		return 0, &InvalidExpirationTypeError{Value: value}
	}
}

func resolveString(s string) (Policy, error) {
	// numeric strings follow the same epoch-vs-interval rule as numbers
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromNumber(f), nil
	}
	if t, err := ParseDateTime(s); err == nil {
		return Date{Expiry: t}, nil
	}
	if t, err := ParseDate(s); err == nil {
		return Date{Expiry: t}, nil
	}
	if t, err := parseTimeOfDay(s); err == nil {
		return Date{Expiry: t}, nil
	}
	if d, err := ParseDuration(s); err == nil {
		return Refreshing{Interval: d}, nil
	}
	return nil, &InvalidExpirationTypeError{Value: s}
}

func fromNumber(f float64) Policy {
	if f > epochThreshold {
		return Date{Expiry: fromUnixSeconds(f)}
	}
	return Refreshing{Interval: time.Duration(f * float64(time.Second))}
}

func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
