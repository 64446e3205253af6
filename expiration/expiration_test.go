package expiration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/memocache/internal/extract"
)

func TestDatePolicy(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Date{Expiry: expiry}

	cases := []struct {
		fetched time.Time
		want    bool
	}{
		{time.Time{}, true}, // never fetched
		{expiry.Add(-time.Hour), false},
		{expiry, true},
		{expiry.Add(time.Hour), true},
	}
	for _, tc := range cases {
		got, err := p.IsValueExpired(&CachedValue{LastFetched: tc.fetched})
		if err != nil {
			t.Fatalf("IsValueExpired: %v", err)
		}
		if got != tc.want {
			t.Errorf("fetched %v: expired = %v, want %v", tc.fetched, got, tc.want)
		}
	}
}

func TestRefreshingPolicy(t *testing.T) {
	p := Refreshing{Interval: time.Minute}

	if got, _ := p.IsValueExpired(&CachedValue{LastFetched: time.Now()}); got {
		t.Fatal("fresh value reported expired")
	}
	if got, _ := p.IsValueExpired(&CachedValue{LastFetched: time.Now().Add(-2 * time.Minute)}); !got {
		t.Fatal("stale value not reported expired")
	}
	if got, _ := p.IsValueExpired(&CachedValue{}); !got {
		t.Fatal("never-fetched value must be expired")
	}
}

// The refresh window is inclusive on the right: a value fetched exactly
// Interval ago is due, one second inside the window is not.
func TestRefreshingBoundary(t *testing.T) {
	ref := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return ref }
	t.Cleanup(func() { timeNow = time.Now })

	p := Refreshing{Interval: 24 * time.Hour}

	if got, _ := p.IsValueExpired(&CachedValue{LastFetched: ref.Add(-24*time.Hour + time.Second)}); got {
		t.Fatal("value inside the refresh window reported expired")
	}
	if got, _ := p.IsValueExpired(&CachedValue{LastFetched: ref.Add(-24 * time.Hour)}); !got {
		t.Fatal("value at exactly the refresh interval not reported expired")
	}
}

// Attribute policies re-resolve whatever the path points at, so a value can
// carry its own expiry as a time, a duration string or a nested policy value.
func TestAttributePolicyRecursiveResolution(t *testing.T) {
	type payload struct {
		Expiry any
	}
	p := Attribute{Path: "$.expiry"}
	fetched := time.Now()

	cases := []struct {
		name  string
		inner any
		want  bool
	}{
		{"past time", fetched.Add(-time.Hour), true},
		{"future time", fetched.Add(time.Hour), false},
		{"duration string", "5 minutes", false},
		{"bool", true, true},
	}
	for _, tc := range cases {
		v := &CachedValue{Value: payload{Expiry: tc.inner}, LastFetched: fetched}
		got, err := p.IsValueExpired(v)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expired = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAttributePolicyMissingPath(t *testing.T) {
	p := Attribute{Path: "$.nope"}
	_, err := p.IsValueExpired(&CachedValue{Value: map[string]any{"x": 1}, LastFetched: time.Now()})
	var exErr *extract.Error
	if !errors.As(err, &exErr) {
		t.Fatalf("err = %v, want extract.Error", err)
	}
}

func TestPredicatePolicy(t *testing.T) {
	p := Predicate{Func: func(v *CachedValue) (any, error) {
		return v.Value == "stale", nil
	}}

	if got, _ := p.IsValueExpired(&CachedValue{Value: "fresh", LastFetched: time.Now()}); got {
		t.Fatal("fresh value reported expired")
	}
	if got, _ := p.IsValueExpired(&CachedValue{Value: "stale", LastFetched: time.Now()}); !got {
		t.Fatal("stale value not reported expired")
	}
}

func TestPredicatePolicyErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	p := Predicate{Func: func(*CachedValue) (any, error) { return nil, boom }}
	if _, err := p.IsValueExpired(&CachedValue{LastFetched: time.Now()}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestContextPredicatePolicy(t *testing.T) {
	type ctxKey struct{}
	p := ContextPredicate{Func: func(ctx context.Context, _ *CachedValue) (any, error) {
		return ctx.Value(ctxKey{}) != nil, nil
	}}

	ctx := context.Background()
	if got, _ := p.IsValueExpired(ctx, &CachedValue{LastFetched: time.Now()}); got {
		t.Fatal("expired without the context marker")
	}
	ctx = context.WithValue(ctx, ctxKey{}, true)
	if got, _ := p.IsValueExpired(ctx, &CachedValue{LastFetched: time.Now()}); !got {
		t.Fatal("not expired with the context marker")
	}
}
