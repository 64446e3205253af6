package memocache

import (
	"strings"

	"github.com/unkn0wn-root/memocache/internal/extract"
)

// ExtractionError reports an attribute path that could not be resolved
// against a cached value (attribute-driven expiration, ResourcePaths).
type ExtractionError = extract.Error

// InvalidCacheConfigError carries every validation failure found at
// construction time. Configuration problems never surface during a fetch.
type InvalidCacheConfigError struct {
	Errors []string
}

func (e *InvalidCacheConfigError) Error() string {
	return "invalid cache config: " + strings.Join(e.Errors, "; ")
}

// DeadlockError indicates the single-flight invariant was violated: a fetch
// finished while no inflight token was held. It is a programming error in the
// cache itself, never an expected runtime condition.
type DeadlockError struct{}

func (*DeadlockError) Error() string {
	return "cache record deadlock: fetch completed with no inflight token"
}
