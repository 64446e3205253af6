package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/memocache"
)

type Options struct {
	// Sampling to avoid floods on the hot path; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ memocache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(key any) string {
	k := fmt.Sprint(key)
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(key any) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("memocache.hit", "key", h.redact(key))
}

func (h *Hooks) Miss(key any) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("memocache.miss", "key", h.redact(key))
}

func (h *Hooks) Evicted(key any) {
	if h.l == nil {
		return
	}
	h.l.Debug("memocache.evicted", "key", h.redact(key))
}

func (h *Hooks) SweepDone(removed int) {
	if h.l == nil {
		return
	}
	h.l.Debug("memocache.sweep_done", "removed", removed)
}

func (h *Hooks) RetryScheduled(err error, delay time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("memocache.retry_scheduled",
		"err", err,
		"delay", delay)
}

func (h *Hooks) ResourceCloseError(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("memocache.resource_close_error", "err", err)
}
