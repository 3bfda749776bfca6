package resilience

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow admits at most Limit calls in any trailing Size interval.
// It is the only state shared between concurrent extraction calls; the
// prune-check-append sequence runs under one mutex and waiting happens with
// the mutex released.
type SlidingWindow struct {
	limit int
	size  time.Duration

	mu     sync.Mutex
	stamps []time.Time

	nowFunc   func() time.Time
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewSlidingWindow creates a window admitting limit calls per size.
// A non-positive limit disables throttling.
func NewSlidingWindow(limit int, size time.Duration) *SlidingWindow {
	if size <= 0 {
		size = time.Minute
	}
	return &SlidingWindow{
		limit:     limit,
		size:      size,
		nowFunc:   time.Now,
		sleepFunc: SleepContext,
	}
}

// Wait blocks until a slot is free, then records the call. Every successful
// return consumes exactly one slot.
func (w *SlidingWindow) Wait(ctx context.Context) error {
	for {
		wait := w.reserve()
		if wait <= 0 {
			return nil
		}
		if err := w.sleepFunc(ctx, wait); err != nil {
			return err
		}
	}
}

// reserve prunes expired stamps and either records a call (returning 0) or
// returns how long until the oldest stamp leaves the window.
func (w *SlidingWindow) reserve() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.nowFunc()
	w.prune(now)

	if w.limit <= 0 || len(w.stamps) < w.limit {
		w.stamps = append(w.stamps, now)
		return 0
	}

	return w.size - now.Sub(w.stamps[0])
}

func (w *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-w.size)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

// Len returns the number of calls currently inside the window.
func (w *SlidingWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.nowFunc())
	return len(w.stamps)
}

// Limit returns the per-window budget.
func (w *SlidingWindow) Limit() int { return w.limit }
