package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults for the contact form: five submissions per fifteen minutes.
const (
	DefaultLimit  = 5
	DefaultWindow = 15 * time.Minute
)

// Window is a fixed-window counter per client key held in process memory.
type Window struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// WindowOption customizes a Window.
type WindowOption func(*Window)

// WithClock overrides the time source.
func WithClock(now func() time.Time) WindowOption {
	return func(w *Window) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWindow allows limit calls per key within each window. Non-positive values
// fall back to the contact form defaults.
func NewWindow(limit int, window time.Duration, opts ...WindowOption) *Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	w := &Window{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Allow records a call for key and reports whether it fits in the current window.
// The check and the increment happen under one lock.
func (w *Window) Allow(_ context.Context, key string) bool {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		w.entries[key] = &windowEntry{count: 1, resetAt: now.Add(w.window)}
		return true
	}
	if entry.count >= w.limit {
		return false
	}
	entry.count++
	return true
}

// Sweep drops windows that have expired by now and returns how many were removed.
func (w *Window) Sweep(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for key, entry := range w.entries {
		if !now.Before(entry.resetAt) {
			delete(w.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
