// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"sync"
	"time"
)

// Defaults for the vote-submission window.
const (
	DefaultLimit  = 10
	DefaultWindow = 60 * time.Second
)

// Limiter is the admission-control contract. Implementations must be
// safe for concurrent use. The gate is agnostic to which implementation
// is composed in: process-local for a single instance, SharedWindow
// when multiple instances must agree.
type Limiter interface {
	// Admit records a request from the address and reports whether it
	// is within the window threshold. A false return means the request
	// was not recorded.
	Admit(sourceAddress string) bool
}

// SlidingWindow is an in-memory sliding-window limiter keyed by source
// address. Old timestamps are pruned lazily on each check.
type SlidingWindow struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time

	now func() time.Time // overridable in tests
}

// NewSlidingWindow creates a limiter allowing limit requests per window
// per source address. Non-positive arguments fall back to the defaults.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &SlidingWindow{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (l *SlidingWindow) Admit(sourceAddress string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := prune(l.requests[sourceAddress], cutoff)

	if len(recent) >= l.limit {
		l.requests[sourceAddress] = recent
		return false
	}

	l.requests[sourceAddress] = append(recent, now)
	return true
}

// Remaining reports how many requests the address has left in the
// current window without recording one.
func (l *SlidingWindow) Remaining(sourceAddress string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	recent := prune(l.requests[sourceAddress], cutoff)
	l.requests[sourceAddress] = recent

	if left := l.limit - len(recent); left > 0 {
		return left
	}
	return 0
}

func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
