// Package ratelimit implements the per-client sliding window used to throttle
// lead submissions.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow admits at most max requests per key within any trailing
// window. State lives in memory for the life of the process; keys with no
// remaining timestamps are dropped.
//
// There is no cap on the number of distinct keys.
type SlidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	window time.Duration
	max    int
	now    func() time.Time
}

type Option func(*SlidingWindow)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *SlidingWindow) { l.now = now }
}

func NewSlidingWindow(window time.Duration, max int, opts ...Option) *SlidingWindow {
	l := &SlidingWindow{
		hits:   make(map[string][]time.Time),
		window: window,
		max:    max,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether key may make another request now and, if so,
// records it. Denied attempts are not recorded.
func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.prune(key, now)
	if len(valid) >= l.max {
		return false
	}
	l.hits[key] = append(valid, now)
	return true
}

// prune drops timestamps that fell out of the window. Caller holds l.mu.
func (l *SlidingWindow) prune(key string, now time.Time) []time.Time {
	entry, ok := l.hits[key]
	if !ok {
		return nil
	}
	valid := entry[:0]
	for _, t := range entry {
		if now.Sub(t) < l.window {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = valid
	return valid
}

// Keys returns the number of clients currently tracked.
func (l *SlidingWindow) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// RetryAfter is how long key must wait before its oldest request leaves the
// window. Zero means a request would be allowed now.
func (l *SlidingWindow) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.prune(key, now)
	if len(valid) < l.max {
		return 0
	}
	return l.window - now.Sub(valid[0])
}
