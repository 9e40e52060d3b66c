package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Event is one limiter decision.
type Event struct {
	Key     string
	Allowed bool
	Route   string
	At      time.Time
}

// StatsStore records limiter decisions. Recording is best effort: callers
// log failures and carry on with the request.
type StatsStore interface {
	Record(ctx context.Context, ev Event) error
}

type Counters struct {
	Allowed int64
	Denied  int64
}

// MemoryStatsStore keeps process-local totals per route.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byRoute: make(map[string]Counters)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byRoute[ev.Route]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
	}
	s.byRoute[ev.Route] = c
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

// MultiStatsStore fans a decision out to several stores and returns the
// first error.
type MultiStatsStore []StatsStore

func (m MultiStatsStore) Record(ctx context.Context, ev Event) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
