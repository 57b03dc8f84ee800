package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// It is only suitable for a single server process.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	// Timestamps are appended in order, so everything before the first
	// in-window entry can be dropped.
	timestamps := s.requests[key]
	first := len(timestamps)

	for i, ts := range timestamps {
		if ts.After(cutoff) {
			first = i

			break
		}
	}

	valid := append(timestamps[first:len(timestamps):len(timestamps)], now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

// Keys returns the number of tracked rate limit keys.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Prune drops keys with no request newer than maxWindow, which must be at
// least the longest window in use. It returns the number of keys removed.
func (s *RateLimitMemoryStore) Prune(maxWindow time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxWindow)
	removed := 0

	for key, timestamps := range s.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.requests, key)

			removed++
		}
	}

	return removed
}
