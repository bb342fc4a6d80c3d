// Package cache provides the in-memory freshness cache shared by all upstream fetchers.
//
// A single Store backs every namespace. TTL is supplied by the reader, not stored with the
// entry, so one namespace can be read with different freshness windows by different callers
// (proxy quotes vs. holdings quotes).
package cache

import (
	"sync"
	"time"
)

type key struct {
	namespace string
	id        string
}

type entry struct {
	value      any
	insertedAt time.Time
}

// Observer is notified of every lookup outcome
type Observer func(namespace string, hit bool)

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, used by tests to simulate elapsed time
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers a hit/miss observer (metrics)
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// Store is the shared key/value map. Reads only take the read lock.
type Store struct {
	mu       sync.RWMutex
	entries  map[key]entry
	maxAge   map[string]time.Duration // per namespace, used by Sweep
	now      func() time.Time
	observer Observer
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[key]entry),
		maxAge:  make(map[string]time.Duration),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) get(k key, ttl time.Duration) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()

	if !ok {
		s.observe(k.namespace, false)
		return nil, false
	}

	if s.now().Sub(e.insertedAt) < ttl {
		s.observe(k.namespace, true)
		return e.value, true
	}

	// Expired: evict unless a writer replaced it in the meantime
	s.mu.Lock()
	if cur, ok := s.entries[k]; ok && cur.insertedAt.Equal(e.insertedAt) {
		delete(s.entries, k)
	}
	s.mu.Unlock()

	s.observe(k.namespace, false)
	return nil, false
}

func (s *Store) set(k key, v any) {
	s.mu.Lock()
	s.entries[k] = entry{value: v, insertedAt: s.now()}
	s.mu.Unlock()
}

func (s *Store) delete(k key) {
	s.mu.Lock()
	delete(s.entries, k)
	s.mu.Unlock()
}

func (s *Store) observe(namespace string, hit bool) {
	if s.observer != nil {
		s.observer(namespace, hit)
	}
}

func (s *Store) register(namespace string, maxAge time.Duration) {
	s.mu.Lock()
	if maxAge > s.maxAge[namespace] {
		s.maxAge[namespace] = maxAge
	}
	s.mu.Unlock()
}

// Len returns the number of entries, expired or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes entries older than their namespace's registered max age.
// Namespaces registered without a max age are left alone.
// Returns the number of entries removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		maxAge, ok := s.maxAge[k.namespace]
		if !ok || maxAge <= 0 {
			continue
		}
		if now.Sub(e.insertedAt) >= maxAge {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
