// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package cache provides a small in-memory TTL cache. Entries past their
// TTL are kept around and reported as stale, so callers can decide to serve
// degraded data once every other option is exhausted.
package cache

import (
	"sync"
	"time"
)

// Freshness describes the state of a cache lookup.
type Freshness int

const (
	// Miss means no entry exists for the key.
	Miss Freshness = iota
	// Fresh means an entry exists and is within its TTL.
	Fresh
	// Stale means an entry exists but its TTL has elapsed.
	Stale
)

// Store is a mutex-guarded map of keys to payloads with a single TTL.
// The zero value is not usable, use New.
type Store[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[T]
}

type entry[T any] struct {
	payload T
	stored  time.Time
}

// New returns a Store with the given TTL.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
}

// NewWithClock returns a Store that reads the current time from now. It
// exists so tests can control entry expiry without sleeping.
func NewWithClock[T any](ttl time.Duration, now func() time.Time) *Store[T] {
	store := New[T](ttl)
	store.now = now
	return store
}

// Get returns the payload stored under key together with its freshness.
// An entry is fresh iff now - storedAt < TTL.
func (s *Store[T]) Get(key string) (T, Freshness) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, Miss
	}
	if s.now().Sub(ent.stored) < s.ttl {
		return ent.payload, Fresh
	}
	return ent.payload, Stale
}

// Set stores the payload under key, overwriting any previous entry.
func (s *Store[T]) Set(key string, payload T) {
	s.mu.Lock()
	s.entries[key] = entry[T]{payload: payload, stored: s.now()}
	s.mu.Unlock()
}

// Evict removes the entry stored under key, if any.
func (s *Store[T]) Evict(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len returns the number of entries currently held, stale ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
