// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"
)

func TestStore_Get(t *testing.T) {
	t.Run("unknown key reports a miss", func(t *testing.T) {
		store := New[string](time.Minute)
		val, freshness := store.Get("unknown")
		if freshness != Miss {
			t.Errorf("expected freshness to be Miss, got %d", freshness)
		}
		if val != "" {
			t.Errorf("expected zero value on miss, got %q", val)
		}
	})
	t.Run("entry within TTL reports fresh", func(t *testing.T) {
		now := time.Now()
		store := NewWithClock[string](time.Minute, func() time.Time { return now })
		store.Set("key", "value")

		now = now.Add(59 * time.Second)
		val, freshness := store.Get("key")
		if freshness != Fresh {
			t.Errorf("expected freshness to be Fresh, got %d", freshness)
		}
		if val != "value" {
			t.Errorf("expected value to be 'value', got %q", val)
		}
	})
	t.Run("entry at exactly TTL reports stale", func(t *testing.T) {
		now := time.Now()
		store := NewWithClock[string](time.Minute, func() time.Time { return now })
		store.Set("key", "value")

		now = now.Add(time.Minute)
		val, freshness := store.Get("key")
		if freshness != Stale {
			t.Errorf("expected freshness to be Stale, got %d", freshness)
		}
		if val != "value" {
			t.Errorf("expected stale entries to keep their payload, got %q", val)
		}
	})
	t.Run("entry past TTL keeps its payload", func(t *testing.T) {
		now := time.Now()
		store := NewWithClock[int](time.Minute, func() time.Time { return now })
		store.Set("key", 42)

		now = now.Add(24 * time.Hour)
		val, freshness := store.Get("key")
		if freshness != Stale {
			t.Errorf("expected freshness to be Stale, got %d", freshness)
		}
		if val != 42 {
			t.Errorf("expected stale entry to return 42, got %d", val)
		}
	})
}

func TestStore_Set(t *testing.T) {
	t.Run("setting a key twice refreshes the entry", func(t *testing.T) {
		now := time.Now()
		store := NewWithClock[string](time.Minute, func() time.Time { return now })
		store.Set("key", "old")

		now = now.Add(2 * time.Minute)
		store.Set("key", "new")

		val, freshness := store.Get("key")
		if freshness != Fresh {
			t.Errorf("expected freshness to be Fresh after overwrite, got %d", freshness)
		}
		if val != "new" {
			t.Errorf("expected value to be 'new', got %q", val)
		}
		if store.Len() != 1 {
			t.Errorf("expected a single entry, got %d", store.Len())
		}
	})
}

func TestStore_Evict(t *testing.T) {
	t.Run("evicted keys report a miss", func(t *testing.T) {
		store := New[string](time.Minute)
		store.Set("key", "value")
		store.Evict("key")

		if _, freshness := store.Get("key"); freshness != Miss {
			t.Errorf("expected freshness to be Miss after evict, got %d", freshness)
		}
		if store.Len() != 0 {
			t.Errorf("expected no entries after evict, got %d", store.Len())
		}
	})
	t.Run("evicting an unknown key is a no-op", func(t *testing.T) {
		store := New[string](time.Minute)
		store.Evict("unknown")
		if store.Len() != 0 {
			t.Errorf("expected no entries, got %d", store.Len())
		}
	})
}
