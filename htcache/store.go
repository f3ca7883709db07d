package htcache

import (
	"sync"
	"time"
)

type item struct {
	entry   Entry
	variant map[string]Entry
}

// Store holds Entry values keyed by CacheKey (and, within a key, by
// VariantKey). A single sync.RWMutex guards the whole map, the same
// single-lock-per-collection discipline this module's cookiejar.Jar and
// pool.Pool use, in place of nabbar-golib/cache's per-key atomic map —
// this store's lookups are always followed by a freshness check, so the
// extra lock-free concurrency an atomic map buys isn't worth the
// complexity here.
type Store struct {
	mu sync.RWMutex
	m  map[string]*item
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{m: make(map[string]*item)}
}

// Get returns the Entry for (cacheKey, variantKey), if any, regardless of
// freshness — callers decide whether to serve it directly or revalidate.
func (s *Store) Get(cacheKey, variantKey string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.m[cacheKey]
	if !ok {
		return Entry{}, false
	}
	if variantKey == "" {
		return it.entry, it.entry.CacheKey != ""
	}
	e, ok := it.variant[variantKey]
	return e, ok
}

// Put stores e under its own CacheKey/VariantKey.
func (s *Store) Put(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.m[e.CacheKey]
	if !ok {
		it = &item{variant: make(map[string]Entry)}
		s.m[e.CacheKey] = it
	}
	if e.VariantKey == "" {
		it.entry = e
		return
	}
	it.variant[e.VariantKey] = e
}

// Delete removes every stored entry (default and variants) for cacheKey.
func (s *Store) Delete(cacheKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, cacheKey)
}

// Len reports how many distinct cache keys are stored (not counting
// variants separately).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Sweep removes every entry whose ExpiresAt is non-zero and has already
// passed, across both the default and variant slots of every key.
func (s *Store) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, it := range s.m {
		if !it.entry.ExpiresAt.IsZero() && !now.Before(it.entry.ExpiresAt) && !it.entry.Revalidatable() {
			it.entry = Entry{}
		}
		for vk, e := range it.variant {
			if !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt) && !e.Revalidatable() {
				delete(it.variant, vk)
			}
		}
		if it.entry.CacheKey == "" && len(it.variant) == 0 {
			delete(s.m, k)
		}
	}
}
