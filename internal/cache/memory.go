package cache

import (
	"time"

	"github.com/cedarstats/regstats/internal/regstats"
)

// MemStore is a map-backed store for tests. It honors the same TTL contract
// as FileStore.
type MemStore struct {
	ttl     time.Duration
	entries map[string]Entry

	Gets int
	Puts int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore(ttl time.Duration) *MemStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemStore{ttl: ttl, entries: make(map[string]Entry)}
}

// Get returns the cached bundle for key when present and fresh.
func (s *MemStore) Get(key string) (*regstats.Bundle, bool) {
	s.Gets++
	entry, ok := s.entries[key]
	if !ok || time.Since(entry.StoredAt) > s.ttl {
		return nil, false
	}
	b := entry.Bundle
	return &b, true
}

// Put stores a copy of the bundle under key.
func (s *MemStore) Put(key string, b *regstats.Bundle) error {
	s.Puts++
	s.entries[key] = Entry{Key: key, StoredAt: time.Now().UTC(), Bundle: *b}
	return nil
}

// Len returns the number of stored entries.
func (s *MemStore) Len() int {
	return len(s.entries)
}
