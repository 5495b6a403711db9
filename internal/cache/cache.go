// Package cache provides a typed read-through TTL cache for ledger
// directory data (accounts, categories, currencies) that rarely
// changes within a session.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store caches values of one type by string key.
type Store[T any] struct {
	c *gocache.Cache
}

// New creates a store whose entries expire after ttl.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{c: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached value for key, if present and fresh.
func (s *Store[T]) Get(key string) (T, bool) {
	if v, ok := s.c.Get(key); ok {
		return v.(T), true
	}
	var zero T
	return zero, false
}

// Set stores a value under key with the default TTL.
func (s *Store[T]) Set(key string, v T) {
	s.c.SetDefault(key, v)
}

// GetOrLoad returns the cached value for key, calling load on a miss
// and caching its result. Load errors are not cached.
func (s *Store[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, v)
	return v, nil
}

// Invalidate drops the entry for key, if any.
func (s *Store[T]) Invalidate(key string) {
	s.c.Delete(key)
}

// Clear drops every entry.
func (s *Store[T]) Clear() {
	s.c.Flush()
}
