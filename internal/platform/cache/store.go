package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

const defaultSize = 4096

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a bounded LRU with per-entry TTL. It backs read-through caching
// and short-lived values such as OAuth state.
type Store struct {
	items  *lru.Cache
	ttl    time.Duration
	flight singleflight.Group
	now    func() time.Time
}

// NewStore builds a store holding at most size entries. Non-positive ttl means entries never expire.
func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = defaultSize
	}
	items, err := lru.New(size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(fmt.Sprintf("cache: %v", err))
	}
	return &Store{items: items, ttl: ttl, now: time.Now}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	raw, ok := s.items.Get(key)
	if !ok {
		return nil, false
	}
	e := raw.(entry)
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		s.items.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *Store) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.items.Add(key, e)
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.items.Remove(key)
}

// Take returns the value and removes it, for single-use entries.
func (s *Store) Take(ctx context.Context, key string) (any, bool) {
	v, ok := s.Get(ctx, key)
	if ok {
		s.items.Remove(key)
	}
	return v, ok
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) int {
	if prefix == "" {
		return 0
	}
	removed := 0
	for _, k := range s.items.Keys() {
		key, ok := k.(string)
		if ok && strings.HasPrefix(key, prefix) {
			s.items.Remove(key)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	return s.items.Len()
}

// GetOrLoad returns a cached value or runs loader once per key across concurrent callers.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
