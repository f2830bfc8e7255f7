// Package rescache provides a shared query/mutation cache for named resources.
// A resource is identified by a composite key (e.g. ["admin","contracts"]) and
// holds the last fetched value. Reads are stale-while-revalidate: past the
// staleness window the cached value is still returned immediately while a
// background refresh runs. Concurrent fetches for the same key are collapsed
// via singleflight so exactly one fetch is in flight per key at a time.
package rescache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the shared cache. All resources created against the same Store
// share entries by key, so a mutation applied through one handle is visible
// to every consumer of that key on its next read.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

type entry struct {
	value      any
	fetchedAt  time.Time
	version    uint64
	refreshing bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Len returns the number of cached resources.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Key joins composite key parts into the canonical cache key.
func Key(parts []string) string {
	return strings.Join(parts, "/")
}

func (s *Store) set(key string, v any, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}

	e.value = v
	e.fetchedAt = at
	e.version++
	e.refreshing = false
}

// Resource is a typed handle bound to one cache key, a fetcher, and a
// staleness window. Multiple handles for the same key against the same Store
// share the underlying entry.
type Resource[T any] struct {
	store      *Store
	key        string
	fetch      func(context.Context) (T, error)
	staleAfter time.Duration
	now        func() time.Time
}

// NewResource creates a resource handle. staleAfter <= 0 disables background
// refresh (the cached value never goes stale until explicitly invalidated).
func NewResource[T any](store *Store, keyParts []string, fetch func(context.Context) (T, error), staleAfter time.Duration) *Resource[T] {
	return &Resource[T]{
		store:      store,
		key:        Key(keyParts),
		fetch:      fetch,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Key returns the canonical cache key of the resource.
func (r *Resource[T]) Key() string { return r.key }

// Get returns the cached value, fetching on first access.
func (r *Resource[T]) Get(ctx context.Context) (T, error) {
	v, _, err := r.GetWithStats(ctx)

	return v, err
}

// GetWithStats is like Get but also reports whether the value came from cache.
// A stale hit still counts as a hit: the cached value is returned immediately
// and a single background refresh is started for the key.
func (r *Resource[T]) GetWithStats(ctx context.Context) (T, bool, error) {
	r.store.mu.Lock()

	if e, ok := r.store.entries[r.key]; ok {
		v := e.value.(T)

		stale := r.staleAfter > 0 && r.now().Sub(e.fetchedAt) > r.staleAfter
		if stale && !e.refreshing {
			e.refreshing = true

			go r.refresh()
		}

		r.store.mu.Unlock()

		return v, true, nil
	}

	r.store.mu.Unlock()

	// Miss: singleflight collapses concurrent first fetches into one call.
	v, err, _ := r.store.group.Do(r.key, func() (any, error) {
		val, fetchErr := r.fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}

		r.store.set(r.key, val, r.now())

		return val, nil
	})
	if err != nil {
		var zero T

		return zero, false, err
	}

	return v.(T), false, nil
}

// refresh reloads the resource in the background. A failed refresh keeps the
// stale value in place; the next access past the window retries.
func (r *Resource[T]) refresh() {
	v, err, _ := r.store.group.Do(r.key+"\x00refresh", func() (any, error) {
		return r.fetch(context.Background())
	})

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.entries[r.key]
	if !ok {
		return
	}

	e.refreshing = false

	if err == nil {
		e.value = v
		e.fetchedAt = r.now()
		e.version++
	}
}

// Peek returns the cached value without fetching or refreshing.
func (r *Resource[T]) Peek() (T, bool) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e, ok := r.store.entries[r.key]; ok {
		return e.value.(T), true
	}

	var zero T

	return zero, false
}

// Version returns the entry's version, bumped on every fetch, refresh, and
// merge. Zero means no cached value exists.
func (r *Resource[T]) Version() uint64 {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e, ok := r.store.entries[r.key]; ok {
		return e.version
	}

	return 0
}

// Invalidate drops the cached value so the next access refetches.
func (r *Resource[T]) Invalidate() {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.entries, r.key)
}

// Mutate performs a write and, only on success, applies merge to the cached
// value under the store lock, so every consumer of the key observes the merged
// result on its next read without a refetch. On error the cache is left
// unchanged and the error is returned to the caller.
//
// merge must be a pure function of (old cached value, mutation result): no
// wall-clock reads, no external state, so applying it is deterministic.
// When no value is cached for the key, merge is skipped; the next Get fetches.
func Mutate[T, R any](ctx context.Context, r *Resource[T], mutate func(context.Context) (R, error), merge func(old T, result R) T) (R, error) {
	result, err := mutate(ctx)
	if err != nil {
		var zero R

		return zero, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e, ok := r.store.entries[r.key]; ok {
		e.value = merge(e.value.(T), result)
		e.version++
	}

	return result, nil
}
