// Package pagecache is a TTL'd LRU of rendered responses keyed by request
// path, with a tag index so whole groups of pages can be invalidated at once
// (e.g. every page tagged "products" when a product webhook arrives).
package pagecache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Page is one cached rendered response.
type Page struct {
	Body        []byte
	ContentType string
	StoredAt    time.Time
}

// Cache stores rendered pages with tag-based and path-based invalidation.
type Cache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, Page]

	// tags maps tag -> set of paths stored under it. Entries evicted by the
	// LRU (size or TTL) may linger in the index; InvalidateTag tolerates
	// paths that are no longer cached.
	tags     map[string]map[string]struct{}
	pathTags map[string][]string
}

// New creates a page cache holding up to size entries for at most ttl each.
func New(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("page cache size must be positive, got %d", size)
	}

	return &Cache{
		lru:      expirable.NewLRU[string, Page](size, nil, ttl),
		tags:     make(map[string]map[string]struct{}),
		pathTags: make(map[string][]string),
	}, nil
}

// Put stores a rendered page under path, indexed by tags.
func (c *Cache) Put(path string, tags []string, page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeIndexLocked(path)
	c.lru.Add(path, page)
	c.pathTags[path] = tags

	for _, tag := range tags {
		set, ok := c.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			c.tags[tag] = set
		}

		set[path] = struct{}{}
	}
}

// Get returns the cached page for path, if present and unexpired.
func (c *Cache) Get(path string) (Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Get(path)
}

// InvalidatePath removes the page cached under path. Reports whether a page
// was present.
func (c *Cache) InvalidatePath(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeIndexLocked(path)

	return c.lru.Remove(path)
}

// InvalidateTag removes every page stored under tag and returns how many
// cached pages were purged.
func (c *Cache) InvalidateTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.tags[tag]
	if !ok {
		return 0
	}

	delete(c.tags, tag)

	purged := 0

	for path := range set {
		delete(c.pathTags, path)

		if c.lru.Remove(path) {
			purged++
		}
	}

	return purged
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// removeIndexLocked drops path from the tag index. Caller holds c.mu.
func (c *Cache) removeIndexLocked(path string) {
	for _, tag := range c.pathTags[path] {
		if set, ok := c.tags[tag]; ok {
			delete(set, path)

			if len(set) == 0 {
				delete(c.tags, tag)
			}
		}
	}

	delete(c.pathTags, path)
}
