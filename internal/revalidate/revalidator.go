// Package revalidate defines how processed webhook events mark rendered pages
// stale so the next request regenerates them from source data.
package revalidate

import (
	"context"
	"log/slog"

	"github.com/vendora/edge/internal/pagecache"
)

// Revalidator marks cached rendered views stale by logical tag or by path.
type Revalidator interface {
	RevalidateTag(ctx context.Context, tag string) error
	RevalidatePath(ctx context.Context, path string) error
}

// PageCacheRevalidator invalidates entries in the local render cache.
type PageCacheRevalidator struct {
	cache *pagecache.Cache
}

// NewPageCacheRevalidator creates a revalidator over the given page cache.
func NewPageCacheRevalidator(cache *pagecache.Cache) *PageCacheRevalidator {
	return &PageCacheRevalidator{cache: cache}
}

// RevalidateTag purges every cached page stored under tag.
func (r *PageCacheRevalidator) RevalidateTag(ctx context.Context, tag string) error {
	purged := r.cache.InvalidateTag(tag)
	slog.DebugContext(ctx, "Revalidated cache tag", "tag", tag, "purged", purged)

	return nil
}

// RevalidatePath purges the page cached under path, if any.
func (r *PageCacheRevalidator) RevalidatePath(ctx context.Context, path string) error {
	removed := r.cache.InvalidatePath(path)
	slog.DebugContext(ctx, "Revalidated cache path", "path", path, "removed", removed)

	return nil
}
