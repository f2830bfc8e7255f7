// Package dashboard exposes the per-domain data adapters behind the dashboard
// API. Each store binds one commerce collection to a shared resource cache:
// reads are cached with stale-while-revalidate, writes are applied
// optimistically by splicing the backend's response into the cached
// collection, and filtered or aggregated views are memoized derivations of
// the cached base data.
package dashboard

import (
	"context"

	"github.com/vendora/edge/internal/observability"
)

// recordLookup reports a cache hit or miss for one store read. metrics may be
// nil (metrics disabled).
func recordLookup(ctx context.Context, metrics observability.CacheMetrics, cacheName string, hit bool) {
	if metrics == nil {
		return
	}

	if hit {
		metrics.RecordHit(ctx, cacheName)
		return
	}

	metrics.RecordMiss(ctx, cacheName)
}
