package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/internal/pagecache"
)

const cacheStatusHeader = "X-Edge-Cache"

// PageCache returns middleware that caches successful GET responses for the
// configured routes. routeTags maps an exact request path to the invalidation
// tags it is stored under; paths outside the map pass through untouched.
// Webhook-driven invalidation purges entries by tag or path.
func PageCache(cache *pagecache.Cache, routeTags map[string][]string, metrics observability.CacheMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tags, cacheable := routeTags[r.URL.Path]
			if !cacheable || r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if page, ok := cache.Get(r.URL.Path); ok {
				if metrics != nil {
					metrics.RecordHit(r.Context(), "pages")
				}

				w.Header().Set("Content-Type", page.ContentType)
				w.Header().Set(cacheStatusHeader, "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(page.Body)

				return
			}

			if metrics != nil {
				metrics.RecordMiss(r.Context(), "pages")
			}

			rec := &pageRecorder{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set(cacheStatusHeader, "MISS")
			next.ServeHTTP(rec, r)

			// Only successful responses are worth replaying; errors stay uncached.
			if rec.status == http.StatusOK {
				cache.Put(r.URL.Path, tags, pagecache.Page{
					Body:        rec.body.Bytes(),
					ContentType: rec.Header().Get("Content-Type"),
					StoredAt:    time.Now(),
				})
			}
		})
	}
}

// pageRecorder tees the response body so it can be stored after serving.
type pageRecorder struct {
	http.ResponseWriter

	status int
	body   bytes.Buffer
}

func (r *pageRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *pageRecorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
