package pagecache

import (
	"testing"
	"time"
)

func newCache(t *testing.T) *Cache {
	t.Helper()

	c, err := New(16, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	return c
}

func TestCache_put_get(t *testing.T) {
	c := newCache(t)

	c.Put("/v1/catalog/products", []string{"products", "catalog"}, Page{Body: []byte(`[]`), ContentType: "application/json"})

	page, ok := c.Get("/v1/catalog/products")
	if !ok {
		t.Fatal("expected cached page")
	}

	if string(page.Body) != `[]` {
		t.Errorf("body = %q", page.Body)
	}

	if _, ok := c.Get("/v1/other"); ok {
		t.Error("unexpected hit for uncached path")
	}
}

func TestCache_invalidate_tag_purges_all_tagged_paths(t *testing.T) {
	c := newCache(t)

	c.Put("/products", []string{"products", "catalog"}, Page{Body: []byte("a")})
	c.Put("/dashboard/products", []string{"products"}, Page{Body: []byte("b")})
	c.Put("/dashboard/orders", []string{"orders"}, Page{Body: []byte("c")})

	if purged := c.InvalidateTag("products"); purged != 2 {
		t.Errorf("purged = %d, want 2", purged)
	}

	if _, ok := c.Get("/products"); ok {
		t.Error("tagged page should be gone")
	}

	if _, ok := c.Get("/dashboard/orders"); !ok {
		t.Error("unrelated page should survive")
	}

	if purged := c.InvalidateTag("products"); purged != 0 {
		t.Errorf("second purge = %d, want 0", purged)
	}
}

func TestCache_invalidate_path(t *testing.T) {
	c := newCache(t)

	c.Put("/dashboard", []string{"dashboard"}, Page{Body: []byte("x")})

	if !c.InvalidatePath("/dashboard") {
		t.Error("expected removal")
	}

	if c.InvalidatePath("/dashboard") {
		t.Error("second removal should report false")
	}

	// The tag index was cleaned up with the path.
	if purged := c.InvalidateTag("dashboard"); purged != 0 {
		t.Errorf("purged = %d, want 0", purged)
	}
}

func TestCache_ttl_expiry(t *testing.T) {
	c, err := New(16, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	c.Put("/products", []string{"products"}, Page{Body: []byte("a")})
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("/products"); ok {
		t.Error("expected entry to expire")
	}
}

func TestCache_overwrite_replaces_tags(t *testing.T) {
	c := newCache(t)

	c.Put("/page", []string{"old"}, Page{Body: []byte("1")})
	c.Put("/page", []string{"new"}, Page{Body: []byte("2")})

	if purged := c.InvalidateTag("old"); purged != 0 {
		t.Errorf("stale tag purged %d pages, want 0", purged)
	}

	if purged := c.InvalidateTag("new"); purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}
