package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

type fakeServicesAPI struct {
	listings  []commerce.ServiceListing
	listCalls int
}

func (f *fakeServicesAPI) ListServiceListings(_ context.Context) ([]commerce.ServiceListing, error) {
	f.listCalls++
	return f.listings, nil
}

func (f *fakeServicesAPI) UpsertServiceListing(_ context.Context, listing commerce.ServiceListing) (*commerce.ServiceListing, error) {
	if listing.ID == "" {
		listing.ID = "generated"
	}

	return &listing, nil
}

func TestServices_Upsert_replaces_existing(t *testing.T) {
	api := &fakeServicesAPI{listings: []commerce.ServiceListing{
		{ID: "s1", Name: "Setup", PriceCents: 10000},
	}}
	store := NewServices(rescache.NewStore(), api, time.Hour, nil)
	ctx := context.Background()

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if _, err := store.Upsert(ctx, commerce.ServiceListing{ID: "s1", Name: "Setup", PriceCents: 12000}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	listings, _ := store.List(ctx)
	if len(listings) != 1 {
		t.Fatalf("len = %d, want 1 (replace, not append)", len(listings))
	}
	if listings[0].PriceCents != 12000 {
		t.Errorf("PriceCents = %d, want 12000", listings[0].PriceCents)
	}
	if api.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 (mutation must not refetch)", api.listCalls)
	}
}

func TestServices_Upsert_appends_new(t *testing.T) {
	api := &fakeServicesAPI{listings: []commerce.ServiceListing{
		{ID: "s1", Name: "Setup"},
	}}
	store := NewServices(rescache.NewStore(), api, time.Hour, nil)
	ctx := context.Background()

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	created, err := store.Upsert(ctx, commerce.ServiceListing{Name: "Maintenance"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Upsert() returned listing without id")
	}

	listings, _ := store.List(ctx)
	if len(listings) != 2 {
		t.Errorf("len = %d, want 2 (new listing appended)", len(listings))
	}
}
