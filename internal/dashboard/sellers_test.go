package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

type fakeSellersAPI struct {
	sellers []commerce.Seller
}

func (f *fakeSellersAPI) ListSellers(_ context.Context) ([]commerce.Seller, error) {
	return f.sellers, nil
}

func (f *fakeSellersAPI) UpdateSellerStatus(_ context.Context, id string, status commerce.SellerStatus) (*commerce.Seller, error) {
	for _, s := range f.sellers {
		if s.ID == id {
			s.Status = status
			return &s, nil
		}
	}

	return nil, commerce.ErrNotFound
}

func TestSellers_SetStatus_visible_in_filtered_view(t *testing.T) {
	api := &fakeSellersAPI{sellers: []commerce.Seller{
		{ID: "v1", Status: commerce.SellerPending},
		{ID: "v2", Status: commerce.SellerActive},
	}}
	store := NewSellers(rescache.NewStore(), api, time.Hour, nil)
	ctx := context.Background()

	pending, err := store.ByStatus(ctx, commerce.SellerPending)
	if err != nil {
		t.Fatalf("ByStatus() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("ByStatus(pending) len = %d, want 1", len(pending))
	}

	if _, err := store.SetStatus(ctx, "v1", commerce.SellerActive); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	active, err := store.ByStatus(ctx, commerce.SellerActive)
	if err != nil {
		t.Fatalf("ByStatus() error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("ByStatus(active) len = %d, want 2 after SetStatus", len(active))
	}
}
