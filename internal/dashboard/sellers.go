package dashboard

import (
	"context"
	"time"

	"github.com/vendora/edge/internal/edgeerrors"
	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

const sellersCacheName = "admin/sellers"

// SellersAPI is the slice of the commerce client the sellers store needs.
type SellersAPI interface {
	ListSellers(ctx context.Context) ([]commerce.Seller, error)
	UpdateSellerStatus(ctx context.Context, id string, status commerce.SellerStatus) (*commerce.Seller, error)
}

// Sellers serves the admin vendor moderation collection.
type Sellers struct {
	api      SellersAPI
	res      *rescache.Resource[[]commerce.Seller]
	byStatus *rescache.DerivedView[[]commerce.Seller, commerce.SellerStatus, []commerce.Seller]
	metrics  observability.CacheMetrics
}

// NewSellers creates the sellers store. metrics may be nil.
func NewSellers(store *rescache.Store, api SellersAPI, staleAfter time.Duration, metrics observability.CacheMetrics) *Sellers {
	res := rescache.NewResource(store, []string{"admin", "sellers"}, api.ListSellers, staleAfter)

	return &Sellers{
		api:      api,
		res:      res,
		byStatus: rescache.NewDerivedView(res, filterSellers),
		metrics:  metrics,
	}
}

// List returns the cached seller collection, fetching on first access.
func (s *Sellers) List(ctx context.Context) ([]commerce.Seller, error) {
	sellers, hit, err := s.res.GetWithStats(ctx)
	recordLookup(ctx, s.metrics, sellersCacheName, hit)

	return sellers, err
}

// ByStatus returns the sellers with the given status, memoized against the
// cached collection.
func (s *Sellers) ByStatus(ctx context.Context, status commerce.SellerStatus) ([]commerce.Seller, error) {
	return s.byStatus.Get(ctx, status)
}

// SetStatus updates the seller's moderation status on the backend and
// replaces the affected seller in the cached collection.
func (s *Sellers) SetStatus(ctx context.Context, id string, status commerce.SellerStatus) (*commerce.Seller, error) {
	switch status {
	case commerce.SellerPending, commerce.SellerActive, commerce.SellerSuspended:
	default:
		return nil, edgeerrors.NewValidationError("status", "status must be one of pending, active, suspended")
	}

	return rescache.Mutate(ctx, s.res,
		func(ctx context.Context) (*commerce.Seller, error) {
			return s.api.UpdateSellerStatus(ctx, id, status)
		},
		spliceSeller,
	)
}

// Refresh drops the cached collection so the next read refetches.
func (s *Sellers) Refresh() {
	s.res.Invalidate()
}

// spliceSeller replaces the matching seller in old. Pure.
func spliceSeller(old []commerce.Seller, updated *commerce.Seller) []commerce.Seller {
	next := make([]commerce.Seller, len(old))
	copy(next, old)

	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = *updated
			break
		}
	}

	return next
}

// filterSellers is the pure derivation behind ByStatus. An empty status
// returns the whole collection.
func filterSellers(sellers []commerce.Seller, status commerce.SellerStatus) []commerce.Seller {
	if status == "" {
		return sellers
	}

	out := make([]commerce.Seller, 0, len(sellers))

	for _, seller := range sellers {
		if seller.Status == status {
			out = append(out, seller)
		}
	}

	return out
}
