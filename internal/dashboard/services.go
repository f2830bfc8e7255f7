package dashboard

import (
	"context"
	"time"

	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

const servicesCacheName = "seller/services"

// ServicesAPI is the slice of the commerce client the services store needs.
type ServicesAPI interface {
	ListServiceListings(ctx context.Context) ([]commerce.ServiceListing, error)
	UpsertServiceListing(ctx context.Context, listing commerce.ServiceListing) (*commerce.ServiceListing, error)
}

// Services serves the seller service listing collection.
type Services struct {
	api     ServicesAPI
	res     *rescache.Resource[[]commerce.ServiceListing]
	metrics observability.CacheMetrics
}

// NewServices creates the services store. metrics may be nil.
func NewServices(store *rescache.Store, api ServicesAPI, staleAfter time.Duration, metrics observability.CacheMetrics) *Services {
	return &Services{
		api:     api,
		res:     rescache.NewResource(store, []string{"seller", "services"}, api.ListServiceListings, staleAfter),
		metrics: metrics,
	}
}

// List returns the cached listing collection, fetching on first access.
func (s *Services) List(ctx context.Context) ([]commerce.ServiceListing, error) {
	listings, hit, err := s.res.GetWithStats(ctx)
	recordLookup(ctx, s.metrics, servicesCacheName, hit)

	return listings, err
}

// Upsert creates or updates the listing on the backend and splices the result
// into the cached collection: an existing listing is replaced in place, a new
// one is appended.
func (s *Services) Upsert(ctx context.Context, listing commerce.ServiceListing) (*commerce.ServiceListing, error) {
	return rescache.Mutate(ctx, s.res,
		func(ctx context.Context) (*commerce.ServiceListing, error) {
			return s.api.UpsertServiceListing(ctx, listing)
		},
		spliceOrAppendListing,
	)
}

// Refresh drops the cached collection so the next read refetches.
func (s *Services) Refresh() {
	s.res.Invalidate()
}

// spliceOrAppendListing replaces the matching listing or appends it. Pure.
func spliceOrAppendListing(old []commerce.ServiceListing, updated *commerce.ServiceListing) []commerce.ServiceListing {
	next := make([]commerce.ServiceListing, len(old), len(old)+1)
	copy(next, old)

	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = *updated
			return next
		}
	}

	return append(next, *updated)
}
