package dashboard

import (
	"context"
	"time"

	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

const contractsCacheName = "admin/contracts"

// ContractsAPI is the slice of the commerce client the contracts store needs.
type ContractsAPI interface {
	ListContracts(ctx context.Context) ([]commerce.Contract, error)
	UpdateContractStatus(ctx context.Context, id string, status commerce.ContractStatus) (*commerce.Contract, error)
}

// contractFilter keys the memoized derived views.
type contractFilter struct {
	Status   commerce.ContractStatus
	Deadline time.Time
}

// Contracts serves the admin contracts collection.
type Contracts struct {
	api     ContractsAPI
	res     *rescache.Resource[[]commerce.Contract]
	views   *rescache.DerivedView[[]commerce.Contract, contractFilter, []commerce.Contract]
	metrics observability.CacheMetrics
}

// NewContracts creates the contracts store. metrics may be nil.
func NewContracts(store *rescache.Store, api ContractsAPI, staleAfter time.Duration, metrics observability.CacheMetrics) *Contracts {
	res := rescache.NewResource(store, []string{"admin", "contracts"}, api.ListContracts, staleAfter)

	return &Contracts{
		api:     api,
		res:     res,
		views:   rescache.NewDerivedView(res, deriveContracts),
		metrics: metrics,
	}
}

// List returns the cached contracts collection, fetching on first access.
func (c *Contracts) List(ctx context.Context) ([]commerce.Contract, error) {
	contracts, hit, err := c.res.GetWithStats(ctx)
	recordLookup(ctx, c.metrics, contractsCacheName, hit)

	return contracts, err
}

// ByStatus returns the contracts with the given status, memoized against the
// cached collection.
func (c *Contracts) ByStatus(ctx context.Context, status commerce.ContractStatus) ([]commerce.Contract, error) {
	return c.views.Get(ctx, contractFilter{Status: status})
}

// ExpiringWithin returns unexpired, not-yet-invalidated contracts whose expiry
// falls inside the window. The deadline is truncated to the minute so repeated
// calls within a minute reuse the memoized result.
func (c *Contracts) ExpiringWithin(ctx context.Context, window time.Duration) ([]commerce.Contract, error) {
	deadline := time.Now().Add(window).Truncate(time.Minute)

	return c.views.Get(ctx, contractFilter{Deadline: deadline})
}

// Validate marks the contract validated on the backend and splices the
// returned contract into the cached collection. On rejection the cache is
// unchanged and the error propagates.
func (c *Contracts) Validate(ctx context.Context, id string) (*commerce.Contract, error) {
	return c.setStatus(ctx, id, commerce.ContractValidated)
}

// Invalidate marks the contract invalidated on the backend and splices the
// returned contract into the cached collection.
func (c *Contracts) Invalidate(ctx context.Context, id string) (*commerce.Contract, error) {
	return c.setStatus(ctx, id, commerce.ContractInvalidated)
}

// Refresh drops the cached collection so the next read refetches.
func (c *Contracts) Refresh() {
	c.res.Invalidate()
}

func (c *Contracts) setStatus(ctx context.Context, id string, status commerce.ContractStatus) (*commerce.Contract, error) {
	return rescache.Mutate(ctx, c.res,
		func(ctx context.Context) (*commerce.Contract, error) {
			return c.api.UpdateContractStatus(ctx, id, status)
		},
		spliceContract,
	)
}

// spliceContract replaces the matching contract in old. Pure.
func spliceContract(old []commerce.Contract, updated *commerce.Contract) []commerce.Contract {
	next := make([]commerce.Contract, len(old))
	copy(next, old)

	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = *updated
			break
		}
	}

	return next
}

// deriveContracts is the pure derivation behind ByStatus and ExpiringWithin.
func deriveContracts(contracts []commerce.Contract, f contractFilter) []commerce.Contract {
	out := make([]commerce.Contract, 0, len(contracts))

	for _, contract := range contracts {
		if f.Status != "" {
			if contract.Status == f.Status {
				out = append(out, contract)
			}

			continue
		}

		if !f.Deadline.IsZero() &&
			contract.Status != commerce.ContractInvalidated &&
			contract.ExpiresAt.Before(f.Deadline) {
			out = append(out, contract)
		}
	}

	return out
}
