package dashboard

import (
	"context"
	"time"

	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

const invoicesCacheName = "seller/invoices"

// InvoicesAPI is the slice of the commerce client the invoices store needs.
type InvoicesAPI interface {
	ListInvoices(ctx context.Context) ([]commerce.Invoice, error)
	PayInvoice(ctx context.Context, id string) (*commerce.Invoice, error)
}

// InvoiceKPIs are the billing headline numbers, derived from the cached
// invoice collection.
type InvoiceKPIs struct {
	OutstandingCents int64 `json:"outstandingCents"`
	UnpaidCount      int   `json:"unpaidCount"`
	OverdueCount     int   `json:"overdueCount"`
}

// invoiceFilter keys the memoized KPI derivation.
type invoiceFilter struct {
	AsOf time.Time
}

// Invoices serves the seller billing collection.
type Invoices struct {
	api     InvoicesAPI
	res     *rescache.Resource[[]commerce.Invoice]
	kpis    *rescache.DerivedView[[]commerce.Invoice, invoiceFilter, InvoiceKPIs]
	metrics observability.CacheMetrics
}

// NewInvoices creates the invoices store. metrics may be nil.
func NewInvoices(store *rescache.Store, api InvoicesAPI, staleAfter time.Duration, metrics observability.CacheMetrics) *Invoices {
	res := rescache.NewResource(store, []string{"seller", "invoices"}, api.ListInvoices, staleAfter)

	return &Invoices{
		api:     api,
		res:     res,
		kpis:    rescache.NewDerivedView(res, deriveInvoiceKPIs),
		metrics: metrics,
	}
}

// List returns the cached invoice collection, fetching on first access.
func (i *Invoices) List(ctx context.Context) ([]commerce.Invoice, error) {
	invoices, hit, err := i.res.GetWithStats(ctx)
	recordLookup(ctx, i.metrics, invoicesCacheName, hit)

	return invoices, err
}

// KPIs returns the outstanding total and overdue counts, memoized per minute
// against the cached collection.
func (i *Invoices) KPIs(ctx context.Context) (InvoiceKPIs, error) {
	return i.kpis.Get(ctx, invoiceFilter{AsOf: time.Now().Truncate(time.Minute)})
}

// MarkPaid settles the invoice on the backend and replaces it in the cached
// collection.
func (i *Invoices) MarkPaid(ctx context.Context, id string) (*commerce.Invoice, error) {
	return rescache.Mutate(ctx, i.res,
		func(ctx context.Context) (*commerce.Invoice, error) {
			return i.api.PayInvoice(ctx, id)
		},
		spliceInvoice,
	)
}

// Refresh drops the cached collection so the next read refetches.
func (i *Invoices) Refresh() {
	i.res.Invalidate()
}

// spliceInvoice replaces the matching invoice in old. Pure.
func spliceInvoice(old []commerce.Invoice, updated *commerce.Invoice) []commerce.Invoice {
	next := make([]commerce.Invoice, len(old))
	copy(next, old)

	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = *updated
			break
		}
	}

	return next
}

// deriveInvoiceKPIs is the pure KPI derivation. An invoice is overdue when it
// is unpaid past its due date.
func deriveInvoiceKPIs(invoices []commerce.Invoice, f invoiceFilter) InvoiceKPIs {
	var kpis InvoiceKPIs

	for _, invoice := range invoices {
		if invoice.Status != commerce.InvoiceUnpaid {
			continue
		}

		kpis.UnpaidCount++
		kpis.OutstandingCents += invoice.AmountCents

		if invoice.DueAt.Before(f.AsOf) {
			kpis.OverdueCount++
		}
	}

	return kpis
}
