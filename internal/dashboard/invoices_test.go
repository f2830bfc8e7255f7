package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

type fakeInvoicesAPI struct {
	invoices  []commerce.Invoice
	listCalls int
}

func (f *fakeInvoicesAPI) ListInvoices(_ context.Context) ([]commerce.Invoice, error) {
	f.listCalls++
	return f.invoices, nil
}

func (f *fakeInvoicesAPI) PayInvoice(_ context.Context, id string) (*commerce.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.Status = commerce.InvoicePaid
			now := time.Now()
			inv.PaidAt = &now

			return &inv, nil
		}
	}

	return nil, commerce.ErrNotFound
}

func TestInvoices_MarkPaid_updates_cached_KPIs(t *testing.T) {
	now := time.Now()
	api := &fakeInvoicesAPI{invoices: []commerce.Invoice{
		{ID: "i1", Status: commerce.InvoiceUnpaid, AmountCents: 5000, DueAt: now.Add(-24 * time.Hour)},
		{ID: "i2", Status: commerce.InvoiceUnpaid, AmountCents: 2500, DueAt: now.Add(30 * 24 * time.Hour)},
	}}
	store := NewInvoices(rescache.NewStore(), api, time.Hour, nil)
	ctx := context.Background()

	kpis, err := store.KPIs(ctx)
	if err != nil {
		t.Fatalf("KPIs() error = %v", err)
	}
	if kpis.OutstandingCents != 7500 || kpis.UnpaidCount != 2 || kpis.OverdueCount != 1 {
		t.Errorf("KPIs() = %+v, want outstanding 7500, unpaid 2, overdue 1", kpis)
	}

	if _, err := store.MarkPaid(ctx, "i1"); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}

	kpis, err = store.KPIs(ctx)
	if err != nil {
		t.Fatalf("KPIs() error = %v", err)
	}
	if kpis.OutstandingCents != 2500 || kpis.UnpaidCount != 1 || kpis.OverdueCount != 0 {
		t.Errorf("KPIs() after MarkPaid = %+v, want outstanding 2500, unpaid 1, overdue 0", kpis)
	}
	if api.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 (mutation must not refetch)", api.listCalls)
	}
}
