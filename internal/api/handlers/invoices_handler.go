package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vendora/edge/internal/api/response"
	"github.com/vendora/edge/internal/dashboard"
	"github.com/vendora/edge/pkg/commerce"
)

// InvoicesHandler serves the seller billing routes.
type InvoicesHandler struct {
	store *dashboard.Invoices
}

// NewInvoicesHandler creates a new invoices handler.
func NewInvoicesHandler(store *dashboard.Invoices) *InvoicesHandler {
	return &InvoicesHandler{store: store}
}

// List handles GET /v1/invoices.
func (h *InvoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("Failed to list invoices", "error", err)
		response.RespondInternalServerError(w, "Failed to list invoices")
		return
	}

	response.RespondJSON(w, http.StatusOK, invoices)
}

// KPIs handles GET /v1/invoices/kpis.
func (h *InvoicesHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.store.KPIs(r.Context())
	if err != nil {
		slog.Error("Failed to compute invoice KPIs", "error", err)
		response.RespondInternalServerError(w, "Failed to compute invoice KPIs")
		return
	}

	response.RespondJSON(w, http.StatusOK, kpis)
}

// MarkPaid handles POST /v1/invoices/{id}/pay.
func (h *InvoicesHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Invoice id is required")
		return
	}

	invoice, err := h.store.MarkPaid(r.Context(), id)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			response.RespondNotFound(w, "Invoice not found")
			return
		}

		slog.Error("Failed to mark invoice paid", "invoice_id", id, "error", err)
		response.RespondInternalServerError(w, "Failed to mark invoice paid")
		return
	}

	response.RespondJSON(w, http.StatusOK, invoice)
}
