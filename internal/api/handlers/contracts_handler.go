package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vendora/edge/internal/api/response"
	"github.com/vendora/edge/internal/dashboard"
	"github.com/vendora/edge/pkg/commerce"
)

// ContractsHandler serves the admin contracts routes.
type ContractsHandler struct {
	store *dashboard.Contracts
}

// NewContractsHandler creates a new contracts handler.
func NewContractsHandler(store *dashboard.Contracts) *ContractsHandler {
	return &ContractsHandler{store: store}
}

// List handles GET /v1/contracts. An optional status query filters the
// collection via the memoized derived view.
func (h *ContractsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := commerce.ContractStatus(r.URL.Query().Get("status"))

	var (
		contracts []commerce.Contract
		err       error
	)

	if status != "" {
		contracts, err = h.store.ByStatus(r.Context(), status)
	} else {
		contracts, err = h.store.List(r.Context())
	}

	if err != nil {
		slog.Error("Failed to list contracts", "error", err)
		response.RespondInternalServerError(w, "Failed to list contracts")
		return
	}

	response.RespondJSON(w, http.StatusOK, contracts)
}

// Expiring handles GET /v1/contracts/expiring: contracts expiring within the
// next 30 days, flagged for admin attention.
func (h *ContractsHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.store.ExpiringWithin(r.Context(), 30*24*time.Hour)
	if err != nil {
		slog.Error("Failed to list expiring contracts", "error", err)
		response.RespondInternalServerError(w, "Failed to list expiring contracts")
		return
	}

	response.RespondJSON(w, http.StatusOK, contracts)
}

// Validate handles POST /v1/contracts/{id}/validate.
func (h *ContractsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.store.Validate)
}

// Invalidate handles POST /v1/contracts/{id}/invalidate.
func (h *ContractsHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.store.Invalidate)
}

func (h *ContractsHandler) setStatus(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (*commerce.Contract, error)) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Contract id is required")
		return
	}

	contract, err := apply(r.Context(), id)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			response.RespondNotFound(w, "Contract not found")
			return
		}

		slog.Error("Failed to update contract", "contract_id", id, "error", err)
		response.RespondInternalServerError(w, "Failed to update contract")
		return
	}

	response.RespondJSON(w, http.StatusOK, contract)
}
