package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vendora/edge/internal/api/response"
	"github.com/vendora/edge/internal/dashboard"
	"github.com/vendora/edge/internal/edgeerrors"
	"github.com/vendora/edge/pkg/commerce"
)

// SellersHandler serves the admin vendor moderation routes.
type SellersHandler struct {
	store *dashboard.Sellers
}

// NewSellersHandler creates a new sellers handler.
func NewSellersHandler(store *dashboard.Sellers) *SellersHandler {
	return &SellersHandler{store: store}
}

// List handles GET /v1/sellers. An optional status query filters the
// collection via the memoized derived view.
func (h *SellersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := commerce.SellerStatus(r.URL.Query().Get("status"))

	sellers, err := h.store.ByStatus(r.Context(), status)
	if err != nil {
		slog.Error("Failed to list sellers", "error", err)
		response.RespondInternalServerError(w, "Failed to list sellers")
		return
	}

	response.RespondJSON(w, http.StatusOK, sellers)
}

type sellerStatusInput struct {
	Status commerce.SellerStatus `json:"status"`
}

// SetStatus handles PUT /v1/sellers/{id}/status.
func (h *SellersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Seller id is required")
		return
	}

	var input sellerStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.RespondBadRequest(w, "Invalid status payload")
		return
	}

	seller, err := h.store.SetStatus(r.Context(), id, input.Status)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			response.RespondNotFound(w, "Seller not found")
			return
		}

		if errors.Is(err, edgeerrors.ErrValidation) {
			response.RespondUnprocessableEntity(w, err.Error())
			return
		}

		slog.Error("Failed to update seller status", "seller_id", id, "error", err)
		response.RespondInternalServerError(w, "Failed to update seller status")
		return
	}

	response.RespondJSON(w, http.StatusOK, seller)
}
