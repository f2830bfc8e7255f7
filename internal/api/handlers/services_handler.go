package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vendora/edge/internal/api/response"
	"github.com/vendora/edge/internal/dashboard"
	"github.com/vendora/edge/pkg/commerce"
)

// ServicesHandler serves the seller service listing routes.
type ServicesHandler struct {
	store *dashboard.Services
}

// NewServicesHandler creates a new services handler.
func NewServicesHandler(store *dashboard.Services) *ServicesHandler {
	return &ServicesHandler{store: store}
}

// List handles GET /v1/services.
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("Failed to list service listings", "error", err)
		response.RespondInternalServerError(w, "Failed to list service listings")
		return
	}

	response.RespondJSON(w, http.StatusOK, listings)
}

// Upsert handles PUT /v1/services. A listing without an id is created; with
// an id it is updated in place.
func (h *ServicesHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var listing commerce.ServiceListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		response.RespondBadRequest(w, "Invalid listing payload")
		return
	}

	if listing.Name == "" {
		response.RespondUnprocessableEntity(w, "Listing name is required")
		return
	}

	saved, err := h.store.Upsert(r.Context(), listing)
	if err != nil {
		slog.Error("Failed to upsert service listing", "listing_id", listing.ID, "error", err)
		response.RespondInternalServerError(w, "Failed to upsert service listing")
		return
	}

	response.RespondJSON(w, http.StatusOK, saved)
}
