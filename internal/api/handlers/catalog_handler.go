package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vendora/edge/internal/api/response"
	"github.com/vendora/edge/pkg/commerce"
)

// CatalogHandler serves the read-only catalog routes. These are not backed by
// the resource cache; they sit behind the page cache middleware, which the
// webhook processor invalidates by tag on product and order events.
type CatalogHandler struct {
	client *commerce.Client
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(client *commerce.Client) *CatalogHandler {
	return &CatalogHandler{client: client}
}

// ListProducts handles GET /v1/catalog/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	opts := commerce.ProductListOptions{
		Category: r.URL.Query().Get("category"),
		StoreID:  r.URL.Query().Get("store"),
	}

	products, err := h.client.ListProducts(r.Context(), opts)
	if err != nil {
		slog.Error("Failed to list products", "error", err)
		response.RespondInternalServerError(w, "Failed to list products")
		return
	}

	response.RespondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /v1/catalog/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.RespondBadRequest(w, "Product id must be an integer")
		return
	}

	product, err := h.client.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			response.RespondNotFound(w, "Product not found")
			return
		}

		slog.Error("Failed to get product", "product_id", id, "error", err)
		response.RespondInternalServerError(w, "Failed to get product")
		return
	}

	response.RespondJSON(w, http.StatusOK, product)
}

// ListOrders handles GET /v1/catalog/orders.
func (h *CatalogHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	opts := commerce.OrderListOptions{
		Status:  r.URL.Query().Get("status"),
		StoreID: r.URL.Query().Get("store"),
	}

	orders, err := h.client.ListOrders(r.Context(), opts)
	if err != nil {
		slog.Error("Failed to list orders", "error", err)
		response.RespondInternalServerError(w, "Failed to list orders")
		return
	}

	response.RespondJSON(w, http.StatusOK, orders)
}
