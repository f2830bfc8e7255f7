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

// HelpdeskHandler serves the seller support ticket routes.
type HelpdeskHandler struct {
	store *dashboard.Helpdesk
}

// NewHelpdeskHandler creates a new helpdesk handler.
func NewHelpdeskHandler(store *dashboard.Helpdesk) *HelpdeskHandler {
	return &HelpdeskHandler{store: store}
}

// List handles GET /v1/tickets.
func (h *HelpdeskHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("Failed to list tickets", "error", err)
		response.RespondInternalServerError(w, "Failed to list tickets")
		return
	}

	response.RespondJSON(w, http.StatusOK, tickets)
}

// KPIs handles GET /v1/tickets/kpis.
func (h *HelpdeskHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.store.KPIs(r.Context())
	if err != nil {
		slog.Error("Failed to compute ticket KPIs", "error", err)
		response.RespondInternalServerError(w, "Failed to compute ticket KPIs")
		return
	}

	response.RespondJSON(w, http.StatusOK, kpis)
}

// Reply handles POST /v1/tickets/{id}/replies.
func (h *HelpdeskHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Ticket id is required")
		return
	}

	var input commerce.TicketReplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.RespondBadRequest(w, "Invalid reply payload")
		return
	}

	if input.Message == "" {
		response.RespondUnprocessableEntity(w, "Reply message is required")
		return
	}

	ticket, err := h.store.Reply(r.Context(), id, input)
	if err != nil {
		h.respondMutationError(w, id, "reply to", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, ticket)
}

// Close handles POST /v1/tickets/{id}/close.
func (h *HelpdeskHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Ticket id is required")
		return
	}

	ticket, err := h.store.Close(r.Context(), id)
	if err != nil {
		h.respondMutationError(w, id, "close", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, ticket)
}

type surveyInput struct {
	Score int `json:"score"`
}

// SubmitSurvey handles POST /v1/tickets/{id}/survey.
func (h *HelpdeskHandler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Ticket id is required")
		return
	}

	var input surveyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.RespondBadRequest(w, "Invalid survey payload")
		return
	}

	ticket, err := h.store.SubmitSurvey(r.Context(), id, input.Score)
	if err != nil {
		h.respondMutationError(w, id, "submit survey for", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, ticket)
}

func (h *HelpdeskHandler) respondMutationError(w http.ResponseWriter, id, action string, err error) {
	if errors.Is(err, commerce.ErrNotFound) {
		response.RespondNotFound(w, "Ticket not found")
		return
	}

	if errors.Is(err, edgeerrors.ErrValidation) {
		response.RespondUnprocessableEntity(w, err.Error())
		return
	}

	slog.Error("Failed to "+action+" ticket", "ticket_id", id, "error", err)
	response.RespondInternalServerError(w, "Failed to "+action+" ticket")
}
