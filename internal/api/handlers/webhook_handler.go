package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vendora/edge/internal/api/response"
	"github.com/vendora/edge/internal/webhook"
)

// DeliveryIDHeader carries the upstream delivery identifier, preferred as the
// idempotency key.
const DeliveryIDHeader = "X-Delivery-ID"

// EventTypeHeader is the fallback event type when the body has no type field.
const EventTypeHeader = "X-Commerce-Event"

// WebhookHandler handles inbound commerce webhook deliveries.
type WebhookHandler struct {
	verifier  *webhook.SignatureVerifier
	processor *webhook.Processor
	memo      *webhook.Memo
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(verifier *webhook.SignatureVerifier, processor *webhook.Processor, memo *webhook.Memo) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		processor: processor,
		memo:      memo,
	}
}

// processedReceipt is the 200 response for a freshly processed delivery.
type processedReceipt struct {
	Success        bool   `json:"success"`
	Received       bool   `json:"received"`
	EventType      string `json:"eventType"`
	ResourceID     string `json:"resourceId"`
	Revalidated    bool   `json:"revalidated"`
	ProcessingTime string `json:"processingTime"`
	EventID        string `json:"eventId"`
}

// skippedReceipt is the 200 response for an absorbed duplicate redelivery.
type skippedReceipt struct {
	Success        bool   `json:"success"`
	Received       bool   `json:"received"`
	Skipped        bool   `json:"skipped"`
	EventType      string `json:"eventType"`
	ResourceID     string `json:"resourceId"`
	ProcessingTime string `json:"processingTime"`
}

// Receive handles POST /webhooks/commerce.
//
// Authorization fails closed: when the secret is unconfigured or the signature
// header is absent, the delivery is neither processed nor logged.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Failed to read webhook request body", "error", err)
		response.RespondBadRequest(w, "Failed to read request body")
		return
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Warn("Failed to close request body", "error", err)
		}
	}()

	if err := h.verifier.Verify(r.Header, payload); err != nil {
		response.RespondUnauthorized(w, "Invalid webhook signature")
		return
	}

	result, err := h.processor.Process(r.Context(), webhook.Delivery{
		DeliveryID:    r.Header.Get(DeliveryIDHeader),
		EventTypeHint: r.Header.Get(EventTypeHeader),
		Payload:       payload,
	})
	if err != nil {
		slog.Error("Failed to process webhook delivery", "error", err)
		response.RespondInternalServerError(w, "Webhook processing failed")
		return
	}

	if result.Skipped {
		response.RespondJSON(w, http.StatusOK, skippedReceipt{
			Success:        true,
			Received:       true,
			Skipped:        true,
			EventType:      result.EventType,
			ResourceID:     result.ResourceID,
			ProcessingTime: result.ProcessingTime.String(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, processedReceipt{
		Success:        true,
		Received:       true,
		EventType:      result.EventType,
		ResourceID:     result.ResourceID,
		Revalidated:    result.Revalidated,
		ProcessingTime: result.ProcessingTime.String(),
		EventID:        result.EventID,
	})
}

// webhookStatus is the GET capability/introspection document.
type webhookStatus struct {
	Status              string   `json:"status"`
	SupportedEventTypes []string `json:"supportedEventTypes"`
	SignatureMode       string   `json:"signatureMode"`
	MemoEntries         int      `json:"memoEntries"`
	OldestMemoEntry     string   `json:"oldestMemoEntry,omitempty"`
}

// Status handles GET /webhooks/commerce. Read-only; no state is mutated.
func (h *WebhookHandler) Status(w http.ResponseWriter, _ *http.Request) {
	mode := "presence"
	if h.verifier.Strict() {
		mode = "hmac"
	}

	status := webhookStatus{
		Status:              "ok",
		SupportedEventTypes: webhook.SupportedEventTypes(),
		SignatureMode:       mode,
		MemoEntries:         h.memo.Len(),
	}

	if oldest, ok := h.memo.Oldest(); ok {
		status.OldestMemoEntry = oldest.UTC().Format(time.RFC3339)
	}

	response.RespondJSON(w, http.StatusOK, status)
}
