// Package webhook implements ingestion of commerce lifecycle events from the
// upstream marketplace platform: idempotent processing, a durable per-day
// audit log, and selective revalidation of cached rendered views.
package webhook

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the final outcome of one inbound delivery.
type Status string

// Event outcomes. Every delivery ends in exactly one of these; duplicates are
// skipped, not errors.
const (
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Event is one inbound notification as recorded in the audit log. Records are
// append-only: a retry or duplicate delivery produces a new log line, never an
// update to an existing one.
type Event struct {
	ID         string          `json:"id"`
	EventType  string          `json:"eventType"`
	ResourceID string          `json:"resourceId"`
	Payload    json.RawMessage `json:"payload"`
	Status     Status          `json:"status"`
	Error      string          `json:"error,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// DeriveEventID returns the idempotency key for a delivery. The upstream
// delivery id is used verbatim when supplied; otherwise the key is a content
// hash over the full payload combined with a per-call timestamp, so unrelated
// deliveries never collide by accident. Without a delivery id two identical
// redeliveries derive different keys and are not deduplicated; supplying the
// delivery id header is the integration precondition for true idempotency.
func DeriveEventID(deliveryID, eventType, resourceID string, payload []byte, now time.Time) string {
	if deliveryID != "" {
		return deliveryID
	}

	h := sha256.New()
	h.Write([]byte(eventType))
	h.Write([]byte{0})
	h.Write([]byte(resourceID))
	h.Write([]byte{0})
	h.Write(payload)

	return fmt.Sprintf("evt_%x_%d", h.Sum(nil)[:16], now.UnixNano())
}
