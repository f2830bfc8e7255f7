package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/internal/revalidate"
)

// ErrMissingEventType is returned when neither the body nor the header
// fallback carries an event type.
var ErrMissingEventType = errors.New("missing event type")

// Delivery is one inbound webhook request after authentication.
type Delivery struct {
	// DeliveryID is the upstream-provided delivery identifier, preferred as
	// the idempotency key. May be empty.
	DeliveryID string
	// EventTypeHint is the header fallback used when the body has no type
	// field.
	EventTypeHint string
	// Payload is the raw request body.
	Payload []byte
}

// Result describes the outcome of processing one delivery.
type Result struct {
	EventID        string
	EventType      string
	ResourceID     string
	Revalidated    bool
	Skipped        bool
	ProcessingTime time.Duration
}

// Processor runs the single-attempt state machine for one delivery:
// received -> duplicate? skipped : marked-seen -> dispatched -> processed,
// with any dispatch exception logged as failed. It performs no retries; it is
// the receiving end of the upstream's retry mechanism, so duplicate
// redelivery is expected and absorbed, never treated as an error.
type Processor struct {
	memo        *Memo
	eventLog    *EventLog
	revalidator revalidate.Revalidator
	metrics     observability.WebhookMetrics
	now         func() time.Time
}

// NewProcessor wires a processor. metrics may be nil (metrics disabled).
func NewProcessor(memo *Memo, eventLog *EventLog, revalidator revalidate.Revalidator, metrics observability.WebhookMetrics) *Processor {
	return &Processor{
		memo:        memo,
		eventLog:    eventLog,
		revalidator: revalidator,
		metrics:     metrics,
		now:         time.Now,
	}
}

// Process handles one authenticated delivery.
func (p *Processor) Process(ctx context.Context, d Delivery) (Result, error) {
	start := p.now()

	eventType, resourceID, err := parseDelivery(d.Payload, d.EventTypeHint)
	if err != nil {
		p.logEvent(ctx, Event{
			ID:         DeriveEventID(d.DeliveryID, eventType, resourceID, d.Payload, start),
			EventType:  orUnknown(eventType),
			ResourceID: orUnknown(resourceID),
			Payload:    rawPayload(d.Payload),
			Status:     StatusFailed,
			Error:      err.Error(),
			ReceivedAt: start,
		})
		p.record(orUnknown(eventType), string(StatusFailed), p.now().Sub(start))

		return Result{}, fmt.Errorf("parse webhook payload: %w", err)
	}

	if d.DeliveryID == "" {
		// Without the upstream delivery id the fallback key includes a
		// per-call timestamp, so redeliveries are not actually deduplicated.
		slog.WarnContext(ctx, "Webhook delivery without a delivery id; duplicate suppression is best-effort",
			"event_type", eventType,
			"resource_id", resourceID,
		)
	}

	eventID := DeriveEventID(d.DeliveryID, eventType, resourceID, d.Payload, start)

	if !p.memo.MarkIfNew(eventID, start) {
		p.logEvent(ctx, Event{
			ID:         eventID,
			EventType:  eventType,
			ResourceID: resourceID,
			Payload:    rawPayload(d.Payload),
			Status:     StatusSkipped,
			ReceivedAt: start,
		})

		elapsed := p.now().Sub(start)
		p.record(eventType, string(StatusSkipped), elapsed)

		return Result{
			EventID:        eventID,
			EventType:      eventType,
			ResourceID:     resourceID,
			Skipped:        true,
			ProcessingTime: elapsed,
		}, nil
	}

	revalidated := false

	if inv, ok := RouteFor(eventType); ok {
		if err := p.dispatch(ctx, inv); err != nil {
			p.logEvent(ctx, Event{
				ID:         eventID,
				EventType:  eventType,
				ResourceID: resourceID,
				Payload:    rawPayload(d.Payload),
				Status:     StatusFailed,
				Error:      err.Error(),
				ReceivedAt: start,
			})
			p.record(eventType, string(StatusFailed), p.now().Sub(start))

			return Result{}, fmt.Errorf("dispatch %s: %w", eventType, err)
		}

		revalidated = true

		if p.metrics != nil {
			p.metrics.RecordRevalidations(eventType, int64(len(inv.Tags)+len(inv.Paths)))
		}
	}

	p.logEvent(ctx, Event{
		ID:         eventID,
		EventType:  eventType,
		ResourceID: resourceID,
		Payload:    rawPayload(d.Payload),
		Status:     StatusProcessed,
		ReceivedAt: start,
	})

	elapsed := p.now().Sub(start)
	p.record(eventType, string(StatusProcessed), elapsed)

	return Result{
		EventID:        eventID,
		EventType:      eventType,
		ResourceID:     resourceID,
		Revalidated:    revalidated,
		ProcessingTime: elapsed,
	}, nil
}

// dispatch invalidates every tag and path the routing table names for the
// event family.
func (p *Processor) dispatch(ctx context.Context, inv Invalidation) error {
	for _, tag := range inv.Tags {
		if err := p.revalidator.RevalidateTag(ctx, tag); err != nil {
			return fmt.Errorf("revalidate tag %s: %w", tag, err)
		}
	}

	for _, path := range inv.Paths {
		if err := p.revalidator.RevalidatePath(ctx, path); err != nil {
			return fmt.Errorf("revalidate path %s: %w", path, err)
		}
	}

	return nil
}

// logEvent appends ev to the durable log. Log failures are absorbed here:
// observability must never become a point of failure for the primary flow, so
// the error is only surfaced on the diagnostic channel.
func (p *Processor) logEvent(ctx context.Context, ev Event) {
	if err := p.eventLog.Append(ev); err != nil {
		slog.ErrorContext(ctx, "Webhook event log append failed",
			"event_id", ev.ID,
			"event_type", ev.EventType,
			"status", ev.Status,
			"error", err,
		)
	}
}

func (p *Processor) record(eventType, status string, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}

	p.metrics.RecordOutcome(eventType, status)
	p.metrics.RecordProcessingDuration(elapsed, eventType, status)
}

type resourceRef struct {
	ID json.Number `json:"id"`
}

type envelope struct {
	Type    string       `json:"type"`
	ID      json.Number  `json:"id"`
	Order   *resourceRef `json:"order"`
	Product *resourceRef `json:"product"`
}

// parseDelivery extracts the event type (body field, header fallback) and the
// family-dependent resource identifier (nested order/product id, else
// top-level id, else "unknown").
func parseDelivery(payload []byte, typeHint string) (eventType, resourceID string, err error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", "", fmt.Errorf("decode payload: %w", err)
	}

	eventType = env.Type
	if eventType == "" {
		eventType = typeHint
	}

	if eventType == "" {
		return "", "", ErrMissingEventType
	}

	switch {
	case env.Order != nil && env.Order.ID != "":
		resourceID = env.Order.ID.String()
	case env.Product != nil && env.Product.ID != "":
		resourceID = env.Product.ID.String()
	case env.ID != "":
		resourceID = env.ID.String()
	default:
		resourceID = "unknown"
	}

	return eventType, resourceID, nil
}

// rawPayload returns payload as-is when it is valid JSON, else JSON-quoted so
// the log line stays parseable.
func rawPayload(payload []byte) json.RawMessage {
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}

	quoted, err := json.Marshal(string(payload))
	if err != nil {
		return json.RawMessage(`""`)
	}

	return json.RawMessage(quoted)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
