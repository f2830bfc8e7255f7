package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// WebhookMetrics records webhook ingestion outcomes.
type WebhookMetrics interface {
	RecordOutcome(eventType, status string)
	RecordRevalidations(eventType string, count int64)
	RecordProcessingDuration(duration time.Duration, eventType, status string)
}

// webhookMetrics implements WebhookMetrics.
type webhookMetrics struct {
	events        metric.Int64Counter
	invalidations metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewWebhookMetrics creates WebhookMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewWebhookMetrics(meter metric.Meter) (WebhookMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	events, err := meter.Int64Counter(
		MetricNameWebhookEvents,
		metric.WithDescription("Webhook deliveries by event type and outcome (processed, skipped, failed)"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook events counter: %w", err)
	}

	invalidations, err := meter.Int64Counter(
		MetricNameWebhookInvalidated,
		metric.WithDescription("Cache tags and paths invalidated per event type"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook invalidations counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameWebhookDuration,
		metric.WithDescription("Webhook processing duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook duration histogram: %w", err)
	}

	return &webhookMetrics{
		events:        events,
		invalidations: invalidations,
		duration:      duration,
	}, nil
}

func (wm *webhookMetrics) RecordOutcome(eventType, status string) {
	wm.events.Add(context.Background(), 1,
		metric.WithAttributes(attrEventType(eventType), attrStatus(status)))
}

func (wm *webhookMetrics) RecordRevalidations(eventType string, count int64) {
	wm.invalidations.Add(context.Background(), count,
		metric.WithAttributes(attrEventType(eventType)))
}

func (wm *webhookMetrics) RecordProcessingDuration(duration time.Duration, eventType, status string) {
	wm.duration.Record(context.Background(), duration.Seconds(),
		metric.WithAttributes(attrEventType(eventType), attrStatus(status)))
}
