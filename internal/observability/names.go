package observability

import (
	"go.opentelemetry.io/otel/attribute"
)

// Metric names.
const (
	MetricNameRequestCount       = "http.server.request_count"
	MetricNameRequestDuration    = "http.server.duration"
	MetricNameWebhookEvents      = "webhook_events_total"
	MetricNameWebhookDuration    = "webhook_processing_duration_seconds"
	MetricNameWebhookInvalidated = "webhook_invalidations_total"
	MetricNameCacheHits          = "cache_hits_total"
	MetricNameCacheMisses        = "cache_misses_total"
)

// Attribute keys.
const (
	AttrEventType = "event_type"
	AttrStatus    = "status"
	AttrCache     = "cache"
)

// knownEventTypes bounds the event_type label to the routed families plus
// "unknown", keeping metric cardinality fixed regardless of what the upstream
// sends.
var knownEventTypes = map[string]struct{}{
	"order.created": {}, "order.updated": {}, "order.deleted": {},
	"product.created": {}, "product.updated": {}, "product.deleted": {},
	"customer.created": {}, "customer.updated": {},
	"coupon.created": {}, "coupon.updated": {}, "coupon.deleted": {},
}

// NormalizeEventType maps unrouted event types to "unknown".
func NormalizeEventType(eventType string) string {
	if _, ok := knownEventTypes[eventType]; ok {
		return eventType
	}

	return "unknown"
}

func attrEventType(eventType string) attribute.KeyValue {
	return attribute.String(AttrEventType, NormalizeEventType(eventType))
}

func attrStatus(status string) attribute.KeyValue {
	return attribute.String(AttrStatus, status)
}
