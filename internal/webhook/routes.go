package webhook

import "sort"

// Invalidation is the fixed set of cache tags and paths one event type
// invalidates.
type Invalidation struct {
	Tags  []string
	Paths []string
}

// routingTable maps each supported event type to the rendered views it
// affects. The table is deliberately fixed in code: new event types require a
// code change, matching how the seller-facing views themselves are added.
var routingTable = map[string]Invalidation{
	"order.created": {
		Tags:  []string{"orders", "dashboard"},
		Paths: []string{"/dashboard/orders", "/dashboard"},
	},
	"order.updated": {
		Tags:  []string{"orders", "dashboard"},
		Paths: []string{"/dashboard/orders", "/dashboard"},
	},
	"order.deleted": {
		Tags:  []string{"orders", "dashboard"},
		Paths: []string{"/dashboard/orders", "/dashboard"},
	},
	"product.created": {
		Tags:  []string{"products", "catalog"},
		Paths: []string{"/products", "/dashboard/products"},
	},
	"product.updated": {
		Tags:  []string{"products", "catalog"},
		Paths: []string{"/products", "/dashboard/products"},
	},
	"product.deleted": {
		Tags:  []string{"products", "catalog"},
		Paths: []string{"/products", "/dashboard/products"},
	},
	"customer.created": {
		Tags:  []string{"customers"},
		Paths: []string{"/dashboard/customers"},
	},
	"customer.updated": {
		Tags:  []string{"customers"},
		Paths: []string{"/dashboard/customers"},
	},
	"coupon.created": {
		Tags:  []string{"coupons", "promotions"},
		Paths: []string{"/dashboard/coupons"},
	},
	"coupon.updated": {
		Tags:  []string{"coupons", "promotions"},
		Paths: []string{"/dashboard/coupons"},
	},
	"coupon.deleted": {
		Tags:  []string{"coupons", "promotions"},
		Paths: []string{"/dashboard/coupons"},
	},
}

// RouteFor returns the invalidation set for eventType. Unrecognized types get
// (zero, false): they invalidate nothing but are still processed and logged.
func RouteFor(eventType string) (Invalidation, bool) {
	inv, ok := routingTable[eventType]

	return inv, ok
}

// SupportedEventTypes lists the event types in the routing table, sorted.
func SupportedEventTypes() []string {
	types := make([]string, 0, len(routingTable))
	for t := range routingTable {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}
