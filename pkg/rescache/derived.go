package rescache

import (
	"context"
	"sync"
)

// DerivedView memoizes a pure derivation of a base resource plus a filter
// (e.g. a filtered list or KPI aggregate). The derivation is recomputed only
// when the base resource's version or the filter changes, so derived data
// never becomes a second source of truth.
type DerivedView[T any, F comparable, D any] struct {
	res    *Resource[T]
	derive func(base T, filter F) D

	mu          sync.Mutex
	valid       bool
	lastVersion uint64
	lastFilter  F
	lastValue   D
}

// NewDerivedView creates a memoized view over res. derive must be pure.
func NewDerivedView[T any, F comparable, D any](res *Resource[T], derive func(T, F) D) *DerivedView[T, F, D] {
	return &DerivedView[T, F, D]{res: res, derive: derive}
}

// Get returns the derived value for filter, fetching the base resource if
// needed and reusing the memoized result when neither input changed.
func (v *DerivedView[T, F, D]) Get(ctx context.Context, filter F) (D, error) {
	base, err := v.res.Get(ctx)
	if err != nil {
		var zero D

		return zero, err
	}

	version := v.res.Version()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.valid && v.lastVersion == version && v.lastFilter == filter {
		return v.lastValue, nil
	}

	derived := v.derive(base, filter)
	v.valid = true
	v.lastVersion = version
	v.lastFilter = filter
	v.lastValue = derived

	return derived, nil
}
