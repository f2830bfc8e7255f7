package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultMemoTTL bounds how long a processed delivery id suppresses
// duplicates. After expiry a redelivery is treated as a fresh event; that is
// documented behavior, the durable log remains the system of record.
const DefaultMemoTTL = 24 * time.Hour

// Memo is the process-scoped set of idempotency keys already handled. It only
// prevents double side effects (duplicate revalidation) during this process's
// uptime; it is intentionally not durable and is lost on restart.
//
// Unlike the single-threaded runtime the original design assumed, Go request
// handlers and the sweeper run concurrently, so access is mutex-guarded.
type Memo struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemo creates a memo whose entries expire after ttl (DefaultMemoTTL when
// ttl <= 0).
func NewMemo(ttl time.Duration) *Memo {
	if ttl <= 0 {
		ttl = DefaultMemoTTL
	}

	return &Memo{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// MarkIfNew records id as seen and reports whether it was new. Marking happens
// atomically with the check, shrinking the window in which two concurrent
// deliveries of the same id could both pass as new.
func (m *Memo) MarkIfNew(id string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if at, ok := m.seen[id]; ok && now.Sub(at) <= m.ttl {
		return false
	}

	m.seen[id] = now

	return true
}

// Sweep removes entries older than the TTL and returns how many were removed.
func (m *Memo) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0

	for id, at := range m.seen {
		if now.Sub(at) > m.ttl {
			delete(m.seen, id)

			removed++
		}
	}

	return removed
}

// Len returns the number of remembered delivery ids.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.seen)
}

// Oldest returns the timestamp of the oldest remembered entry.
func (m *Memo) Oldest() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldest time.Time

	found := false

	for _, at := range m.seen {
		if !found || at.Before(oldest) {
			oldest = at
			found = true
		}
	}

	return oldest, found
}

// Run sweeps expired entries on the given cadence until ctx is cancelled.
// The sweep is best-effort and never blocks request handling.
func (m *Memo) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := m.Sweep(now); removed > 0 {
				slog.Debug("Swept expired webhook memo entries", "removed", removed, "remaining", m.Len())
			}
		}
	}
}
