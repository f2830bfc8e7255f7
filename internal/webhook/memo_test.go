package webhook

import (
	"testing"
	"time"
)

func TestMemo_MarkIfNew(t *testing.T) {
	memo := NewMemo(24 * time.Hour)
	now := time.Now()

	if !memo.MarkIfNew("evt-1", now) {
		t.Fatal("MarkIfNew() = false for first sighting, want true")
	}
	if memo.MarkIfNew("evt-1", now.Add(time.Minute)) {
		t.Error("MarkIfNew() = true for duplicate, want false")
	}
	if !memo.MarkIfNew("evt-2", now) {
		t.Error("MarkIfNew() = false for distinct id, want true")
	}
}

func TestMemo_expired_entry_is_new_again(t *testing.T) {
	memo := NewMemo(24 * time.Hour)
	now := time.Now()

	memo.MarkIfNew("evt-1", now)

	if !memo.MarkIfNew("evt-1", now.Add(25*time.Hour)) {
		t.Error("MarkIfNew() = false after TTL expiry, want true")
	}
}

func TestMemo_Sweep(t *testing.T) {
	memo := NewMemo(24 * time.Hour)
	now := time.Now()

	memo.MarkIfNew("old-1", now.Add(-30*time.Hour))
	memo.MarkIfNew("old-2", now.Add(-25*time.Hour))
	memo.MarkIfNew("fresh", now.Add(-time.Hour))

	if removed := memo.Sweep(now); removed != 2 {
		t.Errorf("Sweep() = %d, want 2", removed)
	}
	if memo.Len() != 1 {
		t.Errorf("Len() = %d, want 1", memo.Len())
	}

	if oldest, ok := memo.Oldest(); !ok || !oldest.Equal(now.Add(-time.Hour)) {
		t.Errorf("Oldest() = %v, %v, want fresh entry's timestamp", oldest, ok)
	}
}

func TestMemo_default_ttl(t *testing.T) {
	memo := NewMemo(0)
	now := time.Now()

	memo.MarkIfNew("evt", now)

	if memo.MarkIfNew("evt", now.Add(23*time.Hour)) {
		t.Error("MarkIfNew() = true inside default 24h TTL, want false")
	}
}
