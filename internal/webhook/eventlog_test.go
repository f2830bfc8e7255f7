package webhook

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestEventLog_appends_one_line_per_event(t *testing.T) {
	dir := t.TempDir()
	log := NewEventLog(dir)
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	events := []Event{
		{ID: "evt-1", EventType: "order.created", ResourceID: "1", Payload: json.RawMessage(`{"id":1}`), Status: StatusProcessed, ReceivedAt: day},
		{ID: "evt-2", EventType: "order.created", ResourceID: "1", Payload: json.RawMessage(`{"id":1}`), Status: StatusSkipped, ReceivedAt: day.Add(time.Minute)},
	}

	for _, ev := range events {
		if err := log.Append(ev); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "webhook-2026-03-14.log"))
	if err != nil {
		t.Fatalf("open day file: %v", err)
	}
	defer f.Close()

	var got []Event

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}

		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].ID != "evt-1" || got[1].ID != "evt-2" {
		t.Errorf("ids = %s, %s, want evt-1, evt-2 in append order", got[0].ID, got[1].ID)
	}
	if got[1].Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", got[1].Status)
	}
}

func TestEventLog_splits_files_per_day(t *testing.T) {
	dir := t.TempDir()
	log := NewEventLog(dir)

	if err := log.Append(Event{ID: "a", ReceivedAt: time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := log.Append(Event{ID: "b", ReceivedAt: time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	for _, name := range []string{"webhook-2026-03-14.log", "webhook-2026-03-15.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected day file %s: %v", name, err)
		}
	}
}

func TestEventLog_unwritable_dir_returns_error(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	parent := t.TempDir()
	if err := os.Chmod(parent, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	log := NewEventLog(filepath.Join(parent, "nested"))

	if err := log.Append(Event{ID: "x", ReceivedAt: time.Now()}); err == nil {
		t.Error("Append() error = nil, want error for unwritable directory")
	}
}
