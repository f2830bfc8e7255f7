package webhook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// EventLog appends event records to per-calendar-day newline-delimited JSON
// files (webhook-YYYY-MM-DD.log). Writes are single-line O_APPEND appends, so
// concurrent requests interleave at line granularity. The log is the durable,
// replayable system of record; entries are never rewritten.
type EventLog struct {
	dir string
}

// NewEventLog creates an event log writing under dir.
func NewEventLog(dir string) *EventLog {
	return &EventLog{dir: dir}
}

// Append writes one event as a JSON line to the day file for ev.ReceivedAt.
func (l *EventLog) Append(ev Event) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	name := "webhook-" + ev.ReceivedAt.UTC().Format("2006-01-02") + ".log"

	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	line, err := json.Marshal(ev)
	if err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("marshal event: %w (close: %v)", err, closeErr)
		}

		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("append event: %w (close: %v)", err, closeErr)
		}

		return fmt.Errorf("append event: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}

	return nil
}
