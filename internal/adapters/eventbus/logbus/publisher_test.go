package logbus

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"farm-vet-appointments/internal/ports/eventbus"
)

func TestPublisher_LogsEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Publish(context.Background(), eventbus.Event{
		ID:            "evt-1",
		Type:          eventbus.AppointmentCancelled,
		AppointmentID: "appt-1",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if entry["event_type"] != string(eventbus.AppointmentCancelled) || entry["appointment_id"] != "appt-1" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}
