package telemetry

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp:    time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:         EventFired,
		State:        "FIRING",
		Probe:        2,
		Status:       0x07,
		TriggerOut:   3300,
		IntensityOut: 2500,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Probe.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Probe.Timestamp)
	}
	if parsed.Probe.Event != "FIRED" {
		t.Errorf("unexpected event: %s", parsed.Probe.Event)
	}
	if parsed.Probe.State != "FIRING" {
		t.Errorf("unexpected state: %s", parsed.Probe.State)
	}
	if parsed.Probe.ProbeIndex != 2 {
		t.Errorf("unexpected probe index: %d", parsed.Probe.ProbeIndex)
	}
	if parsed.Probe.Status != 0x07 {
		t.Errorf("unexpected status: %#02x", parsed.Probe.Status)
	}
	if parsed.Probe.TriggerOut != 3300 || parsed.Probe.IntensityOut != 2500 {
		t.Errorf("unexpected outputs: trigger=%d intensity=%d", parsed.Probe.TriggerOut, parsed.Probe.IntensityOut)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := Event{Timestamp: time.Now(), Type: EventArmed, State: "ARMED"}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].Type != EventArmed {
		t.Errorf("unexpected event type: %s", f.Events[0].Type)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(f.Payloads))
	}

	sys := SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"}
	if err := f.PublishSystem(sys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}

	f.Reset()
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("Reset did not clear recorded events")
	}
}
