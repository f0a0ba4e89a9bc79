package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{TickUs: 1000, Divisor: 4, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.TickUs != 1000 {
		t.Errorf("Config.TickUs: got %d, want 1000", snap.Config.TickUs)
	}
	if snap.Config.HTTPAddr != ":80" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":80")
	}
	if snap.State != "IDLE" {
		t.Errorf("State: got %q, want IDLE", snap.State)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update("FIRING", 0x07, 3300, 2500, Counts{Fires: 3, Ticks: 1200})

	snap := tr.Snapshot()
	if snap.State != "FIRING" {
		t.Errorf("State: got %q, want FIRING", snap.State)
	}
	if snap.Status != 0x07 {
		t.Errorf("Status: got %#02x, want 0x07", snap.Status)
	}
	if snap.TriggerOut != 3300 || snap.IntensityOut != 2500 {
		t.Errorf("outputs: got trigger=%d intensity=%d", snap.TriggerOut, snap.IntensityOut)
	}
	if snap.Counts.Fires != 3 {
		t.Errorf("Counts.Fires: got %d, want 3", snap.Counts.Fires)
	}
	if snap.Counts.Ticks != 1200 {
		t.Errorf("Counts.Ticks: got %d, want 1200", snap.Counts.Ticks)
	}
}

func TestSetProbe(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetProbe(2, "emfi-small")

	snap := tr.Snapshot()
	if snap.Probe != 2 {
		t.Errorf("Probe: got %d, want 2", snap.Probe)
	}
	if snap.ProbeName != "emfi-small" {
		t.Errorf("ProbeName: got %q, want emfi-small", snap.ProbeName)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update("ARMED", 0x01, 0, 0, Counts{Fires: 1})

	snap1 := tr.Snapshot()

	tr.Update("FIRING", 0x07, 3300, 2500, Counts{Fires: 2})

	// snap1 should still reflect old state
	if snap1.State != "ARMED" {
		t.Error("snapshot should be a copy; State was modified")
	}
	if snap1.Counts.Fires != 1 {
		t.Error("snapshot should be a copy; Counts were modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		State:         "FIRING",
		Status:        0x47,
		Probe:         1,
		ProbeName:     "laser",
		TriggerOut:    3300,
		IntensityOut:  2000,
		Counts:        Counts{Fires: 5, Faults: 0, Alarms: 2, Ticks: 9000},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{TickUs: 1000, Divisor: 1, HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.State != "FIRING" {
		t.Errorf("State: got %q, want FIRING", parsed.Status.State)
	}
	if parsed.Status.StatusWord != "0x47" {
		t.Errorf("StatusWord: got %q, want 0x47", parsed.Status.StatusWord)
	}
	if !parsed.Status.Bits.Firing || !parsed.Status.Bits.Armed || !parsed.Status.Bits.Fired || !parsed.Status.Bits.Alarm {
		t.Errorf("bits not decoded: %+v", parsed.Status.Bits)
	}
	if parsed.Status.Bits.Fault || parsed.Status.Bits.Cooling {
		t.Errorf("unexpected bits set: %+v", parsed.Status.Bits)
	}
	if parsed.Status.Probe.Name != "laser" {
		t.Errorf("Probe.Name: got %q, want laser", parsed.Status.Probe.Name)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Counts.Fires != 5 {
		t.Errorf("Counts.Fires: got %d, want 5", parsed.Status.Counts.Fires)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", parsed.Status.Reason)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		State:     "HARDFAULT",
		Status:    0x80,
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
	if !parsed.Status.Bits.Fault {
		t.Error("expected fault bit decoded")
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	// Verify "reason" is not in the raw JSON output
	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	statusObj := raw["status"].(map[string]interface{})
	if _, exists := statusObj["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if statusObj["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", statusObj["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update("ARMED", 0x01, 0, 0, Counts{Ticks: uint64(i)})
			tr.SetMQTTConnected(i%2 == 0)
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
		}
	}()

	wg.Wait()
}
