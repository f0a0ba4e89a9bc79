package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sealablab/probe-driver/internal/core"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	StatusWord    string     `json:"status_word"`
	Bits          BitsJSON   `json:"bits"`
	Probe         ProbeJSON  `json:"probe"`
	TriggerOut    int16      `json:"trigger_out"`
	IntensityOut  int16      `json:"intensity_out"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// BitsJSON decodes the 8-bit status word for human consumption.
type BitsJSON struct {
	Fault   bool `json:"fault"`
	Alarm   bool `json:"alarm"`
	Cooling bool `json:"cooling"`
	Fired   bool `json:"fired"`
	Firing  bool `json:"firing"`
	Armed   bool `json:"armed"`
}

// ProbeJSON identifies the selected probe.
type ProbeJSON struct {
	Index uint8  `json:"index"`
	Name  string `json:"name"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Fires  int    `json:"fires"`
	Faults int    `json:"faults"`
	Alarms int    `json:"alarms"`
	Ticks  uint64 `json:"ticks"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickUs      int64  `json:"tick_us"`
	Divisor     uint32 `json:"divisor"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	SerialPort  string `json:"serial_port,omitempty"`
	ProbeFile   string `json:"probe_file,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State:      snap.State,
		StatusWord: fmt.Sprintf("0x%02X", snap.Status),
		Bits: BitsJSON{
			Fault:   snap.Status&core.StatusFault != 0,
			Alarm:   snap.Status&core.StatusAlarm != 0,
			Cooling: snap.Status&core.StatusCooling != 0,
			Fired:   snap.Status&core.StatusFired != 0,
			Firing:  snap.Status&core.StatusFiring != 0,
			Armed:   snap.Status&core.StatusArmed != 0,
		},
		Probe:         ProbeJSON{Index: snap.Probe, Name: snap.ProbeName},
		TriggerOut:    snap.TriggerOut,
		IntensityOut:  snap.IntensityOut,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Fires:  snap.Counts.Fires,
			Faults: snap.Counts.Faults,
			Alarms: snap.Counts.Alarms,
			Ticks:  snap.Counts.Ticks,
		},
		Config: ConfigJSON{
			TickUs:      snap.Config.TickUs,
			Divisor:     snap.Config.Divisor,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			SerialPort:  snap.Config.SerialPort,
			ProbeFile:   snap.Config.ProbeFile,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
