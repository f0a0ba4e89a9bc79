// Package telemetry publishes firing-core transitions and system lifecycle
// events over MQTT, with abstraction for testing.
package telemetry

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for firing events.
const Topic = "lab/probe-driver/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "lab/probe-driver/system"

// EventType classifies a state machine transition.
type EventType string

const (
	EventArmed    EventType = "ARMED"
	EventFired    EventType = "FIRED"
	EventCooling  EventType = "COOLING"
	EventDisarmed EventType = "DISARMED"
	EventFault    EventType = "HARDFAULT"
)

// Event represents one state machine transition to be published.
type Event struct {
	Timestamp    time.Time
	Type         EventType
	State        string // state name after the transition
	Probe        uint8
	Status       uint8
	TriggerOut   int16
	IntensityOut int16
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a firing event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Probe ProbePayload `json:"probe"`
}

// ProbePayload contains the firing event details.
type ProbePayload struct {
	Timestamp    string `json:"timestamp"`
	Event        string `json:"event"`
	State        string `json:"state"`
	ProbeIndex   uint8  `json:"probe_index"`
	Status       uint8  `json:"status"`
	TriggerOut   int16  `json:"trigger_out"`
	IntensityOut int16  `json:"intensity_out"`
}

// FormatPayload creates the JSON payload for a firing event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Probe: ProbePayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Type),
			State:        event.State,
			ProbeIndex:   event.Probe,
			Status:       event.Status,
			TriggerOut:   event.TriggerOut,
			IntensityOut: event.IntensityOut,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
