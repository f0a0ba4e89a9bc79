// Package status provides a thread-safe status tracker for the probe-driver
// daemon. It is read by HTTP handlers and serialized into MQTT lifecycle
// events.
package status

import (
	"sync"
	"time"
)

// Counts tracks cumulative event counters since startup.
type Counts struct {
	Fires  int
	Faults int
	Alarms int
	Ticks  uint64 // accepted (enabled) ticks evaluated
}

// Config contains daemon configuration for display.
type Config struct {
	TickUs      int64 // host clock period, microseconds
	Divisor     uint32
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	SerialPort  string
	ProbeFile   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         string
	Status        uint8
	Probe         uint8
	ProbeName     string
	TriggerOut    int16
	IntensityOut  int16
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     "IDLE",
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetProbe records the selected probe. Called once at startup.
func (t *Tracker) SetProbe(index uint8, name string) {
	t.mu.Lock()
	t.snap.Probe = index
	t.snap.ProbeName = name
	t.mu.Unlock()
}

// Update sets the core state, status word, outputs and counters.
// Called from runLoop on every accepted tick.
func (t *Tracker) Update(state string, statusWord uint8, triggerOut, intensityOut int16, counts Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Status = statusWord
	t.snap.TriggerOut = triggerOut
	t.snap.IntensityOut = intensityOut
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
