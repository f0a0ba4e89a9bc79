// Package core implements the probe firing state machine: parameter
// validation and clamping, trigger-edge detection, timed firing and cooldown
// sequencing, and status-bit bookkeeping.
// This package has NO external dependencies (no GPIO, MQTT, OS, or timers).
// Time is modeled as explicit clock ticks driven by the caller.
package core

// State is the probe firing state machine state.
type State uint8

const (
	StateIdle State = iota
	StateArmed
	StateFiring
	StateCooling
	StateHardFault
)

// String returns the conventional name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateArmed:
		return "ARMED"
	case StateFiring:
		return "FIRING"
	case StateCooling:
		return "COOLING"
	case StateHardFault:
		return "HARDFAULT"
	}
	return "UNKNOWN"
}

// IntensityIndexLimit is the number of entries in an intensity lookup table.
// Intensity indices are 7-bit; an index at or above this limit is a fatal
// validation failure.
const IntensityIndexLimit = 128

// IntensityLookup maps a 7-bit percent index to a signed DAC voltage code.
// Implementations must accept any index < IntensityIndexLimit; the core never
// calls Lookup with an out-of-range index.
type IntensityLookup interface {
	Lookup(index uint8) int16
}

// ProbeConfig describes one probe's safe operating envelope. Records are
// immutable and owned by the configuration table; the core only borrows them.
type ProbeConfig struct {
	// TriggerVoltage is the exact DAC code driven on TriggerOut while firing.
	TriggerVoltage int16

	// Legal firing-duration bounds, in ticks.
	DurationMin uint16
	DurationMax uint16

	// Legal output envelope for IntensityOut, DAC codes.
	IntensityMin int16
	IntensityMax int16

	// Legal cooldown bounds, in ticks.
	CooldownMin uint16
	CooldownMax uint16

	// Intensity is the probe's percent-to-voltage lookup table.
	Intensity IntensityLookup
}

// ConfigTable resolves probe selector indices to probe configurations.
// The table is read-only at runtime.
type ConfigTable interface {
	// Lookup returns the configuration for the given probe index, or false
	// if no such probe exists.
	Lookup(index uint8) (ProbeConfig, bool)
}

// Inputs is the full set of host signals, sampled once per accepted tick.
type Inputs struct {
	// Reset is level-sensitive, active high, and has highest priority.
	Reset bool

	// ArmEnable requests the armed state. It is also sampled at the end of
	// cooldown to decide between re-arming and returning to idle.
	ArmEnable bool

	// TrigIn is edge-sensitive: a rising edge while armed fires the probe.
	TrigIn bool

	// TickEnable gates this cycle. When false the core performs no
	// evaluation: no state change, outputs held.
	TickEnable bool

	ProbeIndex     uint8
	IntensityIndex uint8

	// Requested firing duration and cooldown, in ticks. Clamped into the
	// selected probe's bounds.
	Duration uint16
	Cooldown uint16
}

// Outputs is what the core drives after a tick.
type Outputs struct {
	TriggerOut   int16
	IntensityOut int16
	Status       uint8
}
