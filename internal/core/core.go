package core

// Core is the synchronous probe firing state machine. All runtime state is
// owned by the Core and mutated exactly once per accepted tick; it has a
// single writer (Tick) and must be driven from one goroutine.
type Core struct {
	table ConfigTable

	state       State
	probeIndex  uint8
	effDuration uint16
	effCooldown uint16
	timer       uint16
	firedSticky bool
	alarm       bool
	prevTrig    bool

	triggerOut   int16
	intensityOut int16
}

// New creates a Core bound to the given probe configuration table.
func New(table ConfigTable) *Core {
	return &Core{table: table}
}

// Tick evaluates one clock cycle and returns the driven outputs.
//
// When in.TickEnable is false the cycle is gated: nothing is evaluated, no
// state changes, and the previous outputs are held. Reset is checked first,
// unconditionally, before any other input. The validator always runs before
// the transition logic, so transitions only ever see clamped, validated
// values, never raw inputs.
func (c *Core) Tick(in Inputs) Outputs {
	if !in.TickEnable {
		return c.outputs()
	}

	if in.Reset {
		c.clear()
		return c.outputs()
	}

	if c.state == StateHardFault {
		// Halted. Only reset leaves this state.
		return c.outputs()
	}

	cfg, ok := c.table.Lookup(in.ProbeIndex)
	if !ok || in.IntensityIndex >= IntensityIndexLimit {
		// An unknown probe cannot be bounded safely, and an out-of-table
		// intensity index is treated the same way.
		c.trip()
		return c.outputs()
	}

	duration, durClamped := clampU16(in.Duration, cfg.DurationMin, cfg.DurationMax)
	cooldown, cdClamped := clampU16(in.Cooldown, cfg.CooldownMin, cfg.CooldownMax)
	// Alarm is not sticky; it reflects the clamping performed this tick.
	c.alarm = durClamped || cdClamped

	risingEdge := in.TrigIn && !c.prevTrig

	switch c.state {
	case StateIdle:
		if in.ArmEnable {
			// A new arm cycle clears the fired flag.
			c.state = StateArmed
			c.probeIndex = in.ProbeIndex
			c.firedSticky = false
		}

	case StateArmed:
		switch {
		case !in.ArmEnable:
			c.state = StateIdle
		case risingEdge:
			// Latch everything now so a live configuration edit cannot
			// corrupt the in-flight firing.
			c.probeIndex = in.ProbeIndex
			c.effDuration = duration
			c.effCooldown = cooldown
			c.timer = c.effDuration
			c.firedSticky = true
			c.triggerOut = cfg.TriggerVoltage
			intensity, iClamped := clampI16(cfg.Intensity.Lookup(in.IntensityIndex), cfg.IntensityMin, cfg.IntensityMax)
			if iClamped {
				c.alarm = true
			}
			c.intensityOut = intensity
			c.state = StateFiring
		default:
			c.probeIndex = in.ProbeIndex
		}

	case StateFiring:
		if c.timer > 0 {
			c.timer--
		}
		if c.timer == 0 {
			c.triggerOut = 0
			c.intensityOut = 0
			c.timer = c.effCooldown
			c.state = StateCooling
		}

	case StateCooling:
		// Trigger edges during cooldown are ignored, not queued.
		if c.timer > 0 {
			c.timer--
		}
		if c.timer == 0 {
			if in.ArmEnable {
				c.state = StateArmed
			} else {
				c.state = StateIdle
			}
		}
	}

	c.prevTrig = in.TrigIn
	return c.outputs()
}

// clear returns the machine to idle with every field zeroed, including the
// sticky and fault flags. This is the only path out of HARDFAULT.
func (c *Core) clear() {
	c.state = StateIdle
	c.probeIndex = 0
	c.effDuration = 0
	c.effCooldown = 0
	c.timer = 0
	c.firedSticky = false
	c.alarm = false
	c.prevTrig = false
	c.triggerOut = 0
	c.intensityOut = 0
}

// trip forces HARDFAULT with outputs zeroed.
func (c *Core) trip() {
	c.state = StateHardFault
	c.timer = 0
	c.alarm = false
	c.triggerOut = 0
	c.intensityOut = 0
}

func (c *Core) outputs() Outputs {
	return Outputs{
		TriggerOut:   c.triggerOut,
		IntensityOut: c.intensityOut,
		Status:       c.Status(),
	}
}

// State returns the current state.
func (c *Core) State() State { return c.state }

// SelectedProbe returns the last-validated probe index.
func (c *Core) SelectedProbe() uint8 { return c.probeIndex }

// FiredSticky reports whether the probe has fired since the last reset or
// arm cycle.
func (c *Core) FiredSticky() bool { return c.firedSticky }

// Faulted reports whether the machine is in HARDFAULT.
func (c *Core) Faulted() bool { return c.state == StateHardFault }

// Alarm reports whether any input required clamping on the last evaluated tick.
func (c *Core) Alarm() bool { return c.alarm }

// Timer returns the countdown value. Meaningful only in FIRING and COOLING.
func (c *Core) Timer() uint16 { return c.timer }

// EffectiveDuration returns the clamped duration latched at fire time.
func (c *Core) EffectiveDuration() uint16 { return c.effDuration }

// EffectiveCooldown returns the clamped cooldown latched at fire time.
func (c *Core) EffectiveCooldown() uint16 { return c.effCooldown }

func clampU16(v, lo, hi uint16) (uint16, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

func clampI16(v, lo, hi int16) (int16, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}
