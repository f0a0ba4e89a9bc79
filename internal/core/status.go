package core

// Status word bit assignments.
const (
	StatusArmed   uint8 = 1 << 0
	StatusFiring  uint8 = 1 << 1
	StatusFired   uint8 = 1 << 2
	StatusCooling uint8 = 1 << 3
	StatusAlarm   uint8 = 1 << 6
	StatusFault   uint8 = 1 << 7
)

// Status encodes the current flags and state into the 8-bit status word.
// It is a pure function of the machine state, recomputed on demand, with no
// memory of its own. Bits 5-4 are reserved and always zero.
//
// The armed bit tracks the FSM state, not the raw arm input: it is set while
// the machine is armed, firing or cooling.
func (c *Core) Status() uint8 {
	var s uint8
	switch c.state {
	case StateArmed:
		s |= StatusArmed
	case StateFiring:
		s |= StatusArmed | StatusFiring
	case StateCooling:
		s |= StatusArmed | StatusCooling
	case StateHardFault:
		s |= StatusFault
	}
	if c.firedSticky {
		s |= StatusFired
	}
	if c.alarm {
		s |= StatusAlarm
	}
	return s
}
