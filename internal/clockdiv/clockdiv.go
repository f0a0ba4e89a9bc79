// Package clockdiv provides the tick-enable source for the firing core: a
// divider that asserts its strobe on every Nth clock cycle.
package clockdiv

// Divider produces a periodic enable pulse at a configurable sub-multiple of
// the host clock. Not safe for concurrent use; the run loop is its only
// caller.
type Divider struct {
	divisor uint32
	count   uint32
}

// New creates a divider with the given divisor. A divisor of 0 or 1 passes
// every cycle through.
func New(divisor uint32) *Divider {
	if divisor == 0 {
		divisor = 1
	}
	return &Divider{divisor: divisor}
}

// Strobe advances the divider by one host clock cycle and reports whether
// this cycle is an accepted tick. With divisor N, exactly one in every N
// calls returns true, the Nth.
func (d *Divider) Strobe() bool {
	d.count++
	if d.count >= d.divisor {
		d.count = 0
		return true
	}
	return false
}

// Reset restarts the divider's cycle count.
func (d *Divider) Reset() {
	d.count = 0
}

// Divisor returns the configured divisor.
func (d *Divider) Divisor() uint32 {
	return d.divisor
}
