// Package frontpanel reads the host control lines (arm switch, trigger
// input, reset button) with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package frontpanel

// Lines is one sample of the control lines, already in logical form.
type Lines struct {
	Arm   bool // arm/enable switch
	Trig  bool // edge-sensitive trigger input
	Reset bool // reset button, active high
}

// Reader samples the control line states.
type Reader interface {
	// Read returns the logical states of the arm, trigger and reset lines.
	Read() (Lines, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinArm   = 26
	DefaultPinTrig  = 16
	DefaultPinReset = 13
)
