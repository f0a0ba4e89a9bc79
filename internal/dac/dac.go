// Package dac drives the analog output stage. The real implementation talks
// to the DAC MCU over a serial line; the fake implementation records writes
// for test assertions.
package dac

// Writer drives the trigger and intensity outputs. Values are signed 16-bit
// DAC codes straight from the firing core.
type Writer interface {
	// Write drives both outputs. Returns an error if the hardware write
	// fails (should not crash the process).
	Write(triggerOut, intensityOut int16) error

	// Close releases the output stage, leaving both outputs at zero.
	Close() error
}

// Nop is a Writer that discards all output. Used when no DAC is attached
// (bench runs against the status page only).
type Nop struct{}

// Write discards the values.
func (Nop) Write(triggerOut, intensityOut int16) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
