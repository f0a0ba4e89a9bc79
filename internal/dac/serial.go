package dac

import (
	"fmt"
	"sync"

	"go.bug.st/serial"

	"github.com/sealablab/probe-driver/internal/volts"
)

// DefaultBaudRate is the standard baud rate for the DAC MCU.
const DefaultBaudRate = 115200

// SerialWriter drives a DAC MCU over a serial line. The protocol is
// line-oriented: each update is "trigger_mv,intensity_mv\n", both values in
// millivolts.
type SerialWriter struct {
	mu    sync.Mutex
	conn  serial.Port
	scale volts.Scale
}

// NewSerialWriter opens the serial port and zeroes both outputs.
func NewSerialWriter(port string, baudRate int, scale volts.Scale) (*SerialWriter, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}

	w := &SerialWriter{conn: conn, scale: scale}
	if err := w.Write(0, 0); err != nil {
		conn.Close()
		return nil, fmt.Errorf("zero outputs: %w", err)
	}
	return w, nil
}

// Write sends both output values to the MCU.
func (w *SerialWriter) Write(triggerOut, intensityOut int16) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("not connected")
	}

	cmd := formatCommand(w.scale, triggerOut, intensityOut)
	if _, err := w.conn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("write dac command: %w", err)
	}
	return nil
}

// Close zeroes the outputs and closes the port.
func (w *SerialWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}

	// Best effort: leave the probe unpowered.
	cmd := formatCommand(w.scale, 0, 0)
	w.conn.Write([]byte(cmd))

	err := w.conn.Close()
	w.conn = nil
	if err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	return nil
}

func formatCommand(scale volts.Scale, triggerOut, intensityOut int16) string {
	return fmt.Sprintf("%d,%d\n", scale.ToMillivolts(triggerOut), scale.ToMillivolts(intensityOut))
}
