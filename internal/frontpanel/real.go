//go:build linux

package frontpanel

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the control lines from actual hardware using the Linux
// GPIO character device.
type RealReader struct {
	chip      *gpiocdev.Chip
	armLine   *gpiocdev.Line
	trigLine  *gpiocdev.Line
	resetLine *gpiocdev.Line
}

// NewRealReader requests the three control lines as inputs with pull-down,
// so a disconnected panel reads as disarmed, untriggered and not in reset.
func NewRealReader(pinArm, pinTrig, pinReset int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	armLine, err := chip.RequestLine(pinArm, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request arm pin %d: %w", pinArm, err)
	}

	trigLine, err := chip.RequestLine(pinTrig, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		armLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request trigger pin %d: %w", pinTrig, err)
	}

	resetLine, err := chip.RequestLine(pinReset, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		trigLine.Close()
		armLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request reset pin %d: %w", pinReset, err)
	}

	return &RealReader{
		chip:      chip,
		armLine:   armLine,
		trigLine:  trigLine,
		resetLine: resetLine,
	}, nil
}

// Read returns the logical states of the control lines. All three are
// active high.
func (r *RealReader) Read() (Lines, error) {
	arm, err := r.armLine.Value()
	if err != nil {
		return Lines{}, fmt.Errorf("read arm pin: %w", err)
	}

	trig, err := r.trigLine.Value()
	if err != nil {
		return Lines{}, fmt.Errorf("read trigger pin: %w", err)
	}

	reset, err := r.resetLine.Value()
	if err != nil {
		return Lines{}, fmt.Errorf("read reset pin: %w", err)
	}

	return Lines{
		Arm:   arm != 0,
		Trig:  trig != 0,
		Reset: reset != 0,
	}, nil
}

// Close releases GPIO resources. Pins are reconfigured to input with
// pull-down before closing so the panel reads safe on the next boot.
func (r *RealReader) Close() error {
	var errs []error

	lines := []struct {
		name string
		line *gpiocdev.Line
	}{
		{"arm", r.armLine},
		{"trigger", r.trigLine},
		{"reset", r.resetLine},
	}
	for _, l := range lines {
		if l.line == nil {
			continue
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
