//go:build !linux

package frontpanel

import "errors"

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pinArm, pinTrig, pinReset int) (*RealReader, error) {
	return nil, errors.New("frontpanel: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (Lines, error) {
	return Lines{}, errors.New("frontpanel: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
