// Package volts converts between signed 16-bit DAC codes and physical
// voltages.
package volts

import "github.com/chewxy/math32"

// FullScaleCode is the DAC code corresponding to the positive full-scale
// voltage. The code range is symmetric: -FullScaleCode maps to the negative
// full scale.
const FullScaleCode = 32767

// Scale describes a bipolar DAC output stage.
type Scale struct {
	// FullScale is the output voltage, in volts, at code +32767.
	FullScale float32
}

// ToVolts converts a DAC code to volts.
func (s Scale) ToVolts(code int16) float32 {
	return float32(code) * s.FullScale / FullScaleCode
}

// ToMillivolts converts a DAC code to millivolts, rounded to the nearest
// integer.
func (s Scale) ToMillivolts(code int16) int32 {
	return int32(math32.Round(s.ToVolts(code) * 1000))
}

// ToCode converts a voltage to the nearest DAC code, saturating at the full
// scale bounds.
func (s Scale) ToCode(v float32) int16 {
	if s.FullScale == 0 {
		return 0
	}
	scaled := math32.Round(v / s.FullScale * FullScaleCode)
	if scaled > FullScaleCode {
		return FullScaleCode
	}
	if scaled < -FullScaleCode {
		return -FullScaleCode
	}
	return int16(scaled)
}
