package probe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sealablab/probe-driver/internal/core"
)

// fileSpec is the YAML shape of a probe table file.
type fileSpec struct {
	Probes []probeSpec `yaml:"probes"`
}

type probeSpec struct {
	Name           string        `yaml:"name"`
	TriggerVoltage int16         `yaml:"trigger_voltage"`
	DurationMin    uint16        `yaml:"duration_min"`
	DurationMax    uint16        `yaml:"duration_max"`
	IntensityMin   int16         `yaml:"intensity_min"`
	IntensityMax   int16         `yaml:"intensity_max"`
	CooldownMin    uint16        `yaml:"cooldown_min"`
	CooldownMax    uint16        `yaml:"cooldown_max"`
	Intensity      intensitySpec `yaml:"intensity"`
}

// intensitySpec selects the probe's lookup table: either all 128 values
// listed explicitly, or a linear ramp between two endpoints. When both are
// omitted the table defaults to a ramp from 0 to intensity_max.
type intensitySpec struct {
	Values []int16   `yaml:"values,omitempty"`
	Ramp   *rampSpec `yaml:"ramp,omitempty"`
}

type rampSpec struct {
	From int16 `yaml:"from"`
	To   int16 `yaml:"to"`
}

// Default returns the built-in probe table: a single general-purpose probe
// with a conservative envelope.
func Default() *Table {
	t, err := NewTable([]Entry{
		{
			Name: "default",
			Config: core.ProbeConfig{
				TriggerVoltage: 3300,
				DurationMin:    1,
				DurationMax:    10000,
				IntensityMin:   0,
				IntensityMax:   5000,
				CooldownMin:    1,
				CooldownMax:    60000,
				Intensity:      Ramp(0, 5000),
			},
		},
	})
	if err != nil {
		// The built-in table is statically correct.
		panic(err)
	}
	return t
}

// Load loads a probe table from a YAML file. If the file doesn't exist, the
// built-in default table is returned.
func Load(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read probe table: %w", err)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse probe table: %w", err)
	}

	entries := make([]Entry, 0, len(spec.Probes))
	for i, p := range spec.Probes {
		table, err := p.Intensity.build(p.IntensityMax)
		if err != nil {
			return nil, fmt.Errorf("probe %d (%s): %w", i, p.Name, err)
		}
		entries = append(entries, Entry{
			Name: p.Name,
			Config: core.ProbeConfig{
				TriggerVoltage: p.TriggerVoltage,
				DurationMin:    p.DurationMin,
				DurationMax:    p.DurationMax,
				IntensityMin:   p.IntensityMin,
				IntensityMax:   p.IntensityMax,
				CooldownMin:    p.CooldownMin,
				CooldownMax:    p.CooldownMax,
				Intensity:      table,
			},
		})
	}

	return NewTable(entries)
}

func (s intensitySpec) build(intensityMax int16) (*IntensityTable, error) {
	switch {
	case len(s.Values) > 0 && s.Ramp != nil:
		return nil, fmt.Errorf("intensity: values and ramp are mutually exclusive")
	case len(s.Values) > 0:
		if len(s.Values) != core.IntensityIndexLimit {
			return nil, fmt.Errorf("intensity: expected %d values, got %d", core.IntensityIndexLimit, len(s.Values))
		}
		var t IntensityTable
		copy(t[:], s.Values)
		return &t, nil
	case s.Ramp != nil:
		return Ramp(s.Ramp.From, s.Ramp.To), nil
	default:
		return Ramp(0, intensityMax), nil
	}
}
