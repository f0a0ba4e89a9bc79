// Package probe holds the static probe configuration table and the
// percent-based intensity lookup tables. Both are read-only reference data:
// built once at startup, validated there, and never mutated afterwards, so
// they need no locking.
package probe

import (
	"fmt"

	"github.com/sealablab/probe-driver/internal/core"
)

// IntensityTable maps a 7-bit percent index to a signed DAC voltage code.
type IntensityTable [core.IntensityIndexLimit]int16

// Lookup returns the voltage code for the given index. The index must be
// < core.IntensityIndexLimit; the core validates this before calling.
func (t *IntensityTable) Lookup(index uint8) int16 {
	return t[index]
}

// Ramp builds a table linearly interpolated from `from` at index 0 to `to`
// at index 127.
func Ramp(from, to int16) *IntensityTable {
	var t IntensityTable
	span := int32(to) - int32(from)
	for i := range t {
		t[i] = from + int16(span*int32(i)/int32(len(t)-1))
	}
	return &t
}

// Entry is one named probe in the table.
type Entry struct {
	Name   string
	Config core.ProbeConfig
}

// Table is an indexed, immutable set of probe configurations. It implements
// core.ConfigTable.
type Table struct {
	entries []Entry
}

// NewTable validates the entries and builds a table. Violated bound
// invariants are a configuration-time fault, so they fail here rather than
// at runtime.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("probe table is empty")
	}
	if len(entries) > 256 {
		return nil, fmt.Errorf("probe table has %d entries, max 256", len(entries))
	}
	for i, e := range entries {
		cfg := e.Config
		if cfg.DurationMin > cfg.DurationMax {
			return nil, fmt.Errorf("probe %d (%s): duration_min %d > duration_max %d", i, e.Name, cfg.DurationMin, cfg.DurationMax)
		}
		if cfg.CooldownMin > cfg.CooldownMax {
			return nil, fmt.Errorf("probe %d (%s): cooldown_min %d > cooldown_max %d", i, e.Name, cfg.CooldownMin, cfg.CooldownMax)
		}
		if cfg.IntensityMin > cfg.IntensityMax {
			return nil, fmt.Errorf("probe %d (%s): intensity_min %d > intensity_max %d", i, e.Name, cfg.IntensityMin, cfg.IntensityMax)
		}
		if cfg.Intensity == nil {
			return nil, fmt.Errorf("probe %d (%s): no intensity table", i, e.Name)
		}
	}
	return &Table{entries: entries}, nil
}

// Lookup returns the configuration for the given probe index.
func (t *Table) Lookup(index uint8) (core.ProbeConfig, bool) {
	if int(index) >= len(t.entries) {
		return core.ProbeConfig{}, false
	}
	return t.entries[index].Config, true
}

// Valid reports whether the index addresses an existing probe.
func (t *Table) Valid(index uint8) bool {
	return int(index) < len(t.entries)
}

// Name returns the probe's display name, or "" for an invalid index.
func (t *Table) Name(index uint8) string {
	if int(index) >= len(t.entries) {
		return ""
	}
	return t.entries[index].Name
}

// Len returns the number of probes in the table.
func (t *Table) Len() int {
	return len(t.entries)
}
