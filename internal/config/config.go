// Package config loads the daemon configuration from a YAML file, falling
// back to defaults when the file or individual fields are missing.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sealablab/probe-driver/internal/dac"
	"github.com/sealablab/probe-driver/internal/frontpanel"
)

// Config represents the daemon configuration.
type Config struct {
	Clock  ClockConfig  `yaml:"clock"`
	Panel  PanelConfig  `yaml:"panel"`
	DAC    DACConfig    `yaml:"dac"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
	Probes ProbesConfig `yaml:"probes"`
	Fire   FireConfig   `yaml:"fire"`
}

// ClockConfig contains host tick generation parameters.
type ClockConfig struct {
	TickUs  int64  `yaml:"tick_us"` // host tick period in microseconds
	Divisor uint32 `yaml:"divisor"` // evaluate the state machine every Nth tick
}

// PanelConfig contains the front-panel GPIO line offsets.
type PanelConfig struct {
	PinArm   int `yaml:"pin_arm"`
	PinTrig  int `yaml:"pin_trig"`
	PinReset int `yaml:"pin_reset"`
}

// DACConfig contains the output MCU serial link parameters.
type DACConfig struct {
	Port       string  `yaml:"port"` // empty disables the DAC output
	BaudRate   int     `yaml:"baud_rate"`
	FullScaleV float32 `yaml:"full_scale_v"` // output voltage at code +32767
}

// MQTTConfig contains telemetry broker configuration.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	HeartbeatMs int64  `yaml:"heartbeat_ms"`
}

// HTTPConfig contains the status page listen address.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// ProbesConfig points at the probe definition file.
type ProbesConfig struct {
	File string `yaml:"file"` // empty uses the built-in default table
}

// FireConfig contains the requested firing parameters presented to the
// state machine on every evaluated tick.
type FireConfig struct {
	ProbeIndex     uint8  `yaml:"probe_index"`
	IntensityIndex uint8  `yaml:"intensity_index"`
	DurationTicks  uint16 `yaml:"duration_ticks"`
	CooldownTicks  uint16 `yaml:"cooldown_ticks"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Clock: ClockConfig{
			TickUs:  1000, // 1 kHz
			Divisor: 1,
		},
		Panel: PanelConfig{
			PinArm:   frontpanel.DefaultPinArm,
			PinTrig:  frontpanel.DefaultPinTrig,
			PinReset: frontpanel.DefaultPinReset,
		},
		DAC: DACConfig{
			Port:       "", // DAC disabled until a port is configured
			BaudRate:   dac.DefaultBaudRate,
			FullScaleV: 5.0,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://192.168.1.200:1883",
			HeartbeatMs: 900000, // 15 minutes
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
		Probes: ProbesConfig{
			File: "",
		},
		Fire: FireConfig{
			ProbeIndex:     0,
			IntensityIndex: 64,
			DurationTicks:  100,
			CooldownTicks:  1000,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Clock.TickUs == 0 {
		c.Clock.TickUs = def.Clock.TickUs
	}
	if c.Clock.Divisor == 0 {
		c.Clock.Divisor = def.Clock.Divisor
	}

	if c.Panel.PinArm == 0 {
		c.Panel.PinArm = def.Panel.PinArm
	}
	if c.Panel.PinTrig == 0 {
		c.Panel.PinTrig = def.Panel.PinTrig
	}
	if c.Panel.PinReset == 0 {
		c.Panel.PinReset = def.Panel.PinReset
	}

	if c.DAC.BaudRate == 0 {
		c.DAC.BaudRate = def.DAC.BaudRate
	}
	if c.DAC.FullScaleV == 0 {
		c.DAC.FullScaleV = def.DAC.FullScaleV
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.HeartbeatMs == 0 {
		c.MQTT.HeartbeatMs = def.MQTT.HeartbeatMs
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}

	if c.Fire.DurationTicks == 0 {
		c.Fire.DurationTicks = def.Fire.DurationTicks
	}
	if c.Fire.CooldownTicks == 0 {
		c.Fire.CooldownTicks = def.Fire.CooldownTicks
	}
}
