// Command probe-driver runs the probe firing state machine against front-panel
// GPIO inputs, drives the DAC outputs, and publishes transitions to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sealablab/probe-driver/internal/clockdiv"
	"github.com/sealablab/probe-driver/internal/config"
	"github.com/sealablab/probe-driver/internal/core"
	"github.com/sealablab/probe-driver/internal/dac"
	"github.com/sealablab/probe-driver/internal/frontpanel"
	"github.com/sealablab/probe-driver/internal/probe"
	"github.com/sealablab/probe-driver/internal/status"
	"github.com/sealablab/probe-driver/internal/telemetry"
	"github.com/sealablab/probe-driver/internal/volts"
	"github.com/sealablab/probe-driver/internal/web"
)

func main() {
	configFile := flag.String("config", "/etc/probe-driver/config.yaml", "Configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config; \"off\" disables)")
	serialPort := flag.String("serial", "", "DAC serial port (overrides config; \"off\" disables)")
	probeFile := flag.String("probes", "", "Probe definition file (overrides config)")
	printState := flag.Bool("print-state", false, "Print current panel line state and exit")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverrides(cfg, *broker, *httpAddr, *serialPort, *probeFile)

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverrides lets command-line flags win over the config file. The
// sentinel "off" clears an address that the config file set.
func applyOverrides(cfg *config.Config, broker, httpAddr, serialPort, probeFile string) {
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if httpAddr == "off" {
		cfg.HTTP.Addr = ""
	} else if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if serialPort == "off" {
		cfg.DAC.Port = ""
	} else if serialPort != "" {
		cfg.DAC.Port = serialPort
	}
	if probeFile != "" {
		cfg.Probes.File = probeFile
	}
}

func run(cfg *config.Config, printState bool) error {
	// Initialize front panel GPIO
	panel, err := frontpanel.NewRealReader(cfg.Panel.PinArm, cfg.Panel.PinTrig, cfg.Panel.PinReset)
	if err != nil {
		return fmt.Errorf("init front panel: %w", err)
	}
	defer panel.Close()

	// Print state mode
	if printState {
		lines, err := panel.Read()
		if err != nil {
			return fmt.Errorf("read front panel: %w", err)
		}
		fmt.Printf("ARM: %s, TRIG: %s, RESET: %s\n",
			lineString(lines.Arm), lineString(lines.Trig), lineString(lines.Reset))
		return nil
	}

	// Load probe table
	table, err := probe.Load(cfg.Probes.File)
	if err != nil {
		return fmt.Errorf("load probe table: %w", err)
	}
	log.Printf("loaded %d probe(s)", table.Len())

	machine := core.New(table)

	// Initialize DAC output
	var out dac.Writer
	if cfg.DAC.Port != "" {
		sw, err := dac.NewSerialWriter(cfg.DAC.Port, cfg.DAC.BaudRate, volts.Scale{FullScale: cfg.DAC.FullScaleV})
		if err != nil {
			return fmt.Errorf("init dac: %w", err)
		}
		out = sw
		log.Printf("dac output on %s @ %d baud", cfg.DAC.Port, cfg.DAC.BaudRate)
	} else {
		out = dac.Nop{}
		log.Printf("dac output disabled")
	}
	defer out.Close()

	// Initialize MQTT
	publisher, err := telemetry.NewRealPublisher(cfg.MQTT.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickUs:      cfg.Clock.TickUs,
		Divisor:     cfg.Clock.Divisor,
		HeartbeatMs: cfg.MQTT.HeartbeatMs,
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		SerialPort:  cfg.DAC.Port,
		ProbeFile:   cfg.Probes.File,
	})
	tracker.SetProbe(cfg.Fire.ProbeIndex, table.Name(cfg.Fire.ProbeIndex))

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := telemetry.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	tickPeriod := time.Duration(cfg.Clock.TickUs) * time.Microsecond
	heartbeat := time.Duration(cfg.MQTT.HeartbeatMs) * time.Millisecond
	log.Printf("started: tick=%v divisor=%d broker=%s heartbeat=%v",
		tickPeriod, cfg.Clock.Divisor, cfg.MQTT.Broker, heartbeat)

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	divider := clockdiv.New(cfg.Clock.Divisor)
	return runLoop(panel, out, publisher, publisher, tracker, machine, table, divider,
		cfg.Fire, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(panel frontpanel.Reader, out dac.Writer, publisher telemetry.Publisher,
	connStatus telemetry.ConnectionStatus, tracker *status.Tracker, machine *core.Core,
	table *probe.Table, divider *clockdiv.Divider, fire config.FireConfig,
	heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	var (
		counts    status.Counts
		prevState = machine.State()
		prevOut   core.Outputs
		prevAlarm bool
		lastBeat  = now()
	)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := telemetry.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if connStatus != nil {
					tracker.SetMQTTConnected(connStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			lines, err := panel.Read()
			if err != nil {
				log.Printf("front panel read error: %v", err)
				continue
			}

			enabled := divider.Strobe()
			outs := machine.Tick(core.Inputs{
				Reset:          lines.Reset,
				ArmEnable:      lines.Arm,
				TrigIn:         lines.Trig,
				TickEnable:     enabled,
				ProbeIndex:     fire.ProbeIndex,
				IntensityIndex: fire.IntensityIndex,
				Duration:       fire.DurationTicks,
				Cooldown:       fire.CooldownTicks,
			})
			if enabled {
				counts.Ticks++
			}

			if outs.TriggerOut != prevOut.TriggerOut || outs.IntensityOut != prevOut.IntensityOut {
				if err := out.Write(outs.TriggerOut, outs.IntensityOut); err != nil {
					log.Printf("dac write error: %v", err)
					// Don't crash on output failure
				}
			}
			prevOut = outs

			state := machine.State()
			if state != prevState {
				if state == core.StateFiring {
					counts.Fires++
				}
				if state == core.StateHardFault {
					counts.Faults++
				}
				if evType, ok := transitionEvent(prevState, state); ok {
					event := telemetry.Event{
						Timestamp:    t,
						Type:         evType,
						State:        state.String(),
						Probe:        machine.SelectedProbe(),
						Status:       outs.Status,
						TriggerOut:   outs.TriggerOut,
						IntensityOut: outs.IntensityOut,
					}
					log.Printf("event: %s (probe=%d status=0x%02X)", evType, event.Probe, event.Status)
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
				prevState = state
			}
			// Count each onset of the clamp alarm, not every tick it holds.
			if machine.Alarm() && !prevAlarm {
				counts.Alarms++
			}
			prevAlarm = machine.Alarm()

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastBeat) >= heartbeat {
				lastBeat = t
				hbEvent := telemetry.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if connStatus != nil {
						tracker.SetMQTTConnected(connStatus.IsConnected())
					}
					tracker.Update(state.String(), outs.Status, outs.TriggerOut, outs.IntensityOut, counts)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				log.Printf("heartbeat: state=%s fires=%d faults=%d ticks=%d",
					state, counts.Fires, counts.Faults, counts.Ticks)
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.SetProbe(machine.SelectedProbe(), table.Name(machine.SelectedProbe()))
				tracker.Update(state.String(), outs.Status, outs.TriggerOut, outs.IntensityOut, counts)
				if connStatus != nil {
					tracker.SetMQTTConnected(connStatus.IsConnected())
				}
			}
		}
	}
}

// transitionEvent maps a state change to the telemetry event it should emit.
func transitionEvent(from, to core.State) (telemetry.EventType, bool) {
	switch to {
	case core.StateArmed:
		if from == core.StateCooling {
			// Re-arm after cooldown is part of the same firing cycle.
			return "", false
		}
		return telemetry.EventArmed, true
	case core.StateFiring:
		return telemetry.EventFired, true
	case core.StateCooling:
		return telemetry.EventCooling, true
	case core.StateIdle:
		if from == core.StateHardFault {
			// Reset out of a fault; not a disarm.
			return "", false
		}
		return telemetry.EventDisarmed, true
	case core.StateHardFault:
		return telemetry.EventFault, true
	}
	return "", false
}

func lineString(on bool) string {
	if on {
		return "HIGH"
	}
	return "LOW"
}
