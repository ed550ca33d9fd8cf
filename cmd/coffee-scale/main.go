// Command coffee-scale reads the load cell, drives the display, and
// publishes weight and timer events to MQTT.
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

	"github.com/sweeney/coffee-scale/internal/config"
	"github.com/sweeney/coffee-scale/internal/display"
	"github.com/sweeney/coffee-scale/internal/gpio"
	"github.com/sweeney/coffee-scale/internal/hx711"
	"github.com/sweeney/coffee-scale/internal/mqtt"
	"github.com/sweeney/coffee-scale/internal/scale"
	"github.com/sweeney/coffee-scale/internal/status"
	"github.com/sweeney/coffee-scale/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/coffee-scale.yaml", "Path to YAML configuration")
	printWeight := flag.Bool("print-weight", false, "Print one weight reading and exit")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config, \"off\" disables)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: load config: %v", err)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if *httpAddr == "off" {
		cfg.HTTP.Addr = ""
	} else if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}

	if err := run(cfg, *printWeight); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, printWeight bool) error {
	// Initialize the load cell
	sensor, err := hx711.NewRealSensor(cfg.Pins.Chip, cfg.Pins.SensorClock, cfg.Pins.SensorData,
		cfg.Sensor.Gain, cfg.Sensor.Calibration)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensor.Close()

	// Boot tare: whatever is on the platter at power-on reads as zero.
	if err := sensor.Tare(cfg.Sensor.TareSamples); err != nil {
		return fmt.Errorf("boot tare: %w", err)
	}

	// Print weight mode
	if printWeight {
		grams, err := sensor.ReadGrams(cfg.Sensor.Samples)
		if err != nil {
			return fmt.Errorf("read weight: %w", err)
		}
		fmt.Printf("%.1f g (raw %d)\n", scale.Quantize(grams), sensor.LastRaw())
		return nil
	}

	// Initialize buttons and buzzer
	buttons, err := gpio.NewRealButtons(cfg.Pins.Chip, cfg.Pins.Tare, cfg.Pins.Mode)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	buzzer, err := gpio.NewRealBuzzer(cfg.Pins.Chip, cfg.Pins.Buzzer)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer buzzer.Close()

	// The display head is required hardware; refusing to start beats running
	// a scale nobody can read.
	disp, err := display.NewSerialDisplay(cfg.Display.Port, cfg.Display.Baud)
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	defer disp.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
	if err != nil {
		return fmt.Errorf("connect mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Ticks.Awake.Milliseconds(),
		SleepPollMs: cfg.Ticks.Asleep.Milliseconds(),
		DebounceMs:  cfg.Buttons.Debounce.Milliseconds(),
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		DisplayPort: cfg.Display.Port,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
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

	log.Printf("started: tick=%v broker=%s display=%s heartbeat=%v",
		cfg.Ticks.Awake, cfg.MQTT.Broker, cfg.Display.Port, cfg.MQTT.Heartbeat)

	ticker := time.NewTicker(cfg.Ticks.Awake)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deps := loopDeps{
		sensor:     sensor,
		buttons:    buttons,
		buzzer:     buzzer,
		display:    disp,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
	}
	params := loopParams{
		scaleCfg:    cfg.ScaleConfig(),
		samples:     cfg.Sensor.Samples,
		tareSamples: cfg.Sensor.TareSamples,
		heartbeat:   cfg.MQTT.Heartbeat,
		awakeTick:   cfg.Ticks.Awake,
		asleepTick:  cfg.Ticks.Asleep,
	}
	return runLoop(deps, params, time.Now, ticker.C, ticker.Reset, sigCh)
}

// loopDeps bundles the hardware and transport collaborators for runLoop.
// All fields are interfaces so tests can substitute fakes.
type loopDeps struct {
	sensor     hx711.Sensor
	buttons    gpio.Buttons
	buzzer     gpio.Buzzer
	display    display.Display
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
}

// loopParams bundles the tick loop tuning.
type loopParams struct {
	scaleCfg    scale.Config
	samples     int
	tareSamples int
	heartbeat   time.Duration
	awakeTick   time.Duration
	asleepTick  time.Duration
}

// beepDuration is the audible pulse length for button and timer feedback.
const beepDuration = 30 * time.Millisecond

func runLoop(deps loopDeps, params loopParams, now func() time.Time, tick <-chan time.Time, setInterval func(time.Duration), sig <-chan os.Signal) error {
	startTime := now()
	ctrl := scale.NewController(params.scaleCfg)
	lastHeartbeat := startTime

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
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if deps.tracker != nil {
				if deps.mqttStatus != nil {
					deps.tracker.SetMQTTConnected(deps.mqttStatus.IsConnected())
				}
				snap := deps.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := deps.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			tarePressed, modePressed, err := deps.buttons.Read()
			if err != nil {
				log.Printf("button read error: %v", err)
				continue
			}

			raw := scale.RawSample{}
			if !ctrl.Asleep() {
				ready, err := deps.sensor.Ready()
				if err != nil {
					log.Printf("sensor ready error: %v", err)
					continue
				}
				if ready {
					grams, err := deps.sensor.ReadGrams(params.samples)
					if err != nil {
						log.Printf("sensor read error: %v", err)
						continue
					}
					raw = scale.RawSample{Ready: true, Grams: grams, Counts: deps.sensor.LastRaw()}
				}
			}

			out := ctrl.Step(scale.Input{
				Raw:         raw,
				TarePressed: tarePressed,
				ModePressed: modePressed,
				Now:         t,
			})

			applyActions(deps, params, out.Actions, setInterval)

			for _, event := range out.Events {
				log.Printf("event: %s (mode=%s grams=%.1f)", event.Type, event.Mode, event.Grams)
				if err := deps.publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if !out.Asleep {
				if err := deps.display.Render(out.Frame); err != nil {
					log.Printf("display render error: %v", err)
				}
			}

			// Update status tracker for HTTP and MQTT consumers
			if deps.tracker != nil {
				ts := ctrl.TimerSnapshot()
				deps.tracker.Update(ctrl.Mode(), ctrl.Shown(), ts.Running, ts.Elapsed,
					ctrl.Asleep(), ctrl.Counts())
				if deps.mqttStatus != nil {
					deps.tracker.SetMQTTConnected(deps.mqttStatus.IsConnected())
				}
			}

			// Heartbeat
			if params.heartbeat > 0 && t.Sub(lastHeartbeat) >= params.heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if deps.tracker != nil {
					snap := deps.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				counts := ctrl.Counts()
				log.Printf("heartbeat: uptime=%v tares=%d mode_changes=%d timer_starts=%d timer_stops=%d",
					t.Sub(startTime).Truncate(time.Second), counts.Tares, counts.ModeChanges,
					counts.TimerStarts, counts.TimerStops)
				if err := deps.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// applyActions carries out the side effects the controller requested.
func applyActions(deps loopDeps, params loopParams, a scale.Actions, setInterval func(time.Duration)) {
	if a.EnteredSleep {
		if err := deps.display.SetPower(false); err != nil {
			log.Printf("display power off error: %v", err)
		}
		if err := deps.sensor.PowerDown(); err != nil {
			log.Printf("sensor power down error: %v", err)
		}
		if setInterval != nil {
			setInterval(params.asleepTick)
		}
	}
	if a.ExitedSleep {
		if err := deps.sensor.PowerUp(); err != nil {
			log.Printf("sensor power up error: %v", err)
		}
		if err := deps.display.SetPower(true); err != nil {
			log.Printf("display power on error: %v", err)
		}
		if setInterval != nil {
			setInterval(params.awakeTick)
		}
	}

	// Tare runs after any wake so the amplifier is powered when it samples.
	if a.Tare {
		if err := deps.sensor.Tare(params.tareSamples); err != nil {
			log.Printf("tare error: %v", err)
		}
	}

	if a.Beep {
		if err := deps.buzzer.Beep(beepDuration); err != nil {
			log.Printf("beep error: %v", err)
		}
	}
}
