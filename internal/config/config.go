// Package config loads the scale daemon's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/coffee-scale/internal/gpio"
	"github.com/sweeney/coffee-scale/internal/hx711"
	"github.com/sweeney/coffee-scale/internal/scale"
)

// Config represents the application configuration.
type Config struct {
	Filter      FilterConfig  `yaml:"filter"`
	Buttons     ButtonsConfig `yaml:"buttons"`
	Timer       TimerConfig   `yaml:"timer"`
	Ticks       TicksConfig   `yaml:"ticks"`
	Pins        PinsConfig    `yaml:"pins"`
	Sensor      SensorConfig  `yaml:"sensor"`
	Display     DisplayConfig `yaml:"display"`
	MQTT        MQTTConfig    `yaml:"mqtt"`
	HTTP        HTTPConfig    `yaml:"http"`
	InitialMode string        `yaml:"initial_mode"`
}

// FilterConfig tunes the weight smoothing pipeline. Bands and clamps are in
// grams; coefficients are the EMA weight given to the previous value.
type FilterConfig struct {
	Snap         float64 `yaml:"snap"`
	FastBand     float64 `yaml:"fast_band"`
	MediumBand   float64 `yaml:"medium_band"`
	FastCoeff    float64 `yaml:"fast_coeff"`
	MediumCoeff  float64 `yaml:"medium_coeff"`
	SlowCoeff    float64 `yaml:"slow_coeff"`
	Hysteresis   float64 `yaml:"hysteresis"`
	ZeroClampPos float64 `yaml:"zero_clamp_pos"`
	ZeroClampNeg float64 `yaml:"zero_clamp_neg"`
}

// ButtonsConfig tunes button edge handling.
type ButtonsConfig struct {
	Debounce  time.Duration `yaml:"debounce"`
	LongPress time.Duration `yaml:"long_press"`
}

// TimerConfig tunes the weight-driven stopwatch.
type TimerConfig struct {
	StartThreshold float64       `yaml:"start_threshold"`
	RearmThreshold float64       `yaml:"rearm_threshold"`
	MinFlowDelta   float64       `yaml:"min_flow_delta"`
	StallTimeout   time.Duration `yaml:"stall_timeout"`
}

// TicksConfig sets the main loop cadence.
type TicksConfig struct {
	Awake  time.Duration `yaml:"awake"`
	Asleep time.Duration `yaml:"asleep"`
}

// PinsConfig contains GPIO wiring (BCM numbering).
type PinsConfig struct {
	Chip        string `yaml:"chip"`
	SensorClock int    `yaml:"sensor_clock"`
	SensorData  int    `yaml:"sensor_data"`
	Tare        int    `yaml:"tare"`
	Mode        int    `yaml:"mode"`
	Buzzer      int    `yaml:"buzzer"`
}

// SensorConfig contains load-cell amplifier parameters.
type SensorConfig struct {
	Samples     int     `yaml:"samples"`     // conversions averaged per reading
	TareSamples int     `yaml:"tare_samples"`
	Calibration float64 `yaml:"calibration"` // ADC counts per gram
	Gain        int     `yaml:"gain"`        // 1=A/128, 2=B/32, 3=A/64
}

// DisplayConfig contains display head serial parameters.
type DisplayConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// MQTTConfig contains broker connection parameters.
type MQTTConfig struct {
	Broker    string        `yaml:"broker"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// HTTPConfig contains the status page listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	fc := scale.DefaultFilterConfig()
	bc := scale.DefaultButtonConfig()
	tc := scale.DefaultTimerConfig()

	return &Config{
		Filter: FilterConfig{
			Snap:         fc.Snap,
			FastBand:     fc.FastBand,
			MediumBand:   fc.MediumBand,
			FastCoeff:    fc.FastCoeff,
			MediumCoeff:  fc.MediumCoeff,
			SlowCoeff:    fc.SlowCoeff,
			Hysteresis:   fc.Hysteresis,
			ZeroClampPos: fc.ZeroClampPos,
			ZeroClampNeg: fc.ZeroClampNeg,
		},
		Buttons: ButtonsConfig{
			Debounce:  bc.Debounce,
			LongPress: bc.LongPress,
		},
		Timer: TimerConfig{
			StartThreshold: tc.StartThreshold,
			RearmThreshold: tc.RearmThreshold,
			MinFlowDelta:   tc.MinFlowDelta,
			StallTimeout:   tc.StallTimeout,
		},
		Ticks: TicksConfig{
			Awake:  30 * time.Millisecond,
			Asleep: 300 * time.Millisecond,
		},
		Pins: PinsConfig{
			Chip:        "gpiochip0",
			SensorClock: hx711.DefaultPinClock,
			SensorData:  hx711.DefaultPinData,
			Tare:        gpio.DefaultPinTare,
			Mode:        gpio.DefaultPinMode,
			Buzzer:      gpio.DefaultPinBuzzer,
		},
		Sensor: SensorConfig{
			Samples:     1,
			TareSamples: 8,
			Calibration: 420.0,
			Gain:        hx711.GainA128,
		},
		Display: DisplayConfig{
			Port: "/dev/ttyAMA0",
			Baud: 115200,
		},
		MQTT: MQTTConfig{
			Broker:    "tcp://localhost:1883",
			Heartbeat: 60 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		InitialMode: "pour",
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

	if _, err := cfg.initialMode(); err != nil {
		return nil, err
	}

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

	if c.Filter.Snap == 0 {
		c.Filter.Snap = def.Filter.Snap
	}
	if c.Filter.FastBand == 0 {
		c.Filter.FastBand = def.Filter.FastBand
	}
	if c.Filter.MediumBand == 0 {
		c.Filter.MediumBand = def.Filter.MediumBand
	}
	if c.Filter.FastCoeff == 0 {
		c.Filter.FastCoeff = def.Filter.FastCoeff
	}
	if c.Filter.MediumCoeff == 0 {
		c.Filter.MediumCoeff = def.Filter.MediumCoeff
	}
	if c.Filter.SlowCoeff == 0 {
		c.Filter.SlowCoeff = def.Filter.SlowCoeff
	}
	if c.Filter.Hysteresis == 0 {
		c.Filter.Hysteresis = def.Filter.Hysteresis
	}
	if c.Filter.ZeroClampPos == 0 {
		c.Filter.ZeroClampPos = def.Filter.ZeroClampPos
	}
	if c.Filter.ZeroClampNeg == 0 {
		c.Filter.ZeroClampNeg = def.Filter.ZeroClampNeg
	}

	if c.Buttons.Debounce == 0 {
		c.Buttons.Debounce = def.Buttons.Debounce
	}
	if c.Buttons.LongPress == 0 {
		c.Buttons.LongPress = def.Buttons.LongPress
	}

	if c.Timer.StartThreshold == 0 {
		c.Timer.StartThreshold = def.Timer.StartThreshold
	}
	if c.Timer.RearmThreshold == 0 {
		c.Timer.RearmThreshold = def.Timer.RearmThreshold
	}
	if c.Timer.MinFlowDelta == 0 {
		c.Timer.MinFlowDelta = def.Timer.MinFlowDelta
	}
	if c.Timer.StallTimeout == 0 {
		c.Timer.StallTimeout = def.Timer.StallTimeout
	}

	if c.Ticks.Awake == 0 {
		c.Ticks.Awake = def.Ticks.Awake
	}
	if c.Ticks.Asleep == 0 {
		c.Ticks.Asleep = def.Ticks.Asleep
	}

	if c.Pins.Chip == "" {
		c.Pins.Chip = def.Pins.Chip
	}
	if c.Pins.SensorClock == 0 {
		c.Pins.SensorClock = def.Pins.SensorClock
	}
	if c.Pins.SensorData == 0 {
		c.Pins.SensorData = def.Pins.SensorData
	}
	if c.Pins.Tare == 0 {
		c.Pins.Tare = def.Pins.Tare
	}
	if c.Pins.Mode == 0 {
		c.Pins.Mode = def.Pins.Mode
	}
	if c.Pins.Buzzer == 0 {
		c.Pins.Buzzer = def.Pins.Buzzer
	}

	if c.Sensor.Samples == 0 {
		c.Sensor.Samples = def.Sensor.Samples
	}
	if c.Sensor.TareSamples == 0 {
		c.Sensor.TareSamples = def.Sensor.TareSamples
	}
	if c.Sensor.Calibration == 0 {
		c.Sensor.Calibration = def.Sensor.Calibration
	}
	if c.Sensor.Gain == 0 {
		c.Sensor.Gain = def.Sensor.Gain
	}

	if c.Display.Port == "" {
		c.Display.Port = def.Display.Port
	}
	if c.Display.Baud == 0 {
		c.Display.Baud = def.Display.Baud
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.Heartbeat == 0 {
		c.MQTT.Heartbeat = def.MQTT.Heartbeat
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}

	if c.InitialMode == "" {
		c.InitialMode = def.InitialMode
	}
}

// initialMode parses the initial_mode field.
func (c *Config) initialMode() (scale.Mode, error) {
	switch strings.ToLower(c.InitialMode) {
	case "pour":
		return scale.ModePour, nil
	case "shot":
		return scale.ModeShot, nil
	case "kitchen":
		return scale.ModeKitchen, nil
	default:
		return 0, fmt.Errorf("invalid initial_mode %q (want pour, shot or kitchen)", c.InitialMode)
	}
}

// ScaleConfig converts the tuning sections into the measurement core's
// configuration. Load has already validated initial_mode.
func (c *Config) ScaleConfig() scale.Config {
	mode, err := c.initialMode()
	if err != nil {
		mode = scale.ModePour
	}

	return scale.Config{
		Filter: scale.FilterConfig{
			Snap:         c.Filter.Snap,
			FastBand:     c.Filter.FastBand,
			MediumBand:   c.Filter.MediumBand,
			FastCoeff:    c.Filter.FastCoeff,
			MediumCoeff:  c.Filter.MediumCoeff,
			SlowCoeff:    c.Filter.SlowCoeff,
			Hysteresis:   c.Filter.Hysteresis,
			ZeroClampPos: c.Filter.ZeroClampPos,
			ZeroClampNeg: c.Filter.ZeroClampNeg,
		},
		Button: scale.ButtonConfig{
			Debounce:  c.Buttons.Debounce,
			LongPress: c.Buttons.LongPress,
		},
		Timer: scale.TimerConfig{
			StartThreshold: c.Timer.StartThreshold,
			RearmThreshold: c.Timer.RearmThreshold,
			MinFlowDelta:   c.Timer.MinFlowDelta,
			StallTimeout:   c.Timer.StallTimeout,
		},
		InitialMode: mode,
	}
}
