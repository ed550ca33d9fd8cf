//go:build linux

package hx711

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// readyTimeout bounds the wait for one conversion. The HX711 runs at 10
// samples per second in its slow mode, so 150ms per conversion is generous.
const readyTimeout = 150 * time.Millisecond

// RealSensor drives an HX711 over two GPIO lines: a clock output (PD_SCK)
// and a data input (DOUT).
type RealSensor struct {
	chip  *gpiocdev.Chip
	clock *gpiocdev.Line
	data  *gpiocdev.Line

	gainPulses  int
	calibration float64 // ADC counts per gram
	offset      int32   // counts at zero load
	lastRaw     int32
}

// NewRealSensor opens the GPIO lines and leaves the amplifier powered up.
// calibration is the counts-per-gram factor established at assembly time.
func NewRealSensor(chipName string, pinClock, pinData, gain int, calibration float64) (*RealSensor, error) {
	if calibration == 0 {
		return nil, fmt.Errorf("calibration factor must be non-zero")
	}
	if gain < GainA128 || gain > GainA64 {
		return nil, fmt.Errorf("invalid gain selector %d", gain)
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	clockLine, err := chip.RequestLine(pinClock, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request clock pin %d: %w", pinClock, err)
	}

	dataLine, err := chip.RequestLine(pinData, gpiocdev.AsInput)
	if err != nil {
		clockLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request data pin %d: %w", pinData, err)
	}

	return &RealSensor{
		chip:        chip,
		clock:       clockLine,
		data:        dataLine,
		gainPulses:  gain,
		calibration: calibration,
	}, nil
}

// Ready reports whether a conversion is waiting: DOUT goes low when the
// HX711 has fresh data.
func (s *RealSensor) Ready() (bool, error) {
	v, err := s.data.Value()
	if err != nil {
		return false, fmt.Errorf("read data pin: %w", err)
	}
	return v == 0, nil
}

// readRaw clocks out one signed 24-bit conversion. The caller must have
// confirmed Ready; DOUT carries the MSB first.
func (s *RealSensor) readRaw() (int32, error) {
	var raw uint32
	for i := 0; i < 24; i++ {
		if err := s.clock.SetValue(1); err != nil {
			return 0, fmt.Errorf("clock high: %w", err)
		}
		v, err := s.data.Value()
		if err != nil {
			return 0, fmt.Errorf("read bit %d: %w", i, err)
		}
		if err := s.clock.SetValue(0); err != nil {
			return 0, fmt.Errorf("clock low: %w", err)
		}
		raw = raw<<1 | uint32(v)
	}

	// Extra pulses select gain/channel for the next conversion.
	for i := 0; i < s.gainPulses; i++ {
		if err := s.clock.SetValue(1); err != nil {
			return 0, fmt.Errorf("gain pulse high: %w", err)
		}
		if err := s.clock.SetValue(0); err != nil {
			return 0, fmt.Errorf("gain pulse low: %w", err)
		}
	}

	// Sign-extend the 24-bit two's-complement value into an int32.
	return int32(raw<<8) >> 8, nil
}

// average waits for and reads samples conversions, returning their mean.
func (s *RealSensor) average(samples int) (int32, error) {
	if samples < 1 {
		samples = 1
	}

	var total int64
	for i := 0; i < samples; i++ {
		start := time.Now()
		for {
			ready, err := s.Ready()
			if err != nil {
				return 0, err
			}
			if ready {
				break
			}
			if time.Since(start) > readyTimeout {
				return 0, fmt.Errorf("timed out waiting for conversion %d", i)
			}
			time.Sleep(time.Millisecond)
		}

		raw, err := s.readRaw()
		if err != nil {
			return 0, err
		}
		total += int64(raw)
	}

	return int32(total / int64(samples)), nil
}

// ReadGrams averages samples conversions and converts counts to grams using
// the zero offset and calibration factor.
func (s *RealSensor) ReadGrams(samples int) (float64, error) {
	avg, err := s.average(samples)
	if err != nil {
		return 0, err
	}
	s.lastRaw = avg
	return float64(avg-s.offset) / s.calibration, nil
}

// LastRaw returns the most recent averaged conversion in ADC counts.
func (s *RealSensor) LastRaw() int32 {
	return s.lastRaw
}

// Tare re-zeroes the baseline from samples conversions. Call with the
// platter empty (or holding just the vessel to subtract).
func (s *RealSensor) Tare(samples int) error {
	avg, err := s.average(samples)
	if err != nil {
		return fmt.Errorf("tare: %w", err)
	}
	s.offset = avg
	return nil
}

// PowerDown holds PD_SCK high; the HX711 enters power-down after 60µs.
func (s *RealSensor) PowerDown() error {
	if err := s.clock.SetValue(1); err != nil {
		return fmt.Errorf("power down: %w", err)
	}
	return nil
}

// PowerUp releases PD_SCK. The first conversion after wake settles in
// roughly 400ms at 10 SPS; callers just poll Ready as usual.
func (s *RealSensor) PowerUp() error {
	if err := s.clock.SetValue(0); err != nil {
		return fmt.Errorf("power up: %w", err)
	}
	return nil
}

// Close powers the amplifier down and releases GPIO resources.
func (s *RealSensor) Close() error {
	var errs []error

	if s.clock != nil {
		if err := s.clock.SetValue(1); err != nil {
			errs = append(errs, fmt.Errorf("power down: %w", err))
		}
		if err := s.clock.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close clock pin: %w", err))
		}
	}
	if s.data != nil {
		if err := s.data.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close data pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
