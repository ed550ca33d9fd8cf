//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealButtons reads the buttons from actual hardware using the Linux GPIO
// character device.
type RealButtons struct {
	chip    *gpiocdev.Chip
	tarePin *gpiocdev.Line
	modePin *gpiocdev.Line
}

// NewRealButtons requests the two button lines as pulled-up inputs.
// The buttons short the pin to ground, so pull-up keeps the idle level high.
func NewRealButtons(chipName string, pinTare, pinMode int) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	tareLine, err := chip.RequestLine(pinTare, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request tare pin %d: %w", pinTare, err)
	}

	modeLine, err := chip.RequestLine(pinMode, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		tareLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request mode pin %d: %w", pinMode, err)
	}

	return &RealButtons{
		chip:    chip,
		tarePin: tareLine,
		modePin: modeLine,
	}, nil
}

// Read returns the logical pressed states of the tare and mode buttons.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (b *RealButtons) Read() (bool, bool, error) {
	tareRaw, err := b.tarePin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read tare pin: %w", err)
	}

	modeRaw, err := b.modePin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read mode pin: %w", err)
	}

	return tareRaw == 0, modeRaw == 0, nil
}

// Close releases GPIO resources.
func (b *RealButtons) Close() error {
	var errs []error

	if b.tarePin != nil {
		if err := b.tarePin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tare pin: %w", err))
		}
	}
	if b.modePin != nil {
		if err := b.modePin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mode pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealBuzzer drives a piezo buzzer on a GPIO output line.
type RealBuzzer struct {
	chip *gpiocdev.Chip
	pin  *gpiocdev.Line
}

// NewRealBuzzer requests the buzzer line as an output, initially low.
func NewRealBuzzer(chipName string, pin int) (*RealBuzzer, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}

	return &RealBuzzer{chip: chip, pin: line}, nil
}

// Beep drives the buzzer high for the given duration, then low.
// Blocks for the length of the pulse.
func (b *RealBuzzer) Beep(d time.Duration) error {
	if err := b.pin.SetValue(1); err != nil {
		return fmt.Errorf("buzzer on: %w", err)
	}
	time.Sleep(d)
	if err := b.pin.SetValue(0); err != nil {
		return fmt.Errorf("buzzer off: %w", err)
	}
	return nil
}

// Close drives the line low and releases GPIO resources.
func (b *RealBuzzer) Close() error {
	var errs []error

	if b.pin != nil {
		if err := b.pin.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("silence buzzer: %w", err))
		}
		if err := b.pin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close buzzer pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
