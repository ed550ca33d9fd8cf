// Package gpio provides button input and buzzer output with hardware abstraction.
// The real implementations use the Linux GPIO character device.
// The fakes allow testing without hardware.
package gpio

import "time"

// Buttons reads the two front-panel buttons.
type Buttons interface {
	// Read returns the logical pressed states of the tare and mode buttons.
	// The raw pin levels are inverted: the buttons are active-low, so raw
	// low = logical pressed.
	// Returns (tarePressed, modePressed, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Buzzer emits short audible pulses.
type Buzzer interface {
	// Beep drives the buzzer for the given duration. Deliberately blocking:
	// pulses are tens of milliseconds and fire-and-forget.
	Beep(d time.Duration) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinTare   = 23
	DefaultPinMode   = 24
	DefaultPinBuzzer = 25
)
