//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chipName string, pinTare, pinMode int) (*RealButtons, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (b *RealButtons) Read() (bool, bool, error) {
	return false, false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealButtons) Close() error { return nil }

// RealBuzzer is not available on non-Linux platforms.
type RealBuzzer struct{}

// NewRealBuzzer returns an error on non-Linux platforms.
func NewRealBuzzer(chipName string, pin int) (*RealBuzzer, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Beep is not implemented on non-Linux platforms.
func (b *RealBuzzer) Beep(d time.Duration) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealBuzzer) Close() error { return nil }
