//go:build !linux

package hx711

import "errors"

// RealSensor is not available on non-Linux platforms.
type RealSensor struct{}

// NewRealSensor returns an error on non-Linux platforms.
func NewRealSensor(chipName string, pinClock, pinData, gain int, calibration float64) (*RealSensor, error) {
	return nil, errors.New("hx711: not supported on this platform (requires Linux)")
}

// Ready is not implemented on non-Linux platforms.
func (s *RealSensor) Ready() (bool, error) {
	return false, errors.New("hx711: not supported")
}

// ReadGrams is not implemented on non-Linux platforms.
func (s *RealSensor) ReadGrams(samples int) (float64, error) {
	return 0, errors.New("hx711: not supported")
}

// LastRaw is not implemented on non-Linux platforms.
func (s *RealSensor) LastRaw() int32 { return 0 }

// Tare is not implemented on non-Linux platforms.
func (s *RealSensor) Tare(samples int) error {
	return errors.New("hx711: not supported")
}

// PowerDown is not implemented on non-Linux platforms.
func (s *RealSensor) PowerDown() error { return nil }

// PowerUp is not implemented on non-Linux platforms.
func (s *RealSensor) PowerUp() error { return nil }

// Close is not implemented on non-Linux platforms.
func (s *RealSensor) Close() error { return nil }
