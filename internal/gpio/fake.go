package gpio

import (
	"errors"
	"time"
)

// FakeButtons is a test double that returns scripted button levels.
type FakeButtons struct {
	// Samples contains scripted (tarePressed, modePressed) values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single button reading (already in logical form).
type Sample struct {
	Tare bool // true = pressed
	Mode bool // true = pressed
}

// NewFakeButtons creates a FakeButtons with the given samples.
func NewFakeButtons(samples []Sample) *FakeButtons {
	return &FakeButtons{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButtons) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.Tare, sample.Mode, nil
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeButtons) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeBuzzer records beep requests for test assertions.
type FakeBuzzer struct {
	// Beeps contains the durations of all requested pulses.
	Beeps []time.Duration

	// BeepError, if set, will be returned by Beep()
	BeepError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeBuzzer creates a FakeBuzzer for testing.
func NewFakeBuzzer() *FakeBuzzer {
	return &FakeBuzzer{}
}

// Beep records the requested pulse without sleeping.
func (f *FakeBuzzer) Beep(d time.Duration) error {
	if f.BeepError != nil {
		return f.BeepError
	}
	f.Beeps = append(f.Beeps, d)
	return nil
}

// Close marks the buzzer as closed.
func (f *FakeBuzzer) Close() error {
	f.Closed = true
	return nil
}
