package hx711

import "errors"

// FakeSensor is a test double that returns scripted conversions.
type FakeSensor struct {
	// Samples contains scripted conversions to return.
	// Each call to ReadGrams() consumes the next sample.
	Samples []FakeSample

	// index tracks current position in Samples
	index int

	// TareCount counts calls to Tare
	TareCount int

	// PoweredDown tracks the power state
	PoweredDown bool

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadGrams()
	ReadError error

	// TareError, if set, will be returned by Tare()
	TareError error

	lastRaw int32
}

// FakeSample represents a single scripted conversion.
type FakeSample struct {
	Ready bool    // conversion available
	Grams float64 // calibrated weight to report
	Raw   int32   // raw ADC counts to report
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples []FakeSample) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// current returns the sample at the cursor without advancing.
func (f *FakeSensor) current() (FakeSample, error) {
	if len(f.Samples) == 0 {
		return FakeSample{}, errors.New("no samples configured")
	}
	return f.Samples[f.index], nil
}

// advance moves the cursor forward, holding on the last sample.
func (f *FakeSensor) advance() {
	if f.index < len(f.Samples)-1 {
		f.index++
	}
}

// Ready reports the readiness of the current scripted sample. A not-ready
// sample is consumed so the script can model dropped conversions.
func (f *FakeSensor) Ready() (bool, error) {
	s, err := f.current()
	if err != nil {
		return false, err
	}
	if !s.Ready {
		f.advance()
	}
	return s.Ready, nil
}

// ReadGrams returns the next scripted conversion.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSensor) ReadGrams(samples int) (float64, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	s, err := f.current()
	if err != nil {
		return 0, err
	}
	f.advance()
	f.lastRaw = s.Raw
	return s.Grams, nil
}

// LastRaw returns the raw counts of the most recently read sample.
func (f *FakeSensor) LastRaw() int32 {
	return f.lastRaw
}

// Tare records the re-zero request.
func (f *FakeSensor) Tare(samples int) error {
	if f.TareError != nil {
		return f.TareError
	}
	f.TareCount++
	return nil
}

// PowerDown marks the sensor as powered down.
func (f *FakeSensor) PowerDown() error {
	f.PoweredDown = true
	return nil
}

// PowerUp marks the sensor as powered up.
func (f *FakeSensor) PowerUp() error {
	f.PoweredDown = false
	return nil
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the sensor to the beginning of samples.
func (f *FakeSensor) Reset() {
	f.index = 0
	f.TareCount = 0
	f.PoweredDown = false
	f.Closed = false
	f.lastRaw = 0
}
