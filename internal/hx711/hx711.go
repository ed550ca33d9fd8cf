// Package hx711 reads the HX711 24-bit load-cell amplifier with hardware
// abstraction. The real implementation bit-bangs the two-wire protocol over
// the Linux GPIO character device; the fake allows testing without hardware.
package hx711

// Sensor is the load-cell source the tick loop reads.
type Sensor interface {
	// Ready reports whether a conversion is waiting to be read.
	Ready() (bool, error)

	// ReadGrams averages samples conversions and applies the zero offset
	// and calibration factor.
	ReadGrams(samples int) (float64, error)

	// LastRaw returns the most recent averaged raw conversion in ADC counts.
	LastRaw() int32

	// Tare re-zeroes the baseline from samples conversions so the current
	// load reads as 0 g.
	Tare(samples int) error

	// PowerDown puts the amplifier into its low-power state.
	PowerDown() error

	// PowerUp wakes the amplifier from power-down.
	PowerUp() error

	// Close releases hardware resources.
	Close() error
}

// Gain and channel selection is encoded as the number of extra clock pulses
// sent after the 24 data bits; it takes effect on the next conversion.
const (
	GainA128 = 1 // channel A, gain 128 (load cell default)
	GainB32  = 2 // channel B, gain 32
	GainA64  = 3 // channel A, gain 64
)

// Default wiring (BCM numbering).
const (
	DefaultPinClock = 5
	DefaultPinData  = 6
)
