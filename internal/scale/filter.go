package scale

import "math"

// FilterConfig holds the signal conditioning thresholds, all in grams.
type FilterConfig struct {
	// Snap is the error above which smoothing is bypassed entirely — a cup
	// being placed or removed must show immediately, not lag behind an EMA.
	Snap float64
	// FastBand/MediumBand split the error magnitude into smoothing bands.
	FastBand   float64
	MediumBand float64
	// Coefficients are the EMA weight given to history in each band.
	FastCoeff   float64
	MediumCoeff float64
	SlowCoeff   float64
	// Hysteresis is the minimum change before the shown value updates.
	Hysteresis float64
	// ZeroClampPos/ZeroClampNeg bound the near-zero band forced to 0.0.
	// Asymmetric: negative drift after a tare runs further than positive
	// residue does.
	ZeroClampPos float64
	ZeroClampNeg float64
}

// DefaultFilterConfig returns the tuning used on the production scale.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Snap:         1.0,
		FastBand:     0.3,
		MediumBand:   0.1,
		FastCoeff:    0.4,
		MediumCoeff:  0.7,
		SlowCoeff:    0.95,
		Hysteresis:   0.08,
		ZeroClampPos: 0.2,
		ZeroClampNeg: 0.3,
	}
}

// Filter turns noisy raw load-cell grams into a stable displayed value.
// Pipeline per tick, in fixed order: adaptive EMA, hysteresis gate,
// near-zero clamp, quantization to 0.1 g.
type Filter struct {
	cfg      FilterConfig
	filtered float64
	shown    float64
}

// NewFilter creates a Filter with the given thresholds.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Update feeds one raw grams sample through the conditioning pipeline and
// returns the stabilized value for this tick.
func (f *Filter) Update(raw float64) float64 {
	err := math.Abs(raw - f.filtered)
	switch {
	case err > f.cfg.Snap:
		f.filtered = raw
	case err > f.cfg.FastBand:
		f.filtered = f.cfg.FastCoeff*f.filtered + (1-f.cfg.FastCoeff)*raw
	case err > f.cfg.MediumBand:
		f.filtered = f.cfg.MediumCoeff*f.filtered + (1-f.cfg.MediumCoeff)*raw
	default:
		f.filtered = f.cfg.SlowCoeff*f.filtered + (1-f.cfg.SlowCoeff)*raw
	}

	// Shown only moves once the smoothed value has drifted far enough,
	// which stops the last digit flickering between neighbours.
	if math.Abs(f.filtered-f.shown) >= f.cfg.Hysteresis {
		f.shown = f.filtered
	}

	// Suppress tare residue and negative drift near empty.
	if (f.shown > 0 && f.shown < f.cfg.ZeroClampPos) ||
		(f.shown < 0 && -f.shown < f.cfg.ZeroClampNeg) {
		f.shown = 0
	}

	return Quantize(f.shown)
}

// Shown returns the last stabilized value without advancing the filter.
// Used when the sensor reports not-ready for a tick: the display freezes
// rather than decaying toward a stale raw value.
func (f *Filter) Shown() float64 {
	return Quantize(f.shown)
}

// Filtered returns the current smoothed trajectory, before the hysteresis gate.
func (f *Filter) Filtered() float64 {
	return f.filtered
}

// Reset zeroes the filter state. Called on tare and on mode entry.
func (f *Filter) Reset() {
	f.filtered = 0
	f.shown = 0
}

// Quantize rounds grams to the display resolution of 0.1 g.
func Quantize(g float64) float64 {
	return math.Round(g*10) / 10
}
