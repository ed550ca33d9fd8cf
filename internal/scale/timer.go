package scale

import (
	"math"
	"time"
)

// TimerConfig holds the auto start/stop thresholds for the pour timer.
type TimerConfig struct {
	// StartThreshold is the grams above which an armed timer auto-starts.
	StartThreshold float64
	// RearmThreshold is the grams below which a stopped timer re-arms —
	// in practice, the cup being lifted off.
	RearmThreshold float64
	// MinFlowDelta is the per-tick grams change below which flow counts
	// as stalled.
	MinFlowDelta float64
	// StallTimeout is how long a stall must persist before a running
	// timer auto-stops (Shot mode only).
	StallTimeout time.Duration
}

// DefaultTimerConfig returns the thresholds used on the production scale.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		StartThreshold: 2.0,
		RearmThreshold: 1.0,
		MinFlowDelta:   0.2,
		StallTimeout:   800 * time.Millisecond,
	}
}

// TimerSnapshot is a point-in-time view of the timer, safe to retain.
type TimerSnapshot struct {
	Running bool
	Armed   bool
	Elapsed time.Duration
}

// Timer is the weight-driven stopwatch shared by Pour and Shot modes.
/// armed gates auto-start: a timer can only start from armed, and disarms
// immediately on start, so a finished pour cannot restart the stopwatch
// until the cup comes off the platter.
type Timer struct {
	cfg          TimerConfig
	running      bool
	armed        bool
	startedAt    time.Time
	elapsed      time.Duration
	stalledSince *time.Time // nil = flow not stalled
	prevShown    float64
	havePrev     bool
}

// NewTimer creates a Timer in its initial idle, armed state.
func NewTimer(cfg TimerConfig) *Timer {
	t := &Timer{cfg: cfg}
	t.Reset()
	return t
}

// Reset returns the timer to idle and armed. Called on tare and mode entry,
// and every tick in Kitchen mode.
func (t *Timer) Reset() {
	t.running = false
	t.armed = true
	t.startedAt = time.Time{}
	t.elapsed = 0
	t.stalledSince = nil
	t.prevShown = 0
	t.havePrev = false
}

// Update advances the timer with this tick's stabilized grams. autoStop
// enables the flow-stall stop used by Shot mode; Pour free-runs without it.
// The returned flags report a start or stop that happened on this tick.
func (t *Timer) Update(shown float64, now time.Time, autoStop bool) (started, stopped bool) {
	defer func() {
		t.prevShown = shown
		t.havePrev = true
	}()

	if !t.running {
		if t.armed && shown > t.cfg.StartThreshold {
			t.running = true
			t.armed = false
			t.startedAt = now
			t.elapsed = 0
			t.stalledSince = nil
			return true, false
		}
		if !t.armed && shown < t.cfg.RearmThreshold {
			t.armed = true
		}
		return false, false
	}

	t.elapsed = now.Sub(t.startedAt)

	if autoStop && t.havePrev {
		if math.Abs(shown-t.prevShown) < t.cfg.MinFlowDelta {
			if t.stalledSince == nil {
				mark := now
				t.stalledSince = &mark
			} else if now.Sub(*t.stalledSince) > t.cfg.StallTimeout {
				// Flow stopped long enough: the shot is done. Elapsed
				// freezes at its current value.
				t.running = false
				t.stalledSince = nil
				return false, true
			}
		} else {
			t.stalledSince = nil
		}
	}

	return false, false
}

// Snapshot returns the current timer state.
func (t *Timer) Snapshot() TimerSnapshot {
	return TimerSnapshot{
		Running: t.running,
		Armed:   t.armed,
		Elapsed: t.elapsed,
	}
}

// Stalled reports whether a flow stall is currently being timed.
func (t *Timer) Stalled() bool {
	return t.stalledSince != nil
}
