package scale

import "time"

// ButtonConfig holds the debounce and long-press windows.
type ButtonConfig struct {
	Debounce  time.Duration
	LongPress time.Duration
}

// DefaultButtonConfig returns the windows used on the production scale.
func DefaultButtonConfig() ButtonConfig {
	return ButtonConfig{
		Debounce:  25 * time.Millisecond,
		LongPress: time.Second,
	}
}

// ButtonEvent is the debounced view of one button for a single tick.
type ButtonEvent struct {
	Pressed      bool
	JustPressed  bool
	JustReleased bool
	Held         time.Duration
	// LongPress fires exactly once per physical press, on the tick the hold
	// passes the long-press threshold.
	LongPress bool
}

// Button edge-detects a single momentary button. All timing is non-blocking:
// raw levels are compared against stored edge timestamps, never waited on.
type Button struct {
	cfg       ButtonConfig
	pressed   bool
	lastEdge  time.Time // last accepted transition; zero until the first one
	pressedAt time.Time
	longFired bool
}

// NewButton creates a Button with the given windows.
func NewButton(cfg ButtonConfig) *Button {
	return &Button{cfg: cfg}
}

// Poll consumes the current logical level (true = pressed, already inverted
// from the active-low pin) and returns the debounced edges for this tick.
//
// Press edges are accepted only if the debounce window has elapsed since the
// last accepted transition; a faster re-press is contact bounce and is
// ignored. Release edges are always accepted so hold tracking ends promptly.
func (b *Button) Poll(pressed bool, now time.Time) ButtonEvent {
	var ev ButtonEvent

	if pressed != b.pressed {
		if pressed {
			if b.lastEdge.IsZero() || now.Sub(b.lastEdge) >= b.cfg.Debounce {
				b.pressed = true
				b.lastEdge = now
				b.pressedAt = now
				b.longFired = false
				ev.JustPressed = true
			}
		} else {
			b.pressed = false
			b.lastEdge = now
			ev.JustReleased = true
		}
	}

	ev.Pressed = b.pressed
	if b.pressed {
		ev.Held = now.Sub(b.pressedAt)
		if !b.longFired && b.cfg.LongPress > 0 && ev.Held >= b.cfg.LongPress {
			b.longFired = true
			ev.LongPress = true
		}
	}

	return ev
}
