// Package scale contains the pure measurement and mode logic for the scale.
// This package has NO hardware dependencies (no GPIO, serial, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package scale

import "time"

// Mode is the active operating mode. Exactly one mode is active at a time.
type Mode int

const (
	ModePour Mode = iota
	ModeShot
	ModeKitchen
	ModeSleep

	modeCount = 4
)

// Label returns the short display label for the mode.
func (m Mode) Label() string {
	switch m {
	case ModePour:
		return "POUR"
	case ModeShot:
		return "SHOT"
	case ModeKitchen:
		return "KITCHEN"
	case ModeSleep:
		return "SLEEP"
	}
	return "UNKNOWN"
}

func (m Mode) String() string {
	return m.Label()
}

// RawSample is one sensor reading for a tick. Ephemeral, not retained.
type RawSample struct {
	// Ready reports whether the amplifier had a fresh conversion this tick.
	// When false, Grams and Counts are ignored and the previous shown value
	// is reused.
	Ready  bool
	Grams  float64
	Counts int32
}

// RenderFrame is the value tuple pushed to the presentation sink each tick.
// The sink owns all pixel layout.
type RenderFrame struct {
	ModeLabel    string
	RawCounts    int32
	Grams        float64
	ShowTimer    bool
	TimerMinutes int
	TimerSeconds int
	TimerTenths  int
}

// EventType represents a discrete state change to be published.
type EventType string

const (
	EventTare       EventType = "TARE"
	EventModeChange EventType = "MODE_CHANGE"
	EventTimerStart EventType = "TIMER_START"
	EventTimerStop  EventType = "TIMER_STOP"
	EventSleep      EventType = "SLEEP"
	EventWake       EventType = "WAKE"
)

// Event represents a state change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Mode      Mode
	Grams     float64
	Elapsed   time.Duration
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Tares       int
	ModeChanges int
	TimerStarts int
	TimerStops  int
	Sleeps      int
	Wakes       int
}
