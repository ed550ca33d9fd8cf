// Package status provides a thread-safe status tracker for the scale daemon.
// It is read by the HTTP handlers and by MQTT system event payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/coffee-scale/internal/scale"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	SleepPollMs int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	DisplayPort string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Mode          scale.Mode
	Grams         float64
	TimerRunning  bool
	TimerElapsed  time.Duration
	Asleep        bool
	Counts        scale.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the mode, shown weight, timer state, and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(mode scale.Mode, grams float64, timerRunning bool, timerElapsed time.Duration, asleep bool, counts scale.EventCounts) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.Grams = grams
	t.snap.TimerRunning = timerRunning
	t.snap.TimerElapsed = timerElapsed
	t.snap.Asleep = asleep
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
