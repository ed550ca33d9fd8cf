// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/coffee-scale/internal/scale"
)

// Topic is the MQTT topic for scale events.
const Topic = "kitchen/scale/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "kitchen/scale/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a scale event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event scale.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string         // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string         // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config     *SystemConfig  // startup only
	Heartbeat  *HeartbeatInfo // heartbeat only
	RawPayload []byte         // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool           // Whether the message should be retained by the broker
}

// SystemConfig is the effective configuration reported in STARTUP events.
type SystemConfig struct {
	PollMs      int64  `json:"poll_ms"`
	SleepPollMs int64  `json:"sleep_poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
}

// HeartbeatInfo carries the periodic liveness snapshot.
type HeartbeatInfo struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	EventCounts   HeartbeatCounts `json:"event_counts"`
}

// HeartbeatCounts mirrors the core's event counters.
type HeartbeatCounts struct {
	Tares       int `json:"tares"`
	ModeChanges int `json:"mode_changes"`
	TimerStarts int `json:"timer_starts"`
	TimerStops  int `json:"timer_stops"`
	Sleeps      int `json:"sleeps"`
	Wakes       int `json:"wakes"`
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Scale ScalePayload `json:"scale"`
}

// ScalePayload contains the scale event details.
type ScalePayload struct {
	Timestamp string  `json:"timestamp"`
	Event     string  `json:"event"`
	Mode      string  `json:"mode"`
	Grams     float64 `json:"grams"`
	ElapsedMs int64   `json:"elapsed_ms"`
}

// FormatPayload creates the JSON payload for a scale event.
func FormatPayload(event scale.Event) ([]byte, error) {
	payload := Payload{
		Scale: ScalePayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Mode:      event.Mode.Label(),
			Grams:     event.Grams,
			ElapsedMs: event.Elapsed.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Config    *SystemConfig  `json:"config,omitempty"`
	Heartbeat *HeartbeatInfo `json:"heartbeat,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
			Heartbeat: event.Heartbeat,
		},
	}
	return json.Marshal(payload)
}
