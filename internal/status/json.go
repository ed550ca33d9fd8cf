package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Mode          string     `json:"mode"`
	Grams         float64    `json:"grams"`
	Timer         TimerJSON  `json:"timer"`
	Asleep        bool       `json:"asleep"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// TimerJSON reports the stopwatch state.
type TimerJSON struct {
	Running   bool  `json:"running"`
	ElapsedMs int64 `json:"elapsed_ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Tares       int `json:"tares"`
	ModeChanges int `json:"mode_changes"`
	TimerStarts int `json:"timer_starts"`
	TimerStops  int `json:"timer_stops"`
	Sleeps      int `json:"sleeps"`
	Wakes       int `json:"wakes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	SleepPollMs int64  `json:"sleep_poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	DisplayPort string `json:"display_port"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Mode:  snap.Mode.Label(),
		Grams: snap.Grams,
		Timer: TimerJSON{
			Running:   snap.TimerRunning,
			ElapsedMs: snap.TimerElapsed.Milliseconds(),
		},
		Asleep:        snap.Asleep,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Tares:       snap.Counts.Tares,
			ModeChanges: snap.Counts.ModeChanges,
			TimerStarts: snap.Counts.TimerStarts,
			TimerStops:  snap.Counts.TimerStops,
			Sleeps:      snap.Counts.Sleeps,
			Wakes:       snap.Counts.Wakes,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			SleepPollMs: snap.Config.SleepPollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			DisplayPort: snap.Config.DisplayPort,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
