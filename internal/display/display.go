// Package display drives the scale's front-panel display head over a serial
// line protocol. The head is a small MCU that owns the segment multiplexing;
// this side just sends one frame line per tick.
package display

import (
	"fmt"

	"github.com/sweeney/coffee-scale/internal/scale"
)

// DefaultBaudRate matches the display head firmware.
const DefaultBaudRate = 115200

// Display renders frames to the front panel.
type Display interface {
	// Render sends one frame to the head.
	Render(frame scale.RenderFrame) error

	// SetPower turns the panel on or off.
	SetPower(on bool) error

	// Close releases the port.
	Close() error
}

// FormatFrame encodes a frame as one protocol line. Weight-only frames omit
// the timer fields:
//
//	F,POUR,81234,12.3,00,41,6
//	F,KITCHEN,81234,12.3
func FormatFrame(frame scale.RenderFrame) string {
	if frame.ShowTimer {
		return fmt.Sprintf("F,%s,%d,%.1f,%02d,%02d,%d\n",
			frame.ModeLabel, frame.RawCounts, frame.Grams,
			frame.TimerMinutes, frame.TimerSeconds, frame.TimerTenths)
	}
	return fmt.Sprintf("F,%s,%d,%.1f\n", frame.ModeLabel, frame.RawCounts, frame.Grams)
}

// FormatPower encodes a panel power command.
func FormatPower(on bool) string {
	if on {
		return "P,1\n"
	}
	return "P,0\n"
}
