package scale

import "time"

// modeHandler pairs the per-tick update and render behavior for one mode.
// Dispatch is a table lookup keyed by the active mode so adding a mode does
// not grow a monolithic switch. Sleep has no entry: the controller gates the
// whole pipeline before dispatch while asleep.
type modeHandler struct {
	update func(c *Controller, shown float64, now time.Time) (started, stopped bool)
	render func(c *Controller, frame *RenderFrame)
}

var modeHandlers = map[Mode]modeHandler{
	ModePour: {
		update: func(c *Controller, shown float64, now time.Time) (bool, bool) {
			// Pour free-runs: auto-start only, no stall detection.
			return c.timer.Update(shown, now, false)
		},
		render: renderWithTimer,
	},
	ModeShot: {
		update: func(c *Controller, shown float64, now time.Time) (bool, bool) {
			return c.timer.Update(shown, now, true)
		},
		render: renderWithTimer,
	},
	ModeKitchen: {
		update: func(c *Controller, shown float64, now time.Time) (bool, bool) {
			// Weight-only mode: the timer is held inert every tick.
			c.timer.Reset()
			return false, false
		},
		render: renderWeightOnly,
	},
}

func renderWithTimer(c *Controller, frame *RenderFrame) {
	elapsed := c.timer.Snapshot().Elapsed
	frame.ShowTimer = true
	frame.TimerMinutes = int(elapsed / time.Minute)
	frame.TimerSeconds = int(elapsed/time.Second) % 60
	frame.TimerTenths = int(elapsed/(100*time.Millisecond)) % 10
}

func renderWeightOnly(c *Controller, frame *RenderFrame) {}
