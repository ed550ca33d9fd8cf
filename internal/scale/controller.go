package scale

import "time"

// Config aggregates the tuning for the whole core.
type Config struct {
	Filter      FilterConfig
	Button      ButtonConfig
	Timer       TimerConfig
	InitialMode Mode
}

// DefaultConfig returns the production tuning, booting into Pour mode.
func DefaultConfig() Config {
	return Config{
		Filter:      DefaultFilterConfig(),
		Button:      DefaultButtonConfig(),
		Timer:       DefaultTimerConfig(),
		InitialMode: ModePour,
	}
}

// Input is everything the controller consumes for one tick.
type Input struct {
	Raw RawSample
	// TarePressed/ModePressed are logical levels, already inverted from the
	// active-low pins by the GPIO layer.
	TarePressed bool
	ModePressed bool
	Now         time.Time
}

// Actions are side effects the caller must carry out after a step.
type Actions struct {
	// Tare asks the caller to re-zero the sensor baseline.
	Tare bool
	// Beep asks for a short audible pulse.
	Beep bool
	// EnteredSleep/ExitedSleep bracket power transitions: display off/on,
	// amplifier down/up, tick rate change.
	EnteredSleep bool
	ExitedSleep  bool
}

// Output is the result of one controller step.
type Output struct {
	Frame   RenderFrame
	Actions Actions
	Events  []Event
	Asleep  bool
}

// Controller owns the whole per-tick pipeline: debounced buttons, signal
// conditioning, the pour timer, and the mode state machine. All state is
// touched only from the single tick loop; no locking is needed.
type Controller struct {
	cfg     Config
	filter  *Filter
	timer   *Timer
	tareBtn *Button
	modeBtn *Button

	mode     Mode
	preSleep Mode
	// wakeArmed stages sleep exit: it arms once both buttons are released,
	// so the long-press that entered sleep cannot immediately wake it.
	wakeArmed bool
	counts    EventCounts
}

// NewController creates a Controller in the configured initial mode.
func NewController(cfg Config) *Controller {
	if cfg.InitialMode == ModeSleep {
		cfg.InitialMode = ModePour
	}
	return &Controller{
		cfg:      cfg,
		filter:   NewFilter(cfg.Filter),
		timer:    NewTimer(cfg.Timer),
		tareBtn:  NewButton(cfg.Button),
		modeBtn:  NewButton(cfg.Button),
		mode:     cfg.InitialMode,
		preSleep: cfg.InitialMode,
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Asleep reports whether the controller is in the low-power sleep state.
func (c *Controller) Asleep() bool {
	return c.mode == ModeSleep
}

// Counts returns the event counts since startup.
func (c *Controller) Counts() EventCounts {
	return c.counts
}

// TimerSnapshot returns the current timer state.
func (c *Controller) TimerSnapshot() TimerSnapshot {
	return c.timer.Snapshot()
}

// Shown returns the last stabilized grams value.
func (c *Controller) Shown() float64 {
	return c.filter.Shown()
}

// Step runs one tick: button edges, signal conditioning, timer and mode
// updates, and the render frame.
func (c *Controller) Step(in Input) Output {
	tare := c.tareBtn.Poll(in.TarePressed, in.Now)
	mode := c.modeBtn.Poll(in.ModePressed, in.Now)

	if c.mode == ModeSleep {
		return c.stepAsleep(in)
	}

	var out Output

	if tare.LongPress {
		c.enterSleep(in.Now, &out)
		return out
	}

	if mode.JustPressed {
		c.cycleMode(in.Now, &out)
	}
	if tare.JustPressed {
		c.tare(in.Now, &out)
	}

	shown := c.filter.Shown()
	if in.Raw.Ready {
		shown = c.filter.Update(in.Raw.Grams)
	}

	h := modeHandlers[c.mode]
	started, stopped := h.update(c, shown, in.Now)
	if started {
		c.counts.TimerStarts++
		out.Events = append(out.Events, c.event(EventTimerStart, in.Now, shown))
	}
	if stopped {
		c.counts.TimerStops++
		out.Events = append(out.Events, c.event(EventTimerStop, in.Now, shown))
		out.Actions.Beep = true
	}

	out.Frame = RenderFrame{
		ModeLabel: c.mode.Label(),
		RawCounts: in.Raw.Counts,
		Grams:     shown,
	}
	h.render(c, &out.Frame)

	return out
}

// stepAsleep handles the gated pipeline while asleep: nothing advances
// except the staged wake check.
func (c *Controller) stepAsleep(in Input) Output {
	out := Output{Asleep: true}

	if !c.wakeArmed {
		if !in.TarePressed && !in.ModePressed {
			c.wakeArmed = true
		}
		return out
	}

	if in.TarePressed || in.ModePressed {
		c.wake(in.Now, &out)
		// First frame after waking: fresh baseline, zero weight.
		out.Frame = RenderFrame{ModeLabel: c.mode.Label()}
		modeHandlers[c.mode].render(c, &out.Frame)
	}
	return out
}

// cycleMode advances to the next mode, skipping Sleep — sleep is reached
// only via long-press, never by cycling.
func (c *Controller) cycleMode(now time.Time, out *Output) {
	next := Mode((int(c.mode) + 1) % modeCount)
	if next == ModeSleep {
		next = Mode((int(next) + 1) % modeCount)
	}
	c.enterMode(next, out)
	c.counts.ModeChanges++
	out.Events = append(out.Events, c.event(EventModeChange, now, 0))
}

// enterMode gives the landing mode a clean slate: fresh baseline, fresh
// filter, fresh timer.
func (c *Controller) enterMode(m Mode, out *Output) {
	c.mode = m
	c.filter.Reset()
	c.timer.Reset()
	out.Actions.Tare = true
	out.Actions.Beep = true
}

func (c *Controller) tare(now time.Time, out *Output) {
	c.filter.Reset()
	c.timer.Reset()
	out.Actions.Tare = true
	out.Actions.Beep = true
	c.counts.Tares++
	out.Events = append(out.Events, c.event(EventTare, now, 0))
}

func (c *Controller) enterSleep(now time.Time, out *Output) {
	c.preSleep = c.mode
	c.mode = ModeSleep
	c.wakeArmed = false
	c.counts.Sleeps++
	out.Asleep = true
	out.Actions.EnteredSleep = true
	out.Actions.Beep = true
	out.Events = append(out.Events, c.event(EventSleep, now, 0))
}

func (c *Controller) wake(now time.Time, out *Output) {
	m := c.preSleep
	if m == ModeSleep {
		m = ModePour
	}
	c.enterMode(m, out)
	c.counts.Wakes++
	out.Asleep = false
	out.Actions.ExitedSleep = true
	out.Events = append(out.Events, c.event(EventWake, now, 0))
}

func (c *Controller) event(t EventType, now time.Time, grams float64) Event {
	return Event{
		Timestamp: now,
		Type:      t,
		Mode:      c.mode,
		Grams:     grams,
		Elapsed:   c.timer.Snapshot().Elapsed,
	}
}
