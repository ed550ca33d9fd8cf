package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/coffee-scale/internal/display"
	"github.com/sweeney/coffee-scale/internal/gpio"
	"github.com/sweeney/coffee-scale/internal/hx711"
	"github.com/sweeney/coffee-scale/internal/mqtt"
	"github.com/sweeney/coffee-scale/internal/scale"
	"github.com/sweeney/coffee-scale/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of sample.
func repeat(sample gpio.Sample, n int) []gpio.Sample {
	out := make([]gpio.Sample, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// readySamples returns n ready conversions all reporting grams.
func readySamples(grams float64, n int) []hx711.FakeSample {
	out := make([]hx711.FakeSample, n)
	for i := range out {
		out[i] = hx711.FakeSample{Ready: true, Grams: grams}
	}
	return out
}

// faultButtons wraps FakeButtons and returns errors for a range of Read() calls.
// No shared mutable state; the fault range is fixed at construction.
type faultButtons struct {
	inner      *gpio.FakeButtons
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (b *faultButtons) Read() (bool, bool, error) {
	i := b.call
	b.call++
	if i >= b.faultStart && i < b.faultEnd {
		return false, false, errors.New("gpio fault")
	}
	return b.inner.Read()
}

func (b *faultButtons) Close() error { return b.inner.Close() }

// testHarness bundles the fakes wired into one runLoop invocation.
type testHarness struct {
	sensor    *hx711.FakeSensor
	buttons   gpio.Buttons
	buzzer    *gpio.FakeBuzzer
	display   *display.FakeDisplay
	publisher *mqtt.FakePublisher
	tracker   *status.Tracker
	intervals []time.Duration
}

func newHarness(sensor *hx711.FakeSensor, buttons gpio.Buttons) *testHarness {
	return &testHarness{
		sensor:    sensor,
		buttons:   buttons,
		buzzer:    gpio.NewFakeBuzzer(),
		display:   display.NewFakeDisplay(),
		publisher: mqtt.NewFakePublisher(),
		tracker:   status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{}),
	}
}

func (h *testHarness) deps() loopDeps {
	return loopDeps{
		sensor:     h.sensor,
		buttons:    h.buttons,
		buzzer:     h.buzzer,
		display:    h.display,
		publisher:  h.publisher,
		mqttStatus: h.publisher,
		tracker:    h.tracker,
	}
}

// testParams returns loop tuning shrunk so long presses and stalls fit in a
// handful of 30ms ticks.
func testParams() loopParams {
	cfg := scale.DefaultConfig()
	cfg.Button.LongPress = 100 * time.Millisecond
	return loopParams{
		scaleCfg:    cfg,
		samples:     1,
		tareSamples: 4,
		heartbeat:   0,
		awakeTick:   30 * time.Millisecond,
		asleepTick:  300 * time.Millisecond,
	}
}

// runRunLoop drives runLoop for nTicks ticks, then delivers the signal and
// returns the loop's error. Interval changes are recorded on the harness.
func runRunLoop(t *testing.T, h *testHarness, params loopParams, clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(h.deps(), params, clock, tick, func(d time.Duration) {
			h.intervals = append(h.intervals, d)
		}, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func testClock() func() time.Time {
	return fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 30*time.Millisecond)
}

func TestRunLoopIdlePublishesOnlyShutdown(t *testing.T) {
	h := newHarness(
		hx711.NewFakeSensor(readySamples(0, 4)),
		gpio.NewFakeButtons(repeat(gpio.Sample{}, 4)),
	)

	err := runRunLoop(t, h, testParams(), testClock(), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(h.publisher.Events) != 0 {
		t.Errorf("expected 0 scale events, got %d", len(h.publisher.Events))
	}
	if len(h.publisher.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(h.publisher.SystemEvents))
	}
	se := h.publisher.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", se.Event)
	}
	if se.Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
	if se.RawPayload == nil {
		t.Error("expected SHUTDOWN to carry a status snapshot payload")
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	h := newHarness(
		hx711.NewFakeSensor(readySamples(0, 2)),
		gpio.NewFakeButtons(repeat(gpio.Sample{}, 2)),
	)

	err := runRunLoop(t, h, testParams(), testClock(), 2, syscall.SIGINT)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(h.publisher.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(h.publisher.SystemEvents))
	}
	if h.publisher.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", h.publisher.SystemEvents[0].Reason)
	}
}

func TestRunLoopRendersEveryAwakeTick(t *testing.T) {
	h := newHarness(
		hx711.NewFakeSensor(readySamples(12.3, 5)),
		gpio.NewFakeButtons(repeat(gpio.Sample{}, 5)),
	)

	err := runRunLoop(t, h, testParams(), testClock(), 5, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(h.display.Frames) != 5 {
		t.Fatalf("expected 5 rendered frames, got %d", len(h.display.Frames))
	}
	if h.display.Frames[0].ModeLabel != "POUR" {
		t.Errorf("frame mode: got %q, want POUR", h.display.Frames[0].ModeLabel)
	}
	// A fresh filter snaps to the first large reading.
	if h.display.Frames[0].Grams != 12.3 {
		t.Errorf("frame grams: got %v, want 12.3", h.display.Frames[0].Grams)
	}
}

func TestRunLoopAutoStartPublishesTimerEvent(t *testing.T) {
	sensor := hx711.NewFakeSensor(append(readySamples(0, 2), readySamples(5.0, 4)...))
	h := newHarness(sensor, gpio.NewFakeButtons(repeat(gpio.Sample{}, 6)))

	err := runRunLoop(t, h, testParams(), testClock(), 6, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var starts int
	for _, ev := range h.publisher.Events {
		if ev.Type == scale.EventTimerStart {
			starts++
		}
	}
	if starts != 1 {
		t.Errorf("expected 1 TIMER_START event, got %d", starts)
	}
}

func TestRunLoopTarePressRequestsSensorTare(t *testing.T) {
	buttons := gpio.NewFakeButtons(append(
		[]gpio.Sample{{Tare: true}},
		repeat(gpio.Sample{}, 3)...,
	))
	h := newHarness(hx711.NewFakeSensor(readySamples(0, 4)), buttons)

	err := runRunLoop(t, h, testParams(), testClock(), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if h.sensor.TareCount != 1 {
		t.Errorf("expected 1 sensor tare, got %d", h.sensor.TareCount)
	}
	if len(h.buzzer.Beeps) != 1 {
		t.Errorf("expected 1 beep, got %d", len(h.buzzer.Beeps))
	}

	var tares int
	for _, ev := range h.publisher.Events {
		if ev.Type == scale.EventTare {
			tares++
		}
	}
	if tares != 1 {
		t.Errorf("expected 1 TARE event, got %d", tares)
	}
}

func TestRunLoopSleepWakeCycle(t *testing.T) {
	// Hold tare for 5 ticks (120ms held, past the 100ms test long-press),
	// release for 2 ticks, press again to wake, then 1 idle tick.
	buttons := gpio.NewFakeButtons(append(
		repeat(gpio.Sample{Tare: true}, 5),
		gpio.Sample{}, gpio.Sample{},
		gpio.Sample{Tare: true},
		gpio.Sample{},
	))
	h := newHarness(hx711.NewFakeSensor(readySamples(0, 9)), buttons)
	params := testParams()

	err := runRunLoop(t, h, params, testClock(), 9, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// Display off on sleep, on again after wake.
	if len(h.display.PowerChanges) != 2 || h.display.PowerChanges[0] || !h.display.PowerChanges[1] {
		t.Errorf("expected power changes [off on], got %v", h.display.PowerChanges)
	}
	// Sensor powered back up by the end.
	if h.sensor.PoweredDown {
		t.Error("expected sensor powered up after wake")
	}
	// Tick interval slowed then restored.
	if len(h.intervals) != 2 || h.intervals[0] != params.asleepTick || h.intervals[1] != params.awakeTick {
		t.Errorf("expected intervals [%v %v], got %v", params.asleepTick, params.awakeTick, h.intervals)
	}

	var sleeps, wakes int
	for _, ev := range h.publisher.Events {
		switch ev.Type {
		case scale.EventSleep:
			sleeps++
		case scale.EventWake:
			wakes++
		}
	}
	if sleeps != 1 || wakes != 1 {
		t.Errorf("expected 1 SLEEP and 1 WAKE event, got %d and %d", sleeps, wakes)
	}
}

func TestRunLoopNoRenderWhileAsleep(t *testing.T) {
	// Enter sleep via long press, then idle ticks while asleep.
	buttons := gpio.NewFakeButtons(append(
		repeat(gpio.Sample{Tare: true}, 5),
		repeat(gpio.Sample{}, 4)...,
	))
	h := newHarness(hx711.NewFakeSensor(readySamples(0, 9)), buttons)

	err := runRunLoop(t, h, testParams(), testClock(), 9, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// Ticks 1-4 render; tick 5 enters sleep and ticks 6-9 stay dark.
	if len(h.display.Frames) != 4 {
		t.Errorf("expected 4 rendered frames before sleep, got %d", len(h.display.Frames))
	}
}

func TestRunLoopButtonReadError(t *testing.T) {
	// 2 valid reads then 2 faults. Loop should continue past errors
	// and still publish SHUTDOWN.
	buttons := &faultButtons{
		inner:      gpio.NewFakeButtons(repeat(gpio.Sample{}, 2)),
		faultStart: 2,
		faultEnd:   4,
	}
	h := newHarness(hx711.NewFakeSensor(readySamples(0, 4)), buttons)

	err := runRunLoop(t, h, testParams(), testClock(), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	found := false
	for _, se := range h.publisher.SystemEvents {
		if se.Event == "SHUTDOWN" {
			found = true
		}
	}
	if !found {
		t.Error("expected SHUTDOWN system event after button errors")
	}
}

func TestRunLoopSensorNotReadyKeepsRendering(t *testing.T) {
	sensor := hx711.NewFakeSensor([]hx711.FakeSample{
		{Ready: true, Grams: 5.0},
		{Ready: false},
		{Ready: false},
		{Ready: true, Grams: 5.0},
	})
	h := newHarness(sensor, gpio.NewFakeButtons(repeat(gpio.Sample{}, 4)))

	err := runRunLoop(t, h, testParams(), testClock(), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(h.display.Frames) != 4 {
		t.Fatalf("expected 4 rendered frames, got %d", len(h.display.Frames))
	}
	// Dropped conversions reuse the previous shown value.
	if h.display.Frames[1].Grams != h.display.Frames[0].Grams {
		t.Errorf("expected frozen value on dropped conversion, got %v then %v",
			h.display.Frames[0].Grams, h.display.Frames[1].Grams)
	}
}

func TestRunLoopPublishError(t *testing.T) {
	// A tare event occurs but Publish returns an error; the loop continues
	// and SHUTDOWN still goes out via PublishSystem.
	buttons := gpio.NewFakeButtons(append(
		[]gpio.Sample{{Tare: true}},
		repeat(gpio.Sample{}, 3)...,
	))
	h := newHarness(hx711.NewFakeSensor(readySamples(0, 4)), buttons)
	h.publisher.PublishError = fmt.Errorf("broker unavailable")

	err := runRunLoop(t, h, testParams(), testClock(), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(h.publisher.Events) != 0 {
		t.Errorf("expected 0 recorded events (publish failed), got %d", len(h.publisher.Events))
	}

	found := false
	for _, se := range h.publisher.SystemEvents {
		if se.Event == "SHUTDOWN" {
			found = true
		}
	}
	if !found {
		t.Error("expected SHUTDOWN system event despite publish errors")
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	params := testParams()
	params.heartbeat = 100 * time.Millisecond

	h := newHarness(
		hx711.NewFakeSensor(readySamples(0, 6)),
		gpio.NewFakeButtons(repeat(gpio.Sample{}, 6)),
	)

	// Ticks land at 30ms intervals; the first tick at or past 100ms fires the
	// heartbeat and resets the interval window.
	err := runRunLoop(t, h, params, testClock(), 6, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heartbeats int
	for _, se := range h.publisher.SystemEvents {
		if se.Event == "HEARTBEAT" {
			heartbeats++
			if se.RawPayload == nil {
				t.Error("expected heartbeat to carry a status snapshot payload")
			}
		}
	}
	if heartbeats != 1 {
		t.Errorf("expected 1 HEARTBEAT event, got %d", heartbeats)
	}
}

func TestRunLoopTrackerUpdated(t *testing.T) {
	sensor := hx711.NewFakeSensor(readySamples(42.0, 4))
	h := newHarness(sensor, gpio.NewFakeButtons(repeat(gpio.Sample{}, 4)))
	h.publisher.Connected = true

	err := runRunLoop(t, h, testParams(), testClock(), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	snap := h.tracker.Snapshot()
	if snap.Mode != scale.ModePour {
		t.Errorf("tracker mode: got %v, want POUR", snap.Mode)
	}
	if snap.Grams != 42.0 {
		t.Errorf("tracker grams: got %v, want 42.0", snap.Grams)
	}
	if !snap.MQTTConnected {
		t.Error("expected tracker to report MQTT connected")
	}
}
