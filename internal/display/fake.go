package display

import "github.com/sweeney/coffee-scale/internal/scale"

// FakeDisplay records rendered frames and power changes for test assertions.
type FakeDisplay struct {
	// Frames contains every frame passed to Render, in order.
	Frames []scale.RenderFrame

	// PowerChanges contains every SetPower value, in order.
	PowerChanges []bool

	// RenderError, if set, will be returned by Render()
	RenderError error

	// PowerError, if set, will be returned by SetPower()
	PowerError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeDisplay creates a FakeDisplay for testing.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

// Render records the frame.
func (f *FakeDisplay) Render(frame scale.RenderFrame) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	f.Frames = append(f.Frames, frame)
	return nil
}

// SetPower records the power change.
func (f *FakeDisplay) SetPower(on bool) error {
	if f.PowerError != nil {
		return f.PowerError
	}
	f.PowerChanges = append(f.PowerChanges, on)
	return nil
}

// Close marks the display as closed.
func (f *FakeDisplay) Close() error {
	f.Closed = true
	return nil
}

// LastFrame returns the most recently rendered frame, or a zero frame.
func (f *FakeDisplay) LastFrame() scale.RenderFrame {
	if len(f.Frames) == 0 {
		return scale.RenderFrame{}
	}
	return f.Frames[len(f.Frames)-1]
}
