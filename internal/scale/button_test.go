package scale

import (
	"testing"
	"time"
)

func TestButtonPressFiresOnce(t *testing.T) {
	b := NewButton(DefaultButtonConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev := b.Poll(true, now)
	if !ev.JustPressed {
		t.Fatal("expected JustPressed on first low sample")
	}

	// Held low across many ticks: the edge must not re-fire.
	for i := 1; i <= 10; i++ {
		ev = b.Poll(true, now.Add(time.Duration(i)*30*time.Millisecond))
		if ev.JustPressed {
			t.Fatalf("tick %d: JustPressed re-fired while held", i)
		}
		if !ev.Pressed {
			t.Fatalf("tick %d: expected Pressed while held", i)
		}
	}

	ev = b.Poll(false, now.Add(400*time.Millisecond))
	if !ev.JustReleased {
		t.Error("expected JustReleased on release")
	}
	if ev.Pressed {
		t.Error("expected Pressed=false after release")
	}
}

func TestButtonBounceRejected(t *testing.T) {
	b := NewButton(DefaultButtonConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Two low events 10 ms apart with a bounce high in between: one press.
	presses := 0
	if b.Poll(true, now).JustPressed {
		presses++
	}
	b.Poll(false, now.Add(5*time.Millisecond))
	if b.Poll(true, now.Add(10*time.Millisecond)).JustPressed {
		presses++
	}
	if presses != 1 {
		t.Errorf("expected 1 press from a 10ms bounce, got %d", presses)
	}
}

func TestButtonSeparatePressesAccepted(t *testing.T) {
	b := NewButton(DefaultButtonConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Two presses 40 ms apart (release in between): two presses.
	presses := 0
	if b.Poll(true, now).JustPressed {
		presses++
	}
	b.Poll(false, now.Add(10*time.Millisecond))
	if b.Poll(true, now.Add(40*time.Millisecond)).JustPressed {
		presses++
	}
	if presses != 2 {
		t.Errorf("expected 2 presses 40ms apart, got %d", presses)
	}
}

func TestButtonHeldDuration(t *testing.T) {
	b := NewButton(DefaultButtonConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	b.Poll(true, now)
	ev := b.Poll(true, now.Add(300*time.Millisecond))
	if ev.Held != 300*time.Millisecond {
		t.Errorf("Held: got %v, want 300ms", ev.Held)
	}
}

func TestButtonLongPressFiresOnce(t *testing.T) {
	b := NewButton(DefaultButtonConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	b.Poll(true, now)

	ev := b.Poll(true, now.Add(999*time.Millisecond))
	if ev.LongPress {
		t.Error("LongPress fired before the threshold")
	}

	ev = b.Poll(true, now.Add(1000*time.Millisecond))
	if !ev.LongPress {
		t.Error("expected LongPress at the threshold")
	}

	// Continuing to hold must not re-fire.
	ev = b.Poll(true, now.Add(2*time.Second))
	if ev.LongPress {
		t.Error("LongPress re-fired while still held")
	}

	// A release and fresh press re-arms the long-press.
	b.Poll(false, now.Add(3*time.Second))
	b.Poll(true, now.Add(4*time.Second))
	ev = b.Poll(true, now.Add(5*time.Second))
	if !ev.LongPress {
		t.Error("expected LongPress to re-arm after release")
	}
}

func TestButtonShortHoldAbandonsLongPress(t *testing.T) {
	b := NewButton(DefaultButtonConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// The long-press window is abandoned simply by releasing early.
	b.Poll(true, now)
	b.Poll(false, now.Add(500*time.Millisecond))
	ev := b.Poll(false, now.Add(2*time.Second))
	if ev.LongPress {
		t.Error("LongPress fired after an abandoned hold")
	}
	if ev.Held != 0 {
		t.Errorf("Held after release: got %v, want 0", ev.Held)
	}
}
