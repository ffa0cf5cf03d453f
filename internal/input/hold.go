package input

import "time"

// HoldTracker synthesizes held state for inputs that only report presses,
// such as terminals without key-up events. A direction counts as held until
// Window has elapsed since its most recent press.
type HoldTracker struct {
	Window time.Duration
	last   [5]time.Time
}

// NewHoldTracker creates a tracker with the given hold window.
func NewHoldTracker(window time.Duration) *HoldTracker {
	return &HoldTracker{Window: window}
}

// Press records a press of d at now.
func (h *HoldTracker) Press(d Direction, now time.Time) {
	if d <= DirNone || int(d) >= len(h.last) {
		return
	}
	h.last[d] = now
}

// Release forgets any press of d.
func (h *HoldTracker) Release(d Direction) {
	if d <= DirNone || int(d) >= len(h.last) {
		return
	}
	h.last[d] = time.Time{}
}

// Flags returns the held state as of now.
func (h *HoldTracker) Flags(now time.Time) Flags {
	var f Flags
	for d := DirUp; d <= DirRight; d++ {
		t := h.last[d]
		if t.IsZero() {
			continue
		}
		if now.Sub(t) <= h.Window {
			f = f.Set(d, true)
		}
	}
	return f
}
