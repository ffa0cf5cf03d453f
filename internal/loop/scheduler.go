// Package loop advances the simulation on a fixed quantum, independent of
// how often the display asks for a frame.
package loop

import (
	"time"

	"github.com/Garsondee/Flight-Scope/internal/input"
)

// DefaultMaxFrame bounds the real time credited to one callback so a stalled
// or backgrounded host cannot queue an unbounded catch-up.
const DefaultMaxFrame = 0.25

// Stepper is the part of the simulation the scheduler drives.
type Stepper interface {
	Step(axis1, axis2 float64)
}

// State is the scheduler's carried state. It is a plain value: Advance
// takes one and returns the next, so tests can replay any sequence.
type State struct {
	// Carry is unconsumed real time in seconds, always in [0, Quantum).
	Carry float64
	// Last is the timestamp of the previous callback.
	Last time.Time
	// Started is false until the first callback has set Last.
	Started bool
	// Steps is the total number of quanta advanced since Init.
	Steps uint64
	// Credited is the total clamped elapsed time accepted so far.
	Credited float64
}

// SimTime is the simulated time advanced so far.
func (s State) SimTime(quantum float64) float64 {
	return float64(s.Steps) * quantum
}

// Scheduler holds the fixed-step policy.
type Scheduler struct {
	Quantum  float64 // seconds per simulation step
	MaxFrame float64 // max seconds credited per callback
}

// NewScheduler returns a scheduler with the default frame clamp.
func NewScheduler(quantum float64) Scheduler {
	return Scheduler{Quantum: quantum, MaxFrame: DefaultMaxFrame}
}

// Clamp limits rawDt to [0, MaxFrame]. Negative samples (a clock stepping
// backwards) credit nothing.
func (s Scheduler) Clamp(rawDt float64) float64 {
	if !(rawDt > 0) {
		return 0
	}
	if s.MaxFrame > 0 && rawDt > s.MaxFrame {
		return s.MaxFrame
	}
	return rawDt
}

// Advance credits rawDt seconds and runs as many whole quanta as fit. The
// same axes are applied to every sub-step of this callback. It returns the
// new state and the number of steps taken.
func (s Scheduler) Advance(st State, rawDt float64, axes input.Axes, sim Stepper) (State, int) {
	if !(s.Quantum > 0) {
		return st, 0
	}
	dt := s.Clamp(rawDt)
	st.Carry += dt
	st.Credited += dt

	n := 0
	for st.Carry >= s.Quantum {
		sim.Step(axes.Axis1, axes.Axis2)
		st.Carry -= s.Quantum
		n++
	}
	if st.Carry < 0 {
		st.Carry = 0
	}
	st.Steps += uint64(n)
	return st, n
}

// Elapsed returns the seconds between the previous callback and now and
// records now as the new previous timestamp. The first call returns 0.
func (st State) Elapsed(now time.Time) (State, float64) {
	if !st.Started {
		st.Started = true
		st.Last = now
		return st, 0
	}
	d := now.Sub(st.Last).Seconds()
	st.Last = now
	return st, d
}
