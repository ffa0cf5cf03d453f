package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Flight-Scope/internal/input"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/telemetry"
)

var (
	// ErrInitFailed is returned when the simulation rejects Init.
	ErrInitFailed = errors.New("simulation init failed")
	// ErrNotInitialized is returned by Tick before a successful Init.
	ErrNotInitialized = errors.New("session not initialized")
)

// InputSource reports which directional commands are held right now.
type InputSource func() input.Flags

// Frame is what one display callback produced.
type Frame struct {
	Snapshot sim.Snapshot
	Steps    int         // steps taken this callback
	RawDt    float64     // measured elapsed seconds
	Dt       float64     // credited seconds after clamping
	Carry    float64     // leftover after stepping
	Axes     input.Axes  // command applied to every step of this callback
	Flags    input.Flags // raw held state sampled this callback
}

// Clamped reports whether the catch-up clamp discarded real time.
func (f Frame) Clamped() bool { return f.RawDt > f.Dt }

// Session wires a simulation port to the scheduler and an input source.
// It is driven from one goroutine.
type Session struct {
	Name      string
	Port      sim.Port
	Mapper    input.Mapper
	Input     InputSource
	Scheduler Scheduler
	Metrics   *telemetry.Metrics
	Logger    zerolog.Logger

	state       State
	initialized bool
	buf         []sim.EntityState
}

// NewSession returns a session stepping port every quantum seconds.
func NewSession(name string, port sim.Port, mapper input.Mapper, in InputSource, quantum float64) *Session {
	return &Session{
		Name:      name,
		Port:      port,
		Mapper:    mapper,
		Input:     in,
		Scheduler: NewScheduler(quantum),
		Logger:    zerolog.Nop(),
	}
}

// Init initialises the port exactly once. A second call is a no-op.
func (s *Session) Init() error {
	if s.initialized {
		return nil
	}
	if !(s.Scheduler.Quantum > 0) {
		return fmt.Errorf("%w: quantum %v must be positive", ErrInitFailed, s.Scheduler.Quantum)
	}
	if st := s.Port.Init(s.Scheduler.Quantum); st != sim.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrInitFailed, s.Name, st)
	}
	s.initialized = true
	s.state = State{}
	s.Logger.Info().
		Str("scene", s.Name).
		Float64("quantum", s.Scheduler.Quantum).
		Float64("max_frame", s.Scheduler.MaxFrame).
		Int("entities", s.Port.EntityCount()).
		Msg("session initialised")
	return nil
}

// State returns the current scheduler state.
func (s *Session) State() State { return s.state }

// Snapshot reads the port without stepping it.
func (s *Session) Snapshot() sim.Snapshot {
	s.buf = sim.ReadSnapshot(s.Port, s.buf)
	return sim.Snapshot{
		Entities: s.buf,
		Steps:    s.state.Steps,
		SimTime:  s.state.SimTime(s.Scheduler.Quantum),
	}
}

// Tick processes one display callback at time now.
func (s *Session) Tick(ctx context.Context, now time.Time) (Frame, error) {
	if !s.initialized {
		return Frame{}, ErrNotInitialized
	}
	var raw float64
	s.state, raw = s.state.Elapsed(now)

	var flags input.Flags
	if s.Input != nil {
		flags = s.Input()
	}
	axes := s.Mapper.Map(flags)

	before := s.state.Credited
	var n int
	s.state, n = s.Scheduler.Advance(s.state, raw, axes, s.Port)

	f := Frame{
		Snapshot: s.Snapshot(),
		Steps:    n,
		RawDt:    raw,
		Dt:       s.state.Credited - before,
		Carry:    s.state.Carry,
		Axes:     axes,
		Flags:    flags,
	}
	if f.Clamped() {
		s.Logger.Debug().
			Float64("raw_dt", raw).
			Float64("credited", f.Dt).
			Msg("elapsed time clamped")
	}
	s.Metrics.RecordFrame(ctx, s.Name, n, f.Dt, f.Clamped())
	return f, nil
}
