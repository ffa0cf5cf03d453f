package report

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/input"
	"github.com/Garsondee/Flight-Scope/internal/loop"
	"github.com/Garsondee/Flight-Scope/internal/sim"
)

// jumpThreshold is the per-frame displacement, in meters, above which an
// entity move is logged as a discontinuity (for example an engagement reset).
const jumpThreshold = 250.0

// Harness drives a session headlessly from a scripted clock. It mirrors the
// interactive viewer's callback sequence but needs no window and is fully
// deterministic for a given seed.
type Harness struct {
	Scene     string
	Model     string
	Quantum   float64
	MaxFrame  float64
	RefreshHz float64
	Jitter    float64 // fraction of the frame period, uniformly +/-
	Mapper    input.Mapper
	Script    func(frame int) input.Flags
	Log       *FrameLog

	stalls   map[int]time.Duration
	composer *compose.Composer
	surfaceW float64
	surfaceH float64
	rng      *rand.Rand
	logger   zerolog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithScene selects the simulation model and its input mapping.
func WithScene(name, model string, m input.Mapper) Option {
	return func(h *Harness) {
		h.Scene = name
		h.Model = model
		h.Mapper = m
	}
}

// WithQuantum sets the simulation step and catch-up clamp.
func WithQuantum(quantum, maxFrame float64) Option {
	return func(h *Harness) {
		h.Quantum = quantum
		h.MaxFrame = maxFrame
	}
}

// WithRefreshHz sets the nominal display rate.
func WithRefreshHz(hz float64) Option {
	return func(h *Harness) { h.RefreshHz = hz }
}

// WithJitter perturbs each frame interval by up to frac of the period.
func WithJitter(frac float64) Option {
	return func(h *Harness) { h.Jitter = frac }
}

// WithSeed sets the RNG seed for deterministic jitter.
func WithSeed(seed int64) Option {
	return func(h *Harness) {
		h.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- reproducible timing jitter
	}
}

// WithStall makes the interval before frame n last d instead of one period.
func WithStall(frame int, d time.Duration) Option {
	return func(h *Harness) { h.stalls[frame] = d }
}

// WithInput scripts the held directions per frame.
func WithInput(script func(frame int) input.Flags) Option {
	return func(h *Harness) { h.Script = script }
}

// WithVerbose records one log entry per frame.
func WithVerbose(v bool) Option {
	return func(h *Harness) { h.Log = NewFrameLog(v) }
}

// WithComposer renders every frame onto a w x h recording canvas and logs
// draw failures.
func WithComposer(c *compose.Composer, w, h float64) Option {
	return func(hr *Harness) {
		hr.composer = c
		hr.surfaceW, hr.surfaceH = w, h
	}
}

// WithLogger routes session logs.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// NewHarness builds a harness for the pursuit model at 60 Hz unless
// options say otherwise.
func NewHarness(opts ...Option) *Harness {
	h := &Harness{
		Scene:     "pursuit",
		Model:     "pursuit",
		Quantum:   0.01,
		MaxFrame:  loop.DefaultMaxFrame,
		RefreshHz: 60,
		Mapper:    input.LateralLongitudinal(1, 1),
		Log:       NewFrameLog(false),
		stalls:    map[int]time.Duration{},
		rng:       rand.New(rand.NewSource(1)), // #nosec G404 -- harness default
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Result summarises one harness run.
type Result struct {
	Scene            string
	Frames           int
	Steps            uint64
	SimTime          float64
	Credited         float64
	WallTime         float64
	MaxStepsPerFrame int
	IdleFrames       int // frames that ran no step
	ClampedFrames    int
	MaxCarry         float64
	Discontinuities  int
	DrawErrors       int
	DrawOps          int
	Final            []sim.EntityState
}

// MeanStepsPerFrame is Steps / Frames.
func (r Result) MeanStepsPerFrame() float64 {
	if r.Frames == 0 {
		return 0
	}
	return float64(r.Steps) / float64(r.Frames)
}

// String is a one-line summary.
func (r Result) String() string {
	return fmt.Sprintf("scene=%s frames=%d steps=%d sim=%.3fs wall=%.3fs max_steps=%d idle=%d clamped=%d max_carry=%.4f jumps=%d draw_errors=%d",
		r.Scene, r.Frames, r.Steps, r.SimTime, r.WallTime, r.MaxStepsPerFrame, r.IdleFrames,
		r.ClampedFrames, r.MaxCarry, r.Discontinuities, r.DrawErrors)
}

// Timestamps returns the scripted callback times for n frames.
func (h *Harness) Timestamps(n int) []time.Time {
	period := time.Duration(float64(time.Second) / h.RefreshHz)
	t := time.Unix(0, 0)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			d := period
			if s, ok := h.stalls[i]; ok {
				d = s
			} else if h.Jitter > 0 {
				d += time.Duration((h.rng.Float64()*2 - 1) * h.Jitter * float64(period))
			}
			t = t.Add(d)
		}
		out = append(out, t)
	}
	return out
}

// Run plays n frames and returns the summary.
func (h *Harness) Run(ctx context.Context, n int) (Result, error) {
	if !(h.RefreshHz > 0) {
		return Result{}, fmt.Errorf("refresh rate must be > 0 (got %v)", h.RefreshHz)
	}
	port, err := sim.New(h.Model)
	if err != nil {
		return Result{}, err
	}

	frame := 0
	var in loop.InputSource
	if h.Script != nil {
		in = func() input.Flags { return h.Script(frame) }
	}
	s := loop.NewSession(h.Scene, port, h.Mapper, in, h.Quantum)
	s.Scheduler.MaxFrame = h.MaxFrame
	s.Logger = h.logger

	times := h.Timestamps(n)
	res := Result{Scene: h.Scene}
	if n > 0 {
		res.WallTime = times[n-1].Sub(times[0]).Seconds()
	}

	var rec *canvas.Recorder
	if h.composer != nil {
		rec = canvas.NewRecorder(h.surfaceW, h.surfaceH)
	}
	var prev []sim.EntityState

	sink := loop.SinkFunc(func(_ context.Context, f loop.Frame) error {
		res.Frames++
		if f.Steps > res.MaxStepsPerFrame {
			res.MaxStepsPerFrame = f.Steps
		}
		if f.Steps == 0 {
			res.IdleFrames++
		}
		res.MaxCarry = math.Max(res.MaxCarry, f.Carry)
		if f.Clamped() {
			res.ClampedFrames++
			h.Log.Record(Event{Frame: frame, Kind: KindClamped, Entity: NoEntity, Value: f.RawDt,
				Detail: fmt.Sprintf("raw=%.3fs credited=%.3fs steps=%d", f.RawDt, f.Dt, f.Steps)})
		}
		h.Log.Record(Event{Frame: frame, Kind: KindFrame, Entity: NoEntity, Value: f.Dt,
			Detail: fmt.Sprintf("dt=%.4f steps=%d carry=%.4f axes=(%.2f, %.2f)", f.Dt, f.Steps, f.Carry, f.Axes.Axis1, f.Axes.Axis2)})

		for i, e := range f.Snapshot.Entities {
			if i < len(prev) {
				if d := math.Hypot(e.X-prev[i].X, e.Y-prev[i].Y); d > jumpThreshold {
					res.Discontinuities++
					h.Log.Record(Event{Frame: frame, Kind: KindDiscontinuity, Entity: i, Value: d,
						Detail: fmt.Sprintf("moved %.1fm in one frame", d)})
				}
			}
		}
		prev = append(prev[:0], f.Snapshot.Entities...)

		if rec != nil {
			rec.Reset()
			if err := h.composer.Draw(rec, f.Snapshot); err != nil {
				res.DrawErrors++
				h.Log.Record(Event{Frame: frame, Kind: KindDrawError, Entity: NoEntity, Detail: err.Error()})
			}
			res.DrawOps += len(rec.Ops)
		}
		frame++
		return nil
	})

	if err := loop.Run(ctx, s, loop.NewManualClock(times...), sink); err != nil {
		return res, err
	}
	st := s.State()
	res.Steps = st.Steps
	res.SimTime = st.SimTime(h.Quantum)
	res.Credited = st.Credited
	res.Final = append([]sim.EntityState(nil), prev...)
	return res, nil
}
