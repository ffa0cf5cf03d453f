package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/config"
	"github.com/Garsondee/Flight-Scope/internal/logging"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/report"
)

type options struct {
	runs       int
	frames     int
	seedBase   int64
	seedStep   int64
	jitter     float64
	stallEvery int
	stall      time.Duration
	verbose    bool
}

type runStats struct {
	runIndex int
	seed     int64
	result   report.Result

	clampFrames []int
	firstJump   int
	lastClamp   report.Event
	jumpContext []report.Event
}

// jumpRadius is how many frames either side of the first discontinuity are
// printed with each run.
const jumpRadius = 3

func main() {
	fs := pflag.CommandLine
	config.Flags(fs)
	var o options
	fs.IntVar(&o.runs, "runs", 5, "number of headless runs")
	fs.IntVar(&o.frames, "frames", 3600, "display callbacks per run")
	fs.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	fs.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	fs.Float64Var(&o.jitter, "jitter", 0.2, "frame interval jitter as a fraction of the period")
	fs.IntVar(&o.stallEvery, "stall-every", 600, "insert a stall every N frames (0 disables)")
	fs.DurationVar(&o.stall, "stall", 2*time.Second, "length of each inserted stall")
	fs.BoolVar(&o.verbose, "verbose", false, "print the full frame log")
	pflag.Parse()

	if err := run(os.Stdout, fs, o); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, fs *pflag.FlagSet, o options) error {
	if o.runs <= 0 {
		return fmt.Errorf("--runs must be > 0")
	}
	if o.frames <= 0 {
		return fmt.Errorf("--frames must be > 0")
	}
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}
	v := config.New()
	if err := config.BindFlags(v, fs); err != nil {
		return err
	}
	path, _ := fs.GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return err
	}
	logger, _ := logging.Setup(logging.Options{Level: cfg.LogLevel, Out: os.Stderr})

	fmt.Fprintf(out, "=== Headless Frame Report ===\n")
	fmt.Fprintf(out, "scene=%s runs=%d frames=%d refresh=%.0fHz quantum=%.4fs jitter=%.2f stall=%s/%d seed_base=%d seed_step=%d\n\n",
		cfg.Scene, o.runs, o.frames, cfg.RefreshHz, cfg.Quantum, o.jitter, o.stall, o.stallEvery, o.seedBase, o.seedStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		rs, h, err := runOnce(cfg, o, seed, logger)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		rs.runIndex = i + 1
		all = append(all, rs)
		printRun(out, rs)
		if o.verbose {
			if err := report.WriteEvents(out, h.Log.Events()); err != nil {
				return err
			}
		}
	}
	printAggregate(out, all, cfg.Quantum)
	return nil
}

func runOnce(cfg config.Config, o options, seed int64, logger zerolog.Logger) (runStats, *report.Harness, error) {
	sc, err := cfg.Current()
	if err != nil {
		return runStats{}, nil, err
	}
	mapper, err := sc.Mapper()
	if err != nil {
		return runStats{}, nil, err
	}
	layout, err := sc.Layout()
	if err != nil {
		return runStats{}, nil, err
	}
	scene, err := sc.Scene(cfg.Scene)
	if err != nil {
		return runStats{}, nil, err
	}

	opts := []report.Option{
		report.WithScene(cfg.Scene, sc.Model, mapper),
		report.WithQuantum(cfg.Quantum, cfg.MaxFrame),
		report.WithRefreshHz(cfg.RefreshHz),
		report.WithJitter(o.jitter),
		report.WithSeed(seed),
		report.WithVerbose(o.verbose),
		report.WithLogger(logger),
		report.WithComposer(compose.New(layout, render.Renderer{Scene: scene}),
			float64(cfg.Window.Width), float64(cfg.Window.Height)),
	}
	if o.stallEvery > 0 {
		for f := o.stallEvery; f < o.frames; f += o.stallEvery {
			opts = append(opts, report.WithStall(f, o.stall))
		}
	}

	h := report.NewHarness(opts...)
	res, err := h.Run(context.Background(), o.frames)
	if err != nil {
		return runStats{}, nil, err
	}

	return collect(seed, res, h.Log), h, nil
}

func collect(seed int64, res report.Result, log *report.FrameLog) runStats {
	rs := runStats{seed: seed, result: res, firstJump: -1}
	for _, e := range log.Of(report.KindClamped) {
		rs.clampFrames = append(rs.clampFrames, e.Frame)
	}
	rs.lastClamp, _ = log.Last(report.KindClamped)
	if e, ok := log.First(report.KindDiscontinuity); ok {
		rs.firstJump = e.Frame
		rs.jumpContext = log.Around(e.Frame, jumpRadius)
	}
	return rs
}

func printRun(out io.Writer, rs runStats) {
	r := rs.result
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(out, "timing: frames=%d wall=%.3fs credited=%.3fs sim=%.3fs drift=%.4fs\n",
		r.Frames, r.WallTime, r.Credited, r.SimTime, r.WallTime-r.SimTime)
	fmt.Fprintf(out, "stepping: mean=%.2f max=%d idle_frames=%d clamped_frames=%d max_carry=%.4fs\n",
		r.MeanStepsPerFrame(), r.MaxStepsPerFrame, r.IdleFrames, r.ClampedFrames, r.MaxCarry)
	fmt.Fprintf(out, "events: first_discontinuity=%d discontinuities=%d draw_errors=%d draw_ops=%d\n",
		rs.firstJump, r.Discontinuities, r.DrawErrors, r.DrawOps)
	fmt.Fprintf(out, "clamped_at: %s\n", joinFrames(rs.clampFrames))
	if len(rs.clampFrames) > 0 {
		fmt.Fprintf(out, "last_clamp: %s\n", rs.lastClamp.Detail)
	}
	if len(rs.jumpContext) > 0 {
		fmt.Fprintf(out, "around first discontinuity:\n")
		_ = report.WriteEvents(out, rs.jumpContext)
	}
	for i, e := range r.Final {
		fmt.Fprintf(out, "final E%d: x=%.2f y=%.2f heading=%.3f\n", i, e.X, e.Y, e.Heading)
	}
	fmt.Fprintln(out)
}

func printAggregate(out io.Writer, all []runStats, quantum float64) {
	var frames, clamped, jumps, drawErrs, maxSteps int
	var steps uint64
	var wall, sim float64
	jumpFrames := make([]int, 0, len(all))
	for _, rs := range all {
		r := rs.result
		frames += r.Frames
		steps += r.Steps
		clamped += r.ClampedFrames
		jumps += r.Discontinuities
		drawErrs += r.DrawErrors
		wall += r.WallTime
		sim += r.SimTime
		if r.MaxStepsPerFrame > maxSteps {
			maxSteps = r.MaxStepsPerFrame
		}
		if rs.firstJump >= 0 {
			jumpFrames = append(jumpFrames, rs.firstJump)
		}
	}
	fmt.Fprintf(out, "=== Aggregate (%d runs) ===\n", len(all))
	fmt.Fprintf(out, "steps_per_frame_avg=%.3f max_steps_per_frame=%d clamped_frames=%d\n",
		avg(int(steps), frames), maxSteps, clamped)
	fmt.Fprintf(out, "sim_over_wall=%.4f quantum=%.4fs\n", ratio(sim, wall), quantum)
	fmt.Fprintf(out, "discontinuities=%d first_discontinuity_avg=%s draw_errors=%d\n",
		jumps, avgFrameString(jumpFrames), drawErrs)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

func avgFrameString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinFrames(frames []int) string {
	if len(frames) == 0 {
		return "none"
	}
	s := fmt.Sprint(frames[0])
	for _, f := range frames[1:] {
		s += "," + fmt.Sprint(f)
	}
	return s
}
