package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/input"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/sim"
)

func TestFrameLog_Queries(t *testing.T) {
	fl := NewFrameLog(false)
	fl.Record(Event{Frame: 1, Kind: KindClamped, Entity: NoEntity, Value: 0.4, Detail: "raw=0.400s"})
	fl.Record(Event{Frame: 2, Kind: KindDiscontinuity, Entity: 1, Value: 900, Detail: "moved 900.0m in one frame"})
	fl.Record(Event{Frame: 7, Kind: KindClamped, Entity: NoEntity, Value: 1, Detail: "raw=1.000s"})
	fl.Record(Event{Frame: 8, Kind: KindFrame, Entity: NoEntity, Detail: "dropped"})

	assert.Len(t, fl.Events(), 3, "frame events are dropped when verbose is off")
	assert.Equal(t, 2, fl.Count(KindClamped))
	assert.Len(t, fl.Of(KindDiscontinuity), 1)

	first, ok := fl.First(KindClamped)
	require.True(t, ok)
	assert.Equal(t, 1, first.Frame)
	last, ok := fl.Last(KindClamped)
	require.True(t, ok)
	assert.Equal(t, 7, last.Frame)
	_, ok = fl.Last(KindDrawError)
	assert.False(t, ok)

	assert.Len(t, fl.Around(2, 1), 2)
	assert.Len(t, fl.Around(7, 0), 1)

	var sb strings.Builder
	require.NoError(t, WriteEvents(&sb, fl.Events()))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "clamped")
	assert.Contains(t, lines[1], "E1")
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestHarness_SteadyRefreshTracksWallTime(t *testing.T) {
	h := NewHarness()
	res, err := h.Run(context.Background(), 61)
	require.NoError(t, err)

	assert.Equal(t, 61, res.Frames)
	assert.InDelta(t, 1.0, res.WallTime, 1e-6)
	assert.InDelta(t, 100, float64(res.Steps), 1)
	assert.Zero(t, res.ClampedFrames)
	assert.LessOrEqual(t, res.MaxStepsPerFrame, 2)
	assert.Less(t, res.MaxCarry, h.Quantum)
	assert.LessOrEqual(t, res.SimTime, res.Credited+1e-9)
	assert.Len(t, res.Final, 2)
}

func TestHarness_StallIsClampedAndLogged(t *testing.T) {
	h := NewHarness(WithStall(30, 10*time.Second))
	res, err := h.Run(context.Background(), 60)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ClampedFrames)
	assert.LessOrEqual(t, res.MaxStepsPerFrame, 25)
	assert.Greater(t, res.WallTime, 10.0)
	assert.Less(t, res.SimTime, 1.5, "the stall should credit at most 0.25 s")

	e, ok := h.Log.Last(KindClamped)
	require.True(t, ok)
	assert.Equal(t, 30, e.Frame)
	assert.InDelta(t, 10.0, e.Value, 1e-9)
}

func TestHarness_JitterIsDeterministicPerSeed(t *testing.T) {
	run := func(seed int64) Result {
		res, err := NewHarness(WithSeed(seed), WithJitter(0.5), WithRefreshHz(144)).Run(context.Background(), 300)
		require.NoError(t, err)
		return res
	}
	a, b := run(9), run(9)
	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.Final, b.Final)
	assert.Greater(t, a.IdleFrames, 0, "at 144 Hz some frames must run no step")
	assert.Less(t, a.MaxCarry, 0.01)
}

func TestHarness_ScriptedInputSteersTarget(t *testing.T) {
	straight, err := NewHarness().Run(context.Background(), 60)
	require.NoError(t, err)

	left := input.Flags{Left: true}
	turned, err := NewHarness(WithInput(func(int) input.Flags { return left })).Run(context.Background(), 60)
	require.NoError(t, err)

	assert.Greater(t, turned.Final[sim.PursuitTarget].Heading, straight.Final[sim.PursuitTarget].Heading)
}

func TestHarness_DroneVerboseLog(t *testing.T) {
	h := NewHarness(
		WithScene("drone", "drone", input.ThrustSteer(1.5, 1)),
		WithVerbose(true),
		WithInput(func(int) input.Flags { return input.Flags{Up: true} }),
	)
	res, err := h.Run(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, 31, h.Log.Count(KindFrame))
	require.Len(t, res.Final, 1)
	assert.Greater(t, res.Final[0].Y, 0.0, "full thrust should climb")
}

func TestHarness_WithComposerRendersEveryFrame(t *testing.T) {
	layout := compose.Layout{
		PixelsPerMeter: 0.25,
		Main:           compose.MainCamera{Zoom: 1.5},
		Insets: []compose.InsetSpec{
			{Name: "target", Anchor: compose.TopLeft, Entity: sim.PursuitTarget, Zoom: 2.5},
		},
		InsetSize:    90,
		InsetPadding: 8,
	}
	scene := render.Scene{GridStep: 100, Ground: true, Glyphs: []render.Glyph{render.DartGlyph(render.White)}}
	h := NewHarness(WithComposer(compose.New(layout, render.Renderer{Scene: scene}), 1000, 400))
	res, err := h.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, res.DrawErrors)
	assert.Greater(t, res.DrawOps, 10*4)
}

func TestHarness_UnknownModel(t *testing.T) {
	_, err := NewHarness(WithScene("x", "zeppelin", input.Mapper{})).Run(context.Background(), 5)
	assert.ErrorIs(t, err, sim.ErrUnknownModel)
}
