package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/Garsondee/Flight-Scope/internal/config"
	"github.com/Garsondee/Flight-Scope/internal/report"
)

func TestCollect_ClampsAndJumpContext(t *testing.T) {
	log := report.NewFrameLog(false)
	log.Record(report.Event{Frame: 3, Kind: report.KindClamped, Entity: report.NoEntity, Detail: "raw=0.300s"})
	log.Record(report.Event{Frame: 9, Kind: report.KindDiscontinuity, Entity: 1, Detail: "moved 900.0m"})
	log.Record(report.Event{Frame: 11, Kind: report.KindClamped, Entity: report.NoEntity, Detail: "raw=2.000s"})
	log.Record(report.Event{Frame: 20, Kind: report.KindDiscontinuity, Entity: 0, Detail: "moved 700.0m"})

	rs := collect(7, report.Result{}, log)
	if rs.firstJump != 9 {
		t.Fatalf("expected first jump at 9, got %d", rs.firstJump)
	}
	if joinFrames(rs.clampFrames) != "3,11" || rs.lastClamp.Detail != "raw=2.000s" {
		t.Fatalf("unexpected clamps %v last %q", rs.clampFrames, rs.lastClamp.Detail)
	}
	if len(rs.jumpContext) != 2 {
		t.Fatalf("expected the jump and the clamp two frames later, got %d events", len(rs.jumpContext))
	}

	var out bytes.Buffer
	printRun(&out, rs)
	if !strings.Contains(out.String(), "around first discontinuity") || !strings.Contains(out.String(), "last_clamp: raw=2.000s") {
		t.Fatalf("run report missing log excerpts:\n%s", out.String())
	}
}

func TestCollect_NoEvents(t *testing.T) {
	rs := collect(1, report.Result{}, report.NewFrameLog(false))
	if rs.firstJump != -1 || rs.jumpContext != nil || rs.clampFrames != nil {
		t.Fatalf("expected empty stats, got %+v", rs)
	}
}

func TestHelpers(t *testing.T) {
	if avg(10, 0) != 0 || avg(10, 4) != 2.5 {
		t.Fatal("avg")
	}
	if ratio(1, 0) != 0 {
		t.Fatal("ratio by zero should be 0")
	}
	if got := avgFrameString(nil); got != "n/a" {
		t.Fatalf("expected n/a, got %s", got)
	}
	if got := joinFrames([]int{4, 8, 15}); got != "4,8,15" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := joinFrames(nil); got != "none" {
		t.Fatalf("unexpected empty join %q", got)
	}
}

func TestRun_ProducesReport(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.Flags(fs)
	if err := fs.Parse([]string{"--scene", "drone"}); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	o := options{runs: 2, frames: 120, seedBase: 1, seedStep: 1, jitter: 0.1, stallEvery: 60, stall: time.Second}
	if err := run(&out, fs, o); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{"scene=drone", "--- Run 1 (seed=1) ---", "--- Run 2 (seed=2) ---", "clamped_at: 60", "=== Aggregate (2 runs) ==="} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}

func TestRun_RejectsBadCounts(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.Flags(fs)
	if err := run(&bytes.Buffer{}, fs, options{runs: 0, frames: 10}); err == nil {
		t.Fatal("expected an error for zero runs")
	}
	if err := run(&bytes.Buffer{}, fs, options{runs: 1, frames: 0}); err == nil {
		t.Fatal("expected an error for zero frames")
	}
}
