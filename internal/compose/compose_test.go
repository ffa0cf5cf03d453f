package compose

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

func pursuitLayout() Layout {
	return Layout{
		PixelsPerMeter: 0.25,
		Main:           MainCamera{Policy: PolicyFixed, Zoom: 1.5},
		Insets: []InsetSpec{
			{Name: "target", Anchor: TopLeft, Entity: sim.PursuitTarget, Zoom: 2.5},
			{Name: "interceptor", Anchor: TopRight, Entity: sim.PursuitInterceptor, Zoom: 2.5},
		},
		InsetSize:    90,
		InsetPadding: 8,
	}
}

func pursuitScene() render.Scene {
	return render.Scene{
		GridStep: 100,
		Ground:   true,
		Glyphs:   []render.Glyph{render.DartGlyph(render.White), render.DartGlyph(render.TargetColor)},
		Order:    []int{sim.PursuitTarget, sim.PursuitInterceptor},
	}
}

func twoEntities() sim.Snapshot {
	return sim.Snapshot{Entities: []sim.EntityState{
		{X: 1200, Y: -500, Heading: 2},
		{X: -500, Y: 0, Heading: 0.26},
	}}
}

func TestInsetSize(t *testing.T) {
	cases := []struct {
		cfg, pad, w, h, want float64
	}{
		{170, 12, 150, 150, 126},
		{90, 8, 800, 600, 90},
		{90, 8, 10, 600, 0},
		{90, 8, 16, 16, 0},
		{90, 8, 100, 50, 34},
	}
	for _, c := range cases {
		if got := InsetSize(c.cfg, c.pad, c.w, c.h); got != c.want {
			t.Fatalf("InsetSize(%v, %v, %v, %v) = %v, want %v", c.cfg, c.pad, c.w, c.h, got, c.want)
		}
	}
}

func TestViews_MainFirstThenInsetsInOrder(t *testing.T) {
	c := New(pursuitLayout(), render.Renderer{Scene: pursuitScene()})
	views := c.Views(800, 600, twoEntities())
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	if views[0].Inset || views[0].Projection.Viewport != (view.Viewport{W: 800, H: 600}) {
		t.Fatalf("main view should cover the surface: %+v", views[0])
	}
	if views[1].Name != "target" || views[2].Name != "interceptor" {
		t.Fatalf("insets out of order: %q, %q", views[1].Name, views[2].Name)
	}
	left, right := views[1].Projection.Viewport, views[2].Projection.Viewport
	if left.X != 8 || left.Y != 8 || left.W != 90 {
		t.Fatalf("unexpected left inset %+v", left)
	}
	if right.X != 800-90-8 || right.Y != 8 {
		t.Fatalf("unexpected right inset %+v", right)
	}
	if views[1].Projection.Camera.Center != (view.Vec2{X: -500, Y: 0}) {
		t.Fatalf("target inset should centre on the target, got %v", views[1].Projection.Camera.Center)
	}
}

func TestViews_InsetsStayInsideSurface(t *testing.T) {
	l := pursuitLayout()
	l.Insets = append(l.Insets,
		InsetSpec{Name: "bl", Anchor: BottomLeft, Zoom: 1},
		InsetSpec{Name: "br", Anchor: BottomRight, Zoom: 1})
	c := New(l, render.Renderer{})
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 300; i++ {
		w, h := rng.Float64()*400, rng.Float64()*400
		for _, v := range c.Views(w, h, twoEntities()) {
			if !v.Projection.Viewport.Within(w, h) {
				t.Fatalf("%vx%v: view %q viewport %+v leaves the surface", w, h, v.Name, v.Projection.Viewport)
			}
		}
	}
}

func TestViews_TinySurfaceDropsInsets(t *testing.T) {
	c := New(pursuitLayout(), render.Renderer{})
	if got := len(c.Views(12, 12, twoEntities())); got != 1 {
		t.Fatalf("expected only the main view, got %d", got)
	}
}

func TestMainCamera_Policies(t *testing.T) {
	snap := twoEntities()
	track := MainCamera{Policy: PolicyTrack, Entity: 1, Offset: view.Vec2{X: 0, Y: 10}}
	if got, _ := track.mainCenter(snap); got != (view.Vec2{X: -500, Y: 10}) {
		t.Fatalf("track: got %v", got)
	}
	half := MainCamera{Policy: PolicyTrack, Entity: 0, Weight: 0.5}
	if got, _ := half.mainCenter(snap); got != (view.Vec2{X: 600, Y: -250}) {
		t.Fatalf("weighted track: got %v", got)
	}
	centroid := MainCamera{Policy: PolicyCentroid}
	if got, _ := centroid.mainCenter(snap); got != (view.Vec2{X: 350, Y: -250}) {
		t.Fatalf("centroid: got %v", got)
	}
	fixed := MainCamera{Center: view.Vec2{X: 3, Y: 4}}
	if got, _ := fixed.mainCenter(snap); got != (view.Vec2{X: 3, Y: 4}) {
		t.Fatalf("fixed: got %v", got)
	}
	if _, err := (MainCamera{Policy: PolicyTrack, Entity: 9}).mainCenter(snap); !errors.Is(err, ErrMissingEntity) {
		t.Fatalf("expected ErrMissingEntity, got %v", err)
	}
}

func TestViews_FocusPlacesGroundNearBottom(t *testing.T) {
	l := Layout{
		PixelsPerMeter: 60,
		Main:           MainCamera{Zoom: 1, Focus: view.Vec2{X: 0.5, Y: 0.75}},
	}
	views := New(l, render.Renderer{}).Views(800, 600, sim.Snapshot{})
	got := views[0].Projection.ToScreen(view.Vec2{})
	if math.Abs(got.X-400) > 1e-9 || math.Abs(got.Y-450) > 1e-9 {
		t.Fatalf("world origin should land at (400, 450), got %v", got)
	}
}

func TestDraw_OrderAndClipping(t *testing.T) {
	rec := canvas.NewRecorder(800, 600)
	c := New(pursuitLayout(), render.Renderer{Scene: pursuitScene()})
	if err := c.Draw(rec, twoEntities()); err != nil {
		t.Fatal(err)
	}
	if rec.Ops[0].Kind != canvas.OpClear {
		t.Fatal("frame should start with a clear")
	}
	if rec.Depth() != 0 {
		t.Fatalf("unbalanced save/restore, depth %d", rec.Depth())
	}

	// Locate the two inset panels: filled rects at the inset origins.
	panels := []int{}
	for i, op := range rec.Ops {
		if op.Kind == canvas.OpFillPolygon && op.Color == c.PanelColor {
			panels = append(panels, i)
		}
	}
	if len(panels) != 2 {
		t.Fatalf("expected 2 inset panels, got %d", len(panels))
	}
	left := canvas.Rect{X: 8, Y: 8, W: 90, H: 90}
	for i := panels[0] + 1; i < panels[1]; i++ {
		op := rec.Ops[i]
		if op.Kind == canvas.OpStrokePolygon && op.Color == c.BorderColor {
			continue
		}
		if op.Clip != left {
			t.Fatalf("op %d (%v) after the left panel should be clipped to the inset, got %+v", i, op.Kind, op.Clip)
		}
	}
	for i := 1; i < panels[0]; i++ {
		if op := rec.Ops[i]; op.Clip != (canvas.Rect{W: 800, H: 600}) {
			t.Fatalf("main view op %d clipped to %+v", i, op.Clip)
		}
	}
}

func TestDraw_FailingViewDoesNotStopOthers(t *testing.T) {
	l := pursuitLayout()
	l.Insets[0].Entity = 7
	rec := canvas.NewRecorder(800, 600)
	c := New(l, render.Renderer{Scene: pursuitScene()})
	err := c.Draw(rec, twoEntities())
	if !errors.Is(err, ErrMissingEntity) {
		t.Fatalf("expected ErrMissingEntity, got %v", err)
	}

	panels := 0
	right := canvas.Rect{X: 800 - 90 - 8, Y: 8, W: 90, H: 90}
	insetOps := 0
	for _, op := range rec.Ops {
		if op.Kind == canvas.OpFillPolygon && op.Color == c.PanelColor {
			panels++
		}
		if op.Clip == right {
			insetOps++
		}
	}
	if panels != 1 || insetOps == 0 {
		t.Fatalf("the healthy inset should still draw (panels=%d, ops=%d)", panels, insetOps)
	}
	if rec.Depth() != 0 {
		t.Fatalf("depth %d after a failing view", rec.Depth())
	}
}

func TestDraw_BadEntityReportedPerView(t *testing.T) {
	snap := twoEntities()
	snap.Entities[0].X = math.NaN()
	rec := canvas.NewRecorder(800, 600)
	err := New(pursuitLayout(), render.Renderer{Scene: pursuitScene()}).Draw(rec, snap)
	if !errors.Is(err, render.ErrBadEntity) {
		t.Fatalf("expected ErrBadEntity, got %v", err)
	}
	if rec.Count(canvas.OpFillPolygon) < 3 {
		t.Fatal("the finite entity should still be drawn in each view")
	}
}

func TestParse(t *testing.T) {
	if p, err := ParseCameraPolicy("Centroid"); err != nil || p != PolicyCentroid {
		t.Fatalf("ParseCameraPolicy: %v %v", p, err)
	}
	if _, err := ParseCameraPolicy("orbit"); err == nil {
		t.Fatal("expected an error for an unknown policy")
	}
	if a, err := ParseAnchor("bottom-right"); err != nil || a != BottomRight {
		t.Fatalf("ParseAnchor: %v %v", a, err)
	}
	if TopRight.String() != "top-right" || PolicyTrack.String() != "track" {
		t.Fatal("String forms should round trip")
	}
}
