package app

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/loop"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

const (
	pickRadiusPx = 16
	inspWidth    = 230
	inspLineH    = 14
)

// Inspector holds the entity selected by clicking a view.
type Inspector struct {
	selected int // -1 when nothing is selected
}

// pickEntity returns the entity nearest to screen point (sx, sy) within
// pickRadiusPx of it, using the inverse of the main view projection.
func pickEntity(p view.Projection, snap sim.Snapshot, sx, sy float64) (int, bool) {
	w := p.ToWorld(view.Vec2{X: sx, Y: sy})
	r := p.StrokeWidth(pickRadiusPx)
	r2 := r * r
	best, best2 := -1, math.MaxFloat64
	for i, e := range snap.Entities {
		// Avoid sqrt by comparing squared distances to the squared radius.
		d2 := w.Dist2(view.Vec2{X: e.X, Y: e.Y})
		if d2 < r2 && d2 < best2 {
			best, best2 = i, d2
		}
	}
	return best, best >= 0
}

// click selects the entity under the cursor, or clears the selection.
// topView returns the view drawn last under (sx, sy). Insets are drawn over
// the main view, so they are checked first. Views that failed are skipped.
func topView(views []compose.View, sx, sy float64) (compose.View, bool) {
	for i := len(views) - 1; i >= 0; i-- {
		v := views[i]
		if v.Err != nil {
			continue
		}
		if v.Projection.Viewport.Rect().Contains(sx, sy) {
			return v, true
		}
	}
	return compose.View{}, false
}

func (in *Inspector) click(p view.Projection, snap sim.Snapshot, sx, sy float64) bool {
	i, ok := pickEntity(p, snap, sx, sy)
	in.selected = i
	return ok
}

// inspectorLines is the panel text for entity i.
func inspectorLines(f loop.Frame, i int) []string {
	e, ok := f.Snapshot.Entity(i)
	if !ok {
		return nil
	}
	return []string{
		fmt.Sprintf("ENTITY E%d", i),
		fmt.Sprintf("x       %10.2f m", e.X),
		fmt.Sprintf("y       %10.2f m", e.Y),
		fmt.Sprintf("heading %10.1f deg", e.Heading*180/math.Pi),
		fmt.Sprintf("sim t   %10.2f s", f.Snapshot.SimTime),
	}
}

// readout is the plain-text snapshot copied to the clipboard.
func readout(scene string, f loop.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scene=%s steps=%d sim_time=%.3f carry=%.4f axes=(%.2f, %.2f)\n",
		scene, f.Snapshot.Steps, f.Snapshot.SimTime, f.Carry, f.Axes.Axis1, f.Axes.Axis2)
	for i, e := range f.Snapshot.Entities {
		fmt.Fprintf(&sb, "E%d x=%.3f y=%.3f heading=%.4f\n", i, e.X, e.Y, e.Heading)
	}
	return sb.String()
}

// draw renders the inspector panel at the top centre of the surface.
func (in *Inspector) draw(screen *ebiten.Image, t *textDrawer, f loop.Frame, w float64) {
	lines := inspectorLines(f, in.selected)
	if lines == nil {
		return
	}
	ds := t.ds
	x := (w - inspWidth) / 2
	h := float64(len(lines)*inspLineH + 8)
	vector.FillRect(screen, float32(x*ds), float32(8*ds), float32(inspWidth*ds), float32(h*ds),
		color.RGBA{R: 12, G: 16, B: 22, A: 235}, false)
	vector.StrokeRect(screen, float32(x*ds), float32(8*ds), float32(inspWidth*ds), float32(h*ds),
		float32(ds), color.RGBA{R: 60, G: 90, B: 120, A: 255}, false)
	for i, l := range lines {
		c := hudText
		if i == 0 {
			c = hudAccent
		}
		t.draw(screen, l, x+8, 12+float64(i*inspLineH), c)
	}
}
