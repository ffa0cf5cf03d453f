package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

// ErrBadEntity is reported for entities whose state cannot be drawn.
var ErrBadEntity = errors.New("entity state is not finite")

// Palette colours.
var (
	Background  = color.RGBA{R: 0x19, G: 0x19, B: 0x19, A: 0xff}
	GridColor   = color.RGBA{R: 0x38, G: 0x38, B: 0x38, A: 0xff}
	GroundColor = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	TargetColor = color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff}
	White       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Scene is the static description of what a world contains besides the
// entities' live state.
type Scene struct {
	Name     string
	GridStep float64 // meters; 0 disables the grid
	GroundY  float64
	Ground   bool
	Markers  []Marker
	// Glyphs is indexed by entity. Entities past the end use the last glyph.
	Glyphs []Glyph
	// Order lists entity indices back to front. Empty means index order.
	Order []int
}

// Glyph returns the glyph for entity i.
func (s Scene) Glyph(i int) Glyph {
	if len(s.Glyphs) == 0 {
		return DartGlyph(White)
	}
	if i < len(s.Glyphs) {
		return s.Glyphs[i]
	}
	return s.Glyphs[len(s.Glyphs)-1]
}

// drawOrder returns entity indices back to front for n entities.
func (s Scene) drawOrder(n int) []int {
	if len(s.Order) == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, n)
	for _, i := range s.Order {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	return out
}

// Renderer draws a Scene for a snapshot. It holds no per-frame state.
type Renderer struct {
	Scene Scene
}

// Draw renders grid, ground, markers and entities in that order. Entities
// with non-finite state are skipped and reported; the rest still draw.
func (r Renderer) Draw(p *view.Pass, snap sim.Snapshot) error {
	b := p.Bounds()
	c := p.Canvas
	c.SetLineWidth(p.StrokeWidth)

	for _, s := range GridLines(b, r.Scene.GridStep) {
		c.StrokeLine(s.A.X, s.A.Y, s.B.X, s.B.Y, GridColor)
	}
	if r.Scene.Ground {
		if s, ok := GroundLine(b, r.Scene.GroundY); ok {
			c.StrokeLine(s.A.X, s.A.Y, s.B.X, s.B.Y, GroundColor)
		}
	}
	for _, m := range r.Scene.Markers {
		m.Draw(p)
	}

	var errs []error
	for _, i := range r.Scene.drawOrder(len(snap.Entities)) {
		e := snap.Entities[i]
		if !finite(e.X) || !finite(e.Y) || !finite(e.Heading) {
			errs = append(errs, fmt.Errorf("entity %d %+v: %w", i, e, ErrBadEntity))
			continue
		}
		r.Scene.Glyph(i).Draw(p, view.Vec2{X: e.X, Y: e.Y}, e.Heading)
	}
	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
