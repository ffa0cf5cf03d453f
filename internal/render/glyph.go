package render

import (
	"image/color"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

// GlyphKind selects the entity shape.
type GlyphKind int

const (
	// GlyphQuad is a drone body with two props. Heading 0 is nose up.
	GlyphQuad GlyphKind = iota
	// GlyphDart is an elongated triangle. Heading 0 points along +X.
	GlyphDart
)

func (k GlyphKind) String() string {
	switch k {
	case GlyphQuad:
		return "quad"
	case GlyphDart:
		return "dart"
	}
	return "unknown"
}

// ParseGlyphKind is the inverse of String.
func ParseGlyphKind(s string) (GlyphKind, bool) {
	switch s {
	case "quad":
		return GlyphQuad, true
	case "dart":
		return GlyphDart, true
	}
	return 0, false
}

// Glyph describes how one entity is drawn. Sizes are meters except
// PropRadiusPx, which stays constant on screen.
type Glyph struct {
	Kind   GlyphKind
	Length float64 // body length along the nose axis (dart) or span (quad)
	Width  float64
	Arm    float64 // quad: prop-to-prop distance

	PropRadiusPx float64
	Fill         color.RGBA
	Accent       color.RGBA
}

// QuadGlyph is the 0.25 m x 0.05 m bicopter body with props arm apart.
func QuadGlyph(arm float64) Glyph {
	return Glyph{
		Kind:         GlyphQuad,
		Length:       0.25,
		Width:        0.05,
		Arm:          arm,
		PropRadiusPx: 4,
		Fill:         color.RGBA{R: 0x66, G: 0xd9, B: 0xef, A: 0xff},
		Accent:       color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// DartGlyph is a 30 m x 10 m triangle in fill colour c.
func DartGlyph(c color.RGBA) Glyph {
	return Glyph{Kind: GlyphDart, Length: 30, Width: 10, Fill: c, Accent: c}
}

// Draw renders g at world position pos rotated by heading.
func (g Glyph) Draw(p *view.Pass, pos view.Vec2, heading float64) {
	c := p.Canvas
	c.Save()
	defer c.Restore()
	c.Translate(pos.X, pos.Y)
	c.Rotate(heading)

	switch g.Kind {
	case GlyphQuad:
		c.FillRect(-g.Length/2, -g.Width/2, g.Length, g.Width, g.Fill)
		r := p.Pixels(g.PropRadiusPx)
		c.FillCircle(g.Arm/2, 0, r, g.Accent)
		c.FillCircle(-g.Arm/2, 0, r, g.Accent)
	case GlyphDart:
		pts := []canvas.Point{
			{X: g.Length / 2, Y: 0},
			{X: -g.Length / 2, Y: g.Width / 2},
			{X: -g.Length / 2, Y: -g.Width / 2},
		}
		c.FillPolygon(pts, g.Fill)
		c.SetLineWidth(p.StrokeWidth)
		c.StrokePolygon(pts, g.Accent)
	}
}

// Marker is a fixed crosshair in world space, sized in pixels.
type Marker struct {
	Name   string
	Pos    view.Vec2
	SizePx float64
	Color  color.RGBA
}

// Draw renders the crosshair.
func (m Marker) Draw(p *view.Pass) {
	h := p.Pixels(m.SizePx) / 2
	p.Canvas.SetLineWidth(p.StrokeWidth)
	p.Canvas.StrokeLine(m.Pos.X-h, m.Pos.Y, m.Pos.X+h, m.Pos.Y, m.Color)
	p.Canvas.StrokeLine(m.Pos.X, m.Pos.Y-h, m.Pos.X, m.Pos.Y+h, m.Color)
}
