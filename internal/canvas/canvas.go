// Package canvas is the immediate-mode drawing boundary: a 2D surface with a
// save/restore stack of affine transforms, rectangular clipping and simple
// stroke/fill primitives. Coordinates passed to drawing calls are in the
// current user space; implementations map them through the active transform.
package canvas

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Point is a 2D coordinate in whatever space the caller is drawing in.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the overlap of r and o (zero-sized when disjoint).
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.W, o.X+o.W)
	y1 := math.Min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether (x, y) lies inside r (right/bottom edges excluded).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Canvas is implemented by every drawing backend.
type Canvas interface {
	// Size is the logical drawing size (layout units, not backing pixels).
	Size() (w, h float64)
	// Clear fills the whole surface, ignoring clip and transform.
	Clear(c color.Color)

	Save()
	Restore()
	// Depth is the number of outstanding Save calls.
	Depth() int

	// ClipRect narrows the clip to r, given in current user space.
	ClipRect(r Rect)
	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(theta float64)
	// SetLineWidth sets the stroke width in current user units.
	SetLineWidth(w float64)

	StrokeLine(x0, y0, x1, y1 float64, c color.Color)
	StrokePolygon(pts []Point, c color.Color)
	FillPolygon(pts []Point, c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h float64, c color.Color)
	FillCircle(x, y, r float64, c color.Color)
}

// State is one entry of the transform/clip stack.
type State struct {
	GeoM      ebiten.GeoM
	Clip      Rect // device pixels
	LineWidth float64
}

// stack carries the transform and clip bookkeeping shared by all backends.
// New transforms are applied before the existing one, matching canvas
// semantics: Translate then Scale means points are scaled first.
type stack struct {
	cur   State
	saved []State
}

func newStack(base ebiten.GeoM, clip Rect) stack {
	return stack{cur: State{GeoM: base, Clip: clip, LineWidth: 1}}
}

func (s *stack) save() {
	s.saved = append(s.saved, s.cur)
}

func (s *stack) restore() {
	if len(s.saved) == 0 {
		return
	}
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

func (s *stack) depth() int {
	return len(s.saved)
}

func (s *stack) premul(t ebiten.GeoM) {
	t.Concat(s.cur.GeoM)
	s.cur.GeoM = t
}

func (s *stack) translate(x, y float64) {
	var t ebiten.GeoM
	t.Translate(x, y)
	s.premul(t)
}

func (s *stack) scale(sx, sy float64) {
	var t ebiten.GeoM
	t.Scale(sx, sy)
	s.premul(t)
}

func (s *stack) rotate(theta float64) {
	var t ebiten.GeoM
	t.Rotate(theta)
	s.premul(t)
}

func (s *stack) apply(x, y float64) (float64, float64) {
	return s.cur.GeoM.Apply(x, y)
}

func (s *stack) applyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = s.apply(p.X, p.Y)
	}
	return out
}

// linearScale is the geometric mean scale of the current transform, used to
// convert user-space lengths (line width, radius) to device pixels.
func (s *stack) linearScale() float64 {
	g := s.cur.GeoM
	det := g.Element(0, 0)*g.Element(1, 1) - g.Element(0, 1)*g.Element(1, 0)
	return math.Sqrt(math.Abs(det))
}

func (s *stack) deviceLineWidth() float64 {
	return s.cur.LineWidth * s.linearScale()
}

func (s *stack) clip(r Rect) {
	corners := s.applyAll([]Point{
		{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X, r.Y + r.H}, {r.X + r.W, r.Y + r.H},
	})
	b := bounds(corners)
	s.cur.Clip = s.cur.Clip.Intersect(b)
}

func rectCorners(x, y, w, h float64) []Point {
	return []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
}

func bounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
