// Package render draws the world: background grid, ground line, markers and
// entity glyphs. Everything here runs inside a view.Pass, so coordinates are
// world meters.
package render

import (
	"math"

	"github.com/Garsondee/Flight-Scope/internal/view"
)

// Segment is a world-space line.
type Segment struct {
	A, B view.Vec2
}

// gridIndexRange returns the first and last multiple index of step inside
// [lo, hi]. last < first means no line falls in the range. The division can
// round across a multiple, so the indices are nudged until k*step is inside.
func gridIndexRange(lo, hi, step float64) (first, last int) {
	first, last = int(math.Ceil(lo/step)), int(math.Floor(hi/step))
	for float64(first)*step < lo {
		first++
	}
	for float64(last)*step > hi {
		last--
	}
	return first, last
}

// GridLines returns the vertical lines at x = k*step and horizontal lines at
// y = k*step that fall inside b, each spanning b on the other axis.
// Vertical lines come first, both groups in increasing order. A non-positive
// or non-finite step yields nothing.
func GridLines(b view.Bounds, step float64) []Segment {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil
	}
	x0, x1 := gridIndexRange(b.MinX, b.MaxX, step)
	y0, y1 := gridIndexRange(b.MinY, b.MaxY, step)

	n := 0
	if x1 >= x0 {
		n += x1 - x0 + 1
	}
	if y1 >= y0 {
		n += y1 - y0 + 1
	}
	out := make([]Segment, 0, n)
	for k := x0; k <= x1; k++ {
		x := float64(k) * step
		out = append(out, Segment{A: view.Vec2{X: x, Y: b.MinY}, B: view.Vec2{X: x, Y: b.MaxY}})
	}
	for k := y0; k <= y1; k++ {
		y := float64(k) * step
		out = append(out, Segment{A: view.Vec2{X: b.MinX, Y: y}, B: view.Vec2{X: b.MaxX, Y: y}})
	}
	return out
}

// GroundLine returns the horizontal line y spanning the visible X range,
// or false when y is not visible.
func GroundLine(b view.Bounds, y float64) (Segment, bool) {
	if y < b.MinY || y > b.MaxY {
		return Segment{}, false
	}
	return Segment{A: view.Vec2{X: b.MinX, Y: y}, B: view.Vec2{X: b.MaxX, Y: y}}, true
}
