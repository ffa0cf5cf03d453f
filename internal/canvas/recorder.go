package canvas

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// OpKind identifies a recorded primitive.
type OpKind int

const (
	OpClear OpKind = iota
	OpLine
	OpStrokePolygon
	OpFillPolygon
	OpCircle
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpLine:
		return "line"
	case OpStrokePolygon:
		return "stroke_polygon"
	case OpFillPolygon:
		return "fill_polygon"
	case OpCircle:
		return "circle"
	}
	return "unknown"
}

// Op is one recorded primitive. Points, Width and Radius are in device
// pixels, already mapped through the transform active at draw time.
type Op struct {
	Kind   OpKind
	Points []Point
	Width  float64
	Radius float64
	Color  color.Color
	Clip   Rect
	Depth  int
}

// Recorder is a Canvas that keeps every primitive instead of rasterizing.
type Recorder struct {
	w, h     float64
	st       stack
	Ops      []Op
	MaxDepth int
}

// NewRecorder creates a recorder for a w x h surface with an identity base
// transform.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{w: w, h: h, st: newStack(ebiten.GeoM{}, Rect{W: w, H: h})}
}

// Reset drops recorded ops and returns to the initial state.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.MaxDepth = 0
	r.st = newStack(ebiten.GeoM{}, Rect{W: r.w, H: r.h})
}

// Current returns the active transform/clip state.
func (r *Recorder) Current() State { return r.st.cur }

func (r *Recorder) Size() (float64, float64) { return r.w, r.h }

func (r *Recorder) Clear(c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpClear, Color: c, Clip: Rect{W: r.w, H: r.h}})
}

func (r *Recorder) Save() {
	r.st.save()
	if d := r.st.depth(); d > r.MaxDepth {
		r.MaxDepth = d
	}
}

func (r *Recorder) Restore()               { r.st.restore() }
func (r *Recorder) Depth() int             { return r.st.depth() }
func (r *Recorder) ClipRect(rc Rect)       { r.st.clip(rc) }
func (r *Recorder) Translate(x, y float64) { r.st.translate(x, y) }
func (r *Recorder) Scale(sx, sy float64)   { r.st.scale(sx, sy) }
func (r *Recorder) Rotate(theta float64)   { r.st.rotate(theta) }
func (r *Recorder) SetLineWidth(w float64) { r.st.cur.LineWidth = w }

func (r *Recorder) add(op Op) {
	op.Clip = r.st.cur.Clip
	op.Depth = r.st.depth()
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1 float64, c color.Color) {
	r.add(Op{
		Kind:   OpLine,
		Points: r.st.applyAll([]Point{{x0, y0}, {x1, y1}}),
		Width:  r.st.deviceLineWidth(),
		Color:  c,
	})
}

func (r *Recorder) StrokePolygon(pts []Point, c color.Color) {
	r.add(Op{Kind: OpStrokePolygon, Points: r.st.applyAll(pts), Width: r.st.deviceLineWidth(), Color: c})
}

func (r *Recorder) FillPolygon(pts []Point, c color.Color) {
	r.add(Op{Kind: OpFillPolygon, Points: r.st.applyAll(pts), Color: c})
}

func (r *Recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.FillPolygon(rectCorners(x, y, w, h), c)
}

func (r *Recorder) StrokeRect(x, y, w, h float64, c color.Color) {
	r.StrokePolygon(rectCorners(x, y, w, h), c)
}

func (r *Recorder) FillCircle(x, y, rad float64, c color.Color) {
	cx, cy := r.st.apply(x, y)
	r.add(Op{Kind: OpCircle, Points: []Point{{cx, cy}}, Radius: rad * r.st.linearScale(), Color: c})
}

// Count returns how many ops of kind k were recorded.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}
