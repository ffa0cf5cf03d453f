package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Ebiten draws onto an *ebiten.Image. The image is the backing store in
// device pixels; callers work in logical units and the device scale factor
// is folded into the base transform.
type Ebiten struct {
	dst         *ebiten.Image
	deviceScale float64
	st          stack
}

// NewEbiten wraps dst. deviceScale is the device-pixel ratio (1 on ordinary
// displays, 2 on most HiDPI panels); values <= 0 are treated as 1.
func NewEbiten(dst *ebiten.Image, deviceScale float64) *Ebiten {
	if deviceScale <= 0 {
		deviceScale = 1
	}
	b := dst.Bounds()
	var base ebiten.GeoM
	base.Scale(deviceScale, deviceScale)
	return &Ebiten{
		dst:         dst,
		deviceScale: deviceScale,
		st: newStack(base, Rect{
			X: float64(b.Min.X), Y: float64(b.Min.Y),
			W: float64(b.Dx()), H: float64(b.Dy()),
		}),
	}
}

func (e *Ebiten) Size() (float64, float64) {
	b := e.dst.Bounds()
	return float64(b.Dx()) / e.deviceScale, float64(b.Dy()) / e.deviceScale
}

func (e *Ebiten) Clear(c color.Color) { e.dst.Fill(c) }

func (e *Ebiten) Save()                  { e.st.save() }
func (e *Ebiten) Restore()               { e.st.restore() }
func (e *Ebiten) Depth() int             { return e.st.depth() }
func (e *Ebiten) ClipRect(r Rect)        { e.st.clip(r) }
func (e *Ebiten) Translate(x, y float64) { e.st.translate(x, y) }
func (e *Ebiten) Scale(sx, sy float64)   { e.st.scale(sx, sy) }
func (e *Ebiten) Rotate(theta float64)   { e.st.rotate(theta) }
func (e *Ebiten) SetLineWidth(w float64) { e.st.cur.LineWidth = w }

// target returns the clipped sub-image, or nil when the clip is empty.
// Sub-images share the parent's coordinate system, so device coordinates
// are used unchanged.
func (e *Ebiten) target() *ebiten.Image {
	r := deviceClip(e.st.cur.Clip)
	if r.Empty() {
		return nil
	}
	return e.dst.SubImage(r).(*ebiten.Image)
}

// clipSnap absorbs float error in clip edges that sit on a device pixel.
const clipSnap = 1e-6

// deviceClip rounds c inward to whole device pixels, so a viewport at a
// fractional position never draws outside its rectangle.
func deviceClip(c Rect) image.Rectangle {
	if c.Empty() {
		return image.Rectangle{}
	}
	// Not image.Rect: it would swap the corners of a sub-pixel clip.
	return image.Rectangle{
		Min: image.Pt(int(math.Ceil(c.X-clipSnap)), int(math.Ceil(c.Y-clipSnap))),
		Max: image.Pt(int(math.Floor(c.X+c.W+clipSnap)), int(math.Floor(c.Y+c.H+clipSnap))),
	}
}

func (e *Ebiten) StrokeLine(x0, y0, x1, y1 float64, c color.Color) {
	dst := e.target()
	if dst == nil {
		return
	}
	sx0, sy0 := e.st.apply(x0, y0)
	sx1, sy1 := e.st.apply(x1, y1)
	vector.StrokeLine(dst, float32(sx0), float32(sy0), float32(sx1), float32(sy1),
		float32(e.st.deviceLineWidth()), c, true)
}

func (e *Ebiten) path(pts []Point) *vector.Path {
	dev := e.st.applyAll(pts)
	var p vector.Path
	for i, pt := range dev {
		if i == 0 {
			p.MoveTo(float32(pt.X), float32(pt.Y))
			continue
		}
		p.LineTo(float32(pt.X), float32(pt.Y))
	}
	p.Close()
	return &p
}

func drawOptions(c color.Color) *vector.DrawPathOptions {
	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(c)
	return op
}

func (e *Ebiten) StrokePolygon(pts []Point, c color.Color) {
	dst := e.target()
	if dst == nil || len(pts) < 2 {
		return
	}
	vector.StrokePath(dst, e.path(pts),
		&vector.StrokeOptions{Width: float32(e.st.deviceLineWidth())}, drawOptions(c))
}

func (e *Ebiten) FillPolygon(pts []Point, c color.Color) {
	dst := e.target()
	if dst == nil || len(pts) < 3 {
		return
	}
	vector.FillPath(dst, e.path(pts), &vector.FillOptions{}, drawOptions(c))
}

func (e *Ebiten) FillRect(x, y, w, h float64, c color.Color) {
	e.FillPolygon(rectCorners(x, y, w, h), c)
}

func (e *Ebiten) StrokeRect(x, y, w, h float64, c color.Color) {
	e.StrokePolygon(rectCorners(x, y, w, h), c)
}

func (e *Ebiten) FillCircle(x, y, r float64, c color.Color) {
	dst := e.target()
	if dst == nil {
		return
	}
	cx, cy := e.st.apply(x, y)
	vector.FillCircle(dst, float32(cx), float32(cy), float32(r*e.st.linearScale()), c, true)
}
