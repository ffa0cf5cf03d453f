package view

import (
	"fmt"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
)

// Pass is one camera/viewport draw cycle on a canvas. Between BeginCamera
// and End every coordinate given to Canvas is in world meters.
type Pass struct {
	Canvas     canvas.Canvas
	Projection Projection
	// StrokeWidth is one screen pixel expressed in meters.
	StrokeWidth float64

	depth int
	ended bool
}

// BeginCamera saves the canvas state, clips to the viewport and installs
// the world transform: origin at the viewport centre, scale zoom*ppm with
// the Y axis flipped, then translated so the camera centre sits at the
// origin. The returned Pass must be ended exactly once; End is safe to defer.
func BeginCamera(c canvas.Canvas, p Projection) (*Pass, error) {
	if err := p.Camera.Validate(); err != nil {
		return nil, err
	}
	if !(p.PixelsPerMeter > 0) {
		return nil, fmt.Errorf("pixels per meter must be > 0 (got %v)", p.PixelsPerMeter)
	}

	c.Save()
	pass := &Pass{Canvas: c, Projection: p, depth: c.Depth()}

	vp := p.Viewport
	c.ClipRect(vp.Rect())
	center := vp.Center()
	c.Translate(center.X, center.Y)
	s := p.Scale()
	c.Scale(s, -s)
	c.Translate(-p.Camera.Center.X, -p.Camera.Center.Y)

	pass.StrokeWidth = p.StrokeWidth(1)
	c.SetLineWidth(pass.StrokeWidth)
	return pass, nil
}

// End pops the state pushed by BeginCamera. Nested saves left open by the
// draw code are unwound too so the next pass starts clean.
func (p *Pass) End() {
	if p == nil || p.ended {
		return
	}
	p.ended = true
	for p.Canvas.Depth() >= p.depth && p.Canvas.Depth() > 0 {
		p.Canvas.Restore()
	}
}

// Bounds is the visible world rectangle for this pass.
func (p *Pass) Bounds() Bounds {
	return p.Projection.Bounds()
}

// Pixels converts a pixel length to meters at this pass's scale.
func (p *Pass) Pixels(px float64) float64 {
	return p.Projection.StrokeWidth(px)
}

// WithCamera runs fn inside a BeginCamera/End pair. The canvas state is
// restored whether fn returns normally, returns an error or panics.
func WithCamera(c canvas.Canvas, p Projection, fn func(*Pass) error) error {
	pass, err := BeginCamera(c, p)
	if err != nil {
		return err
	}
	defer pass.End()
	return fn(pass)
}
