// Package view maps world meters to screen pixels for one camera rendered
// into one viewport.
package view

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
)

// ErrInvalidZoom is returned for a camera whose zoom is not strictly positive.
var ErrInvalidZoom = errors.New("camera zoom must be > 0")

// Vec2 is a world-space point in meters (or a screen point in pixels, by context).
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) String() string       { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }

// Dist2 is the squared distance between v and o.
func (v Vec2) Dist2(o Vec2) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y
}

// Point converts to a canvas point.
func (v Vec2) Point() canvas.Point { return canvas.Point{X: v.X, Y: v.Y} }

// Camera is recomputed every frame; it carries no identity between frames.
type Camera struct {
	Center Vec2
	Zoom   float64 // 1 = PixelsPerMeter pixels per meter
}

// Validate enforces Zoom > 0.
func (c Camera) Validate() error {
	if !(c.Zoom > 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidZoom, c.Zoom)
	}
	return nil
}

// Viewport is a screen rectangle in logical pixels.
type Viewport struct {
	X, Y, W, H float64
}

// Center returns the screen-space centre of the viewport.
func (v Viewport) Center() Vec2 {
	return Vec2{v.X + v.W/2, v.Y + v.H/2}
}

// Rect converts to a canvas rectangle.
func (v Viewport) Rect() canvas.Rect {
	return canvas.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H}
}

// Within reports whether v lies fully inside a w x h surface.
func (v Viewport) Within(w, h float64) bool {
	return v.X >= 0 && v.Y >= 0 && v.W >= 0 && v.H >= 0 && v.X+v.W <= w && v.Y+v.H <= h
}

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Contains reports whether p lies inside b (edges included).
func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// WorldViewBounds is the world rectangle visible through vp. The half
// extents are the viewport size divided by the pixel scale, halved.
func WorldViewBounds(cam Camera, vp Viewport, pixelsPerMeter float64) Bounds {
	s := cam.Zoom * pixelsPerMeter
	halfW := vp.W / s / 2
	halfH := vp.H / s / 2
	return Bounds{
		MinX: cam.Center.X - halfW,
		MaxX: cam.Center.X + halfW,
		MinY: cam.Center.Y - halfH,
		MaxY: cam.Center.Y + halfH,
	}
}

// Projection is the world-to-screen map for one draw pass. It is derived per
// pass and never cached across frames.
type Projection struct {
	Camera         Camera
	Viewport       Viewport
	PixelsPerMeter float64
}

// Scale is pixels per meter at the camera's zoom.
func (p Projection) Scale() float64 {
	return p.Camera.Zoom * p.PixelsPerMeter
}

// ToScreen maps a world point to screen pixels; world +Y is up, screen +Y down.
func (p Projection) ToScreen(w Vec2) Vec2 {
	s := p.Scale()
	c := p.Viewport.Center()
	d := w.Sub(p.Camera.Center)
	return Vec2{c.X + d.X*s, c.Y - d.Y*s}
}

// ToWorld is the exact inverse of ToScreen.
func (p Projection) ToWorld(sc Vec2) Vec2 {
	s := p.Scale()
	c := p.Viewport.Center()
	return Vec2{
		p.Camera.Center.X + (sc.X-c.X)/s,
		p.Camera.Center.Y - (sc.Y-c.Y)/s,
	}
}

// Bounds is WorldViewBounds for this projection.
func (p Projection) Bounds() Bounds {
	return WorldViewBounds(p.Camera, p.Viewport, p.PixelsPerMeter)
}

// StrokeWidth converts a desired on-screen width in pixels to meters so
// lines keep the same thickness at every zoom.
func (p Projection) StrokeWidth(px float64) float64 {
	return px / p.Scale()
}

// GeoM returns the same map as ToScreen in matrix form.
func (p Projection) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-p.Camera.Center.X, -p.Camera.Center.Y)
	g.Scale(p.Scale(), -p.Scale())
	c := p.Viewport.Center()
	g.Translate(c.X, c.Y)
	return g
}
