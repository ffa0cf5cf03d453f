package compose

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

// View is one camera/viewport pair of the frame.
type View struct {
	Name       string
	Inset      bool
	Projection view.Projection
	// Err is set when the view could not resolve its camera; it is still
	// listed so the frame layout stays stable.
	Err error
}

// Composer draws a frame from a Layout and a Renderer.
type Composer struct {
	Layout   Layout
	Renderer render.Renderer

	PanelColor  color.RGBA
	BorderColor color.RGBA
}

// New returns a composer with the default panel colours.
func New(l Layout, r render.Renderer) *Composer {
	return &Composer{
		Layout:      l,
		Renderer:    r,
		PanelColor:  render.Background,
		BorderColor: color.RGBA{A: 0x5a},
	}
}

// Views lists the frame's views for a w x h surface: the main view first,
// covering the whole surface, then the insets in configured order. Insets
// that cannot fit are left out.
func (c *Composer) Views(w, h float64, snap sim.Snapshot) []View {
	l := c.Layout
	out := make([]View, 0, 1+len(l.Insets))

	main := View{Name: "main"}
	center, err := l.Main.mainCenter(snap)
	main.Err = err
	cam := view.Camera{Center: center, Zoom: l.Main.Zoom}
	cam.Center = cam.Center.Add(l.Main.focusShift(w, h, cam.Zoom*l.PixelsPerMeter))
	main.Projection = view.Projection{
		Camera:         cam,
		Viewport:       view.Viewport{W: w, H: h},
		PixelsPerMeter: l.PixelsPerMeter,
	}
	out = append(out, main)

	size := InsetSize(l.InsetSize, l.InsetPadding, w, h)
	if size <= 0 {
		return out
	}
	for _, in := range l.Insets {
		x, y := insetOrigin(in.Anchor, size, l.InsetPadding, w, h)
		v := View{Name: in.Name, Inset: true}
		e, ok := snap.Entity(in.Entity)
		if !ok {
			v.Err = fmt.Errorf("inset %q entity %d: %w", in.Name, in.Entity, ErrMissingEntity)
		}
		v.Projection = view.Projection{
			Camera:         view.Camera{Center: view.Vec2{X: e.X, Y: e.Y}, Zoom: in.Zoom},
			Viewport:       view.Viewport{X: x, Y: y, W: size, H: size},
			PixelsPerMeter: l.PixelsPerMeter,
		}
		out = append(out, v)
	}
	return out
}

// Draw clears the surface and renders every view. A failing view is
// reported in the joined error and the remaining views still draw.
func (c *Composer) Draw(cv canvas.Canvas, snap sim.Snapshot) error {
	w, h := cv.Size()
	cv.Clear(c.PanelColor)

	var errs []error
	for _, v := range c.Views(w, h, snap) {
		if v.Err != nil {
			errs = append(errs, v.Err)
			if v.Inset {
				continue
			}
		}
		if err := c.drawView(cv, v, snap); err != nil {
			errs = append(errs, fmt.Errorf("view %q: %w", v.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Composer) drawView(cv canvas.Canvas, v View, snap sim.Snapshot) (err error) {
	depth := cv.Depth()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		for cv.Depth() > depth {
			cv.Restore()
		}
	}()

	if v.Inset {
		c.drawPanel(cv, v.Projection.Viewport)
	}
	return view.WithCamera(cv, v.Projection, func(p *view.Pass) error {
		return c.Renderer.Draw(p, snap)
	})
}

// drawPanel paints the inset background and a 2 px outset border in
// screen space.
func (c *Composer) drawPanel(cv canvas.Canvas, vp view.Viewport) {
	cv.Save()
	defer cv.Restore()
	cv.SetLineWidth(1)
	cv.FillRect(vp.X, vp.Y, vp.W, vp.H, c.PanelColor)
	cv.StrokeRect(vp.X-2, vp.Y-2, vp.W+4, vp.H+4, c.BorderColor)
}
