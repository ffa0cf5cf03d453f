package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var (
	hudText   = color.RGBA{R: 220, G: 225, B: 220, A: 255}
	hudDim    = color.RGBA{R: 150, G: 155, B: 150, A: 255}
	hudAccent = color.RGBA{R: 255, G: 204, B: 0, A: 255}
)

// textDrawer draws basicfont text at logical coordinates on a device-scaled
// screen.
type textDrawer struct {
	face *text.GoXFace
	ds   float64
}

func newTextDrawer(ds float64) *textDrawer {
	return &textDrawer{face: text.NewGoXFace(basicfont.Face7x13), ds: ds}
}

func (t *textDrawer) draw(dst *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Scale(t.ds, t.ds)
	op.GeoM.Translate(x*t.ds, y*t.ds)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, t.face, op)
}

// width is the advance of s in logical pixels.
func (t *textDrawer) width(s string) float64 {
	w, _ := text.Measure(s, t.face, 0)
	return w
}
