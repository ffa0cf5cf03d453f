package canvas

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
)

// Cells is the subset of tcell.Screen the terminal canvas writes to.
type Cells interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

const (
	strokeRune = '•'
	fillRune   = '█'
)

// Terminal rasterizes primitives into character cells. Each cell stands for
// CellW x CellH logical pixels, so world-space layout matches the graphical
// viewer at a coarser resolution.
type Terminal struct {
	cells        Cells
	cellW, cellH float64
	cols, rows   int
	st           stack
}

// NewTerminal wraps a tcell screen. cellW and cellH default to 8x16.
func NewTerminal(cells Cells, cellW, cellH float64) *Terminal {
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	t := &Terminal{cells: cells, cellW: cellW, cellH: cellH}
	t.Resize()
	return t
}

// Resize re-reads the screen size and resets the state stack.
func (t *Terminal) Resize() {
	t.cols, t.rows = t.cells.Size()
	w, h := t.Size()
	t.st = newStack(ebiten.GeoM{}, Rect{W: w, H: h})
}

func (t *Terminal) Size() (float64, float64) {
	return float64(t.cols) * t.cellW, float64(t.rows) * t.cellH
}

func styleFor(c color.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.FromImageColor(c))
}

func (t *Terminal) Clear(c color.Color) {
	st := tcell.StyleDefault.Background(tcell.FromImageColor(c))
	for y := 0; y < t.rows; y++ {
		for x := 0; x < t.cols; x++ {
			t.cells.SetContent(x, y, ' ', nil, st)
		}
	}
}

func (t *Terminal) Save()                  { t.st.save() }
func (t *Terminal) Restore()               { t.st.restore() }
func (t *Terminal) Depth() int             { return t.st.depth() }
func (t *Terminal) ClipRect(r Rect)        { t.st.clip(r) }
func (t *Terminal) Translate(x, y float64) { t.st.translate(x, y) }
func (t *Terminal) Scale(sx, sy float64)   { t.st.scale(sx, sy) }
func (t *Terminal) Rotate(theta float64)   { t.st.rotate(theta) }
func (t *Terminal) SetLineWidth(w float64) { t.st.cur.LineWidth = w }

// put writes one cell when its centre lies inside the clip.
func (t *Terminal) put(cx, cy int, r rune, st tcell.Style) {
	if cx < 0 || cy < 0 || cx >= t.cols || cy >= t.rows {
		return
	}
	px := (float64(cx) + 0.5) * t.cellW
	py := (float64(cy) + 0.5) * t.cellH
	if !t.st.cur.Clip.Contains(px, py) {
		return
	}
	t.cells.SetContent(cx, cy, r, nil, st)
}

func (t *Terminal) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / t.cellW)), int(math.Floor(y / t.cellH))
}

// line rasterizes a device-space segment with Bresenham's algorithm.
func (t *Terminal) line(a, b Point, st tcell.Style) {
	x0, y0 := t.cellOf(a.X, a.Y)
	x1, y1 := t.cellOf(b.X, b.Y)
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		t.put(x0, y0, strokeRune, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (t *Terminal) StrokeLine(x0, y0, x1, y1 float64, c color.Color) {
	ax, ay := t.st.apply(x0, y0)
	bx, by := t.st.apply(x1, y1)
	t.line(Point{ax, ay}, Point{bx, by}, styleFor(c))
}

func (t *Terminal) StrokePolygon(pts []Point, c color.Color) {
	dev := t.st.applyAll(pts)
	st := styleFor(c)
	for i := range dev {
		t.line(dev[i], dev[(i+1)%len(dev)], st)
	}
}

func (t *Terminal) FillPolygon(pts []Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	dev := t.st.applyAll(pts)
	b := bounds(dev).Intersect(t.st.cur.Clip)
	if b.Empty() {
		// Polygons thinner than a cell still leave a mark.
		t.StrokePolygon(pts, c)
		return
	}
	st := styleFor(c)
	cx0, cy0 := t.cellOf(b.X, b.Y)
	cx1, cy1 := t.cellOf(b.X+b.W, b.Y+b.H)
	filled := false
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			px := (float64(cx) + 0.5) * t.cellW
			py := (float64(cy) + 0.5) * t.cellH
			if pointInPolygon(px, py, dev) {
				t.put(cx, cy, fillRune, st)
				filled = true
			}
		}
	}
	if !filled {
		t.StrokePolygon(pts, c)
	}
}

func (t *Terminal) FillRect(x, y, w, h float64, c color.Color) {
	t.FillPolygon(rectCorners(x, y, w, h), c)
}

func (t *Terminal) StrokeRect(x, y, w, h float64, c color.Color) {
	t.StrokePolygon(rectCorners(x, y, w, h), c)
}

func (t *Terminal) FillCircle(x, y, r float64, c color.Color) {
	cx, cy := t.st.apply(x, y)
	rad := r * t.st.linearScale()
	st := styleFor(c)
	gx0, gy0 := t.cellOf(cx-rad, cy-rad)
	gx1, gy1 := t.cellOf(cx+rad, cy+rad)
	for gy := gy0; gy <= gy1; gy++ {
		for gx := gx0; gx <= gx1; gx++ {
			px := (float64(gx)+0.5)*t.cellW - cx
			py := (float64(gy)+0.5)*t.cellH - cy
			if px*px+py*py <= rad*rad || (gx == gx0 && gy == gy0 && gx0 == gx1 && gy0 == gy1) {
				t.put(gx, gy, fillRune, st)
			}
		}
	}
}

// pointInPolygon is the even-odd crossing test.
func pointInPolygon(x, y float64, poly []Point) bool {
	in := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.Y > y) != (pj.Y > y) {
			xc := pj.X + (y-pj.Y)*(pi.X-pj.X)/(pi.Y-pj.Y)
			if x < xc {
				in = !in
			}
		}
		j = i
	}
	return in
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
