package canvas

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRecorder_TransformOrderMatchesCanvasSemantics(t *testing.T) {
	r := NewRecorder(800, 400)
	r.Translate(400, 200)
	r.Scale(2, -2)
	r.Translate(-10, -5)
	r.StrokeLine(10, 5, 11, 6, white)

	op := r.Ops[0]
	if !near(op.Points[0].X, 400) || !near(op.Points[0].Y, 200) {
		t.Fatalf("origin should map to (400,200), got %+v", op.Points[0])
	}
	// +1 world X is +2 px, +1 world Y is -2 px (flipped).
	if !near(op.Points[1].X, 402) || !near(op.Points[1].Y, 198) {
		t.Fatalf("unit offset should map to (402,198), got %+v", op.Points[1])
	}
}

func TestRecorder_SaveRestoreIsBalanced(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Save()
	r.Translate(50, 50)
	r.ClipRect(Rect{X: -10, Y: -10, W: 20, H: 20})
	r.Save()
	r.Scale(3, 3)
	if r.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", r.Depth())
	}
	r.Restore()
	r.Restore()
	if r.Depth() != 0 {
		t.Fatalf("expected depth 0 after restores, got %d", r.Depth())
	}
	cur := r.Current()
	if cur.Clip != (Rect{W: 100, H: 100}) {
		t.Fatalf("clip not restored: %+v", cur.Clip)
	}
	x, y := cur.GeoM.Apply(1, 1)
	if !near(x, 1) || !near(y, 1) {
		t.Fatalf("transform not restored, (1,1) -> (%v,%v)", x, y)
	}
	// Extra restore is harmless.
	r.Restore()
	if r.Depth() != 0 {
		t.Fatalf("restore on empty stack changed depth to %d", r.Depth())
	}
	if r.MaxDepth != 2 {
		t.Fatalf("expected max depth 2, got %d", r.MaxDepth)
	}
}

func TestRecorder_ClipIsTransformedAndIntersected(t *testing.T) {
	r := NewRecorder(200, 100)
	r.ClipRect(Rect{X: 150, Y: 10, W: 100, H: 50})
	r.FillRect(0, 0, 10, 10, white)
	got := r.Ops[0].Clip
	want := Rect{X: 150, Y: 10, W: 50, H: 50}
	if got != want {
		t.Fatalf("clip: expected %+v, got %+v", want, got)
	}

	r.Reset()
	r.Translate(10, 10)
	r.Scale(2, -2)
	r.ClipRect(Rect{X: 0, Y: 0, W: 5, H: 5})
	c := r.Current().Clip
	if !near(c.X, 10) || !near(c.Y, 0) || !near(c.W, 10) || !near(c.H, 10) {
		t.Fatalf("flipped clip should be normalized to (10,0,10,10), got %+v", c)
	}
}

func TestRecorder_LineWidthScalesWithTransform(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Scale(300, -300)
	r.SetLineWidth(1.0 / 300)
	r.StrokeLine(0, 0, 0.1, 0, white)
	if !near(r.Ops[0].Width, 1) {
		t.Fatalf("expected 1px device width, got %v", r.Ops[0].Width)
	}
}

func TestRect_IntersectDisjoint(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 20, Y: 20, W: 5, H: 5}
	if !a.Intersect(b).Empty() {
		t.Fatal("disjoint rects should intersect to empty")
	}
}

// fakeCells is an in-memory Cells grid.
type fakeCells struct {
	w, h  int
	runes map[[2]int]rune
}

func newFakeCells(w, h int) *fakeCells {
	return &fakeCells{w: w, h: h, runes: map[[2]int]rune{}}
}

func (f *fakeCells) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	f.runes[[2]int{x, y}] = r
}

func (f *fakeCells) Size() (int, int) { return f.w, f.h }

func TestTerminal_LineStaysInsideClip(t *testing.T) {
	cells := newFakeCells(20, 10)
	term := NewTerminal(cells, 8, 16)
	term.Save()
	term.ClipRect(Rect{X: 0, Y: 0, W: 80, H: 160})
	term.StrokeLine(0, 8, 160, 8, white)
	term.Restore()

	for k, r := range cells.runes {
		if r != strokeRune {
			continue
		}
		if k[0] >= 10 {
			t.Fatalf("cell %v drawn outside the clip", k)
		}
	}
	if cells.runes[[2]int{0, 0}] != strokeRune || cells.runes[[2]int{9, 0}] != strokeRune {
		t.Fatalf("expected row 0 cells 0..9 drawn, got %v", cells.runes)
	}
}

func TestTerminal_FillPolygonCoversInterior(t *testing.T) {
	cells := newFakeCells(10, 10)
	term := NewTerminal(cells, 1, 1)
	term.FillRect(2, 2, 4, 4, white)
	if cells.runes[[2]int{3, 3}] != fillRune {
		t.Fatal("interior cell should be filled")
	}
	if _, ok := cells.runes[[2]int{7, 7}]; ok {
		t.Fatal("exterior cell should be untouched")
	}
}

func TestPointInPolygon(t *testing.T) {
	tri := []Point{{0, 0}, {10, 0}, {0, 10}}
	if !pointInPolygon(2, 2, tri) {
		t.Fatal("(2,2) should be inside")
	}
	if pointInPolygon(8, 8, tri) {
		t.Fatal("(8,8) should be outside")
	}
}

func TestDeviceClip_RoundsInward(t *testing.T) {
	cases := []struct {
		in   Rect
		want image.Rectangle
	}{
		{Rect{X: 10, Y: 20, W: 100, H: 50}, image.Rect(10, 20, 110, 70)},
		{Rect{X: 12.5, Y: 7.25, W: 90, H: 90}, image.Rect(13, 8, 102, 97)},
		{Rect{X: 9.9999999999, Y: 0, W: 10.0000000002, H: 5}, image.Rect(10, 0, 20, 5)},
	}
	for _, c := range cases {
		if got := deviceClip(c.in); got != c.want {
			t.Fatalf("%+v: expected %v, got %v", c.in, c.want, got)
		}
	}
	if got := deviceClip(Rect{X: 10.2, Y: 10.2, W: 0.5, H: 0.5}); !got.Empty() {
		t.Fatalf("a sub-pixel clip should be empty, got %v", got)
	}
	if got := deviceClip(Rect{}); !got.Empty() {
		t.Fatalf("an empty clip should stay empty, got %v", got)
	}
}
