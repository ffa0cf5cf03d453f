// Package compose builds the frame: one full-surface main view followed by
// square inset views pinned to the surface corners, each drawn in its own
// camera pass.
package compose

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

// ErrMissingEntity is reported for a view that follows an entity the
// snapshot does not contain.
var ErrMissingEntity = errors.New("tracked entity not in snapshot")

// CameraPolicy decides where the main camera looks.
type CameraPolicy int

const (
	// PolicyFixed looks at the configured centre.
	PolicyFixed CameraPolicy = iota
	// PolicyTrack follows one entity, scaled by Weight plus Offset.
	PolicyTrack
	// PolicyCentroid looks at the mean entity position plus Offset.
	PolicyCentroid
)

var policyNames = [...]string{"fixed", "track", "centroid"}

func (p CameraPolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("CameraPolicy(%d)", int(p))
}

// ParseCameraPolicy accepts the String form, case-insensitively.
func ParseCameraPolicy(s string) (CameraPolicy, error) {
	for i, n := range policyNames {
		if strings.EqualFold(s, n) {
			return CameraPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown camera policy %q", s)
}

// Anchor pins an inset to a surface corner.
type Anchor int

const (
	TopLeft Anchor = iota
	TopRight
	BottomLeft
	BottomRight
)

var anchorNames = [...]string{"top-left", "top-right", "bottom-left", "bottom-right"}

func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

// ParseAnchor accepts the String form, case-insensitively.
func ParseAnchor(s string) (Anchor, error) {
	for i, n := range anchorNames {
		if strings.EqualFold(s, n) {
			return Anchor(i), nil
		}
	}
	return 0, fmt.Errorf("unknown inset anchor %q", s)
}

// MainCamera configures the full-surface view.
type MainCamera struct {
	Policy CameraPolicy
	Center view.Vec2 // fixed policy
	Entity int       // track policy
	Weight float64   // track policy; 0 is treated as 1
	Offset view.Vec2
	Zoom   float64
	// Focus is where the looked-at point lands, as a fraction of the
	// viewport (x right, y down). Zero means the centre.
	Focus view.Vec2
}

// InsetSpec configures one inset view centred on an entity.
type InsetSpec struct {
	Name   string
	Anchor Anchor
	Entity int
	Zoom   float64
}

// Layout is the whole frame arrangement.
type Layout struct {
	PixelsPerMeter float64
	Main           MainCamera
	Insets         []InsetSpec
	InsetSize      float64 // px
	InsetPadding   float64 // px
}

// InsetSize is the side of a square inset: the configured size, shrunk so
// the inset plus padding fits the shorter surface side. Never negative.
func InsetSize(cfg, pad, w, h float64) float64 {
	s := math.Min(cfg, math.Min(w, h)-2*pad)
	if !(s > 0) {
		return 0
	}
	return s
}

// insetOrigin is the top-left pixel of a size x size inset at anchor a.
func insetOrigin(a Anchor, size, pad, w, h float64) (x, y float64) {
	x, y = pad, pad
	if a == TopRight || a == BottomRight {
		x = w - size - pad
	}
	if a == BottomLeft || a == BottomRight {
		y = h - size - pad
	}
	return x, y
}

// mainCenter resolves the world point the main camera looks at.
func (m MainCamera) mainCenter(snap sim.Snapshot) (view.Vec2, error) {
	switch m.Policy {
	case PolicyTrack:
		e, ok := snap.Entity(m.Entity)
		if !ok {
			return m.Center, fmt.Errorf("main camera entity %d: %w", m.Entity, ErrMissingEntity)
		}
		w := m.Weight
		if w == 0 {
			w = 1
		}
		return view.Vec2{X: e.X, Y: e.Y}.Scale(w).Add(m.Offset), nil
	case PolicyCentroid:
		if len(snap.Entities) == 0 {
			return m.Center, nil
		}
		var sum view.Vec2
		for _, e := range snap.Entities {
			sum = sum.Add(view.Vec2{X: e.X, Y: e.Y})
		}
		return sum.Scale(1 / float64(len(snap.Entities))).Add(m.Offset), nil
	default:
		return m.Center, nil
	}
}

// focusShift moves the camera centre so the looked-at point appears at the
// focus fraction of a w x h viewport at scale s.
func (m MainCamera) focusShift(w, h, s float64) view.Vec2 {
	if m.Focus == (view.Vec2{}) || !(s > 0) {
		return view.Vec2{}
	}
	return view.Vec2{X: (0.5 - m.Focus.X) * w / s, Y: (m.Focus.Y - 0.5) * h / s}
}
