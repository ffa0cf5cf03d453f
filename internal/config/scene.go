package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/input"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

// Input mapping presets.
const (
	MappingThrustSteer         = "thrust-steer"
	MappingLateralLongitudinal = "lateral-longitudinal"
)

var (
	// ErrUnknownScene is returned when the selected scene is not configured.
	ErrUnknownScene = errors.New("unknown scene")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid config")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate checks every setting that would otherwise fail at run time.
func (c Config) Validate() error {
	var errs []error
	if !positive(c.Quantum) {
		errs = append(errs, invalid("quantum must be > 0 (got %v)", c.Quantum))
	}
	if !positive(c.MaxFrame) {
		errs = append(errs, invalid("maxFrame must be > 0 (got %v)", c.MaxFrame))
	}
	if !positive(c.RefreshHz) {
		errs = append(errs, invalid("refreshHz must be > 0 (got %v)", c.RefreshHz))
	}
	if c.HoldWindow < 0 {
		errs = append(errs, invalid("holdWindow must not be negative"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, invalid("window must have a positive size (got %dx%d)", c.Window.Width, c.Window.Height))
	}
	if _, err := c.Current(); err != nil {
		errs = append(errs, err)
	}
	for _, name := range c.SceneNames() {
		if err := c.Scenes[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks one scene.
func (s SceneConfig) Validate() error {
	var errs []error
	if !slices.Contains(sim.Models(), s.Model) {
		errs = append(errs, fmt.Errorf("%w: %q", sim.ErrUnknownModel, s.Model))
	}
	if !positive(s.PixelsPerMeter) {
		errs = append(errs, invalid("pixelsPerMeter must be > 0 (got %v)", s.PixelsPerMeter))
	}
	if s.GridStep < 0 {
		errs = append(errs, invalid("gridStep must not be negative"))
	}
	if _, err := s.Mapper(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.Layout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.Scene(""); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Mapper builds the input mapping.
func (s SceneConfig) Mapper() (input.Mapper, error) {
	switch strings.ToLower(s.Mapping) {
	case MappingThrustSteer:
		return input.ThrustSteer(s.Axis1Step, s.Axis2Step), nil
	case MappingLateralLongitudinal:
		return input.LateralLongitudinal(s.Axis1Step, s.Axis2Step), nil
	}
	return input.Mapper{}, invalid("unknown mapping %q", s.Mapping)
}

// Layout builds the frame layout.
func (s SceneConfig) Layout() (compose.Layout, error) {
	policy, err := compose.ParseCameraPolicy(s.Camera.Policy)
	if err != nil {
		return compose.Layout{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cam := view.Camera{Zoom: s.Camera.Zoom}
	if err := cam.Validate(); err != nil {
		return compose.Layout{}, fmt.Errorf("main camera: %w", err)
	}
	if s.InsetSize < 0 || s.InsetPadding < 0 {
		return compose.Layout{}, invalid("inset size and padding must not be negative")
	}

	l := compose.Layout{
		PixelsPerMeter: s.PixelsPerMeter,
		Main: compose.MainCamera{
			Policy: policy,
			Center: view.Vec2{X: s.Camera.CenterX, Y: s.Camera.CenterY},
			Entity: s.Camera.Entity,
			Weight: s.Camera.Weight,
			Offset: view.Vec2{X: s.Camera.OffsetX, Y: s.Camera.OffsetY},
			Zoom:   s.Camera.Zoom,
			Focus:  view.Vec2{X: s.Camera.FocusX, Y: s.Camera.FocusY},
		},
		InsetSize:    s.InsetSize,
		InsetPadding: s.InsetPadding,
	}
	for _, in := range s.Insets {
		a, err := compose.ParseAnchor(in.Anchor)
		if err != nil {
			return compose.Layout{}, fmt.Errorf("%w: inset %q: %w", ErrInvalid, in.Name, err)
		}
		if err := (view.Camera{Zoom: in.Zoom}).Validate(); err != nil {
			return compose.Layout{}, fmt.Errorf("inset %q: %w", in.Name, err)
		}
		l.Insets = append(l.Insets, compose.InsetSpec{Name: in.Name, Anchor: a, Entity: in.Entity, Zoom: in.Zoom})
	}
	return l, nil
}

// Scene builds the render scene under the given display name.
func (s SceneConfig) Scene(name string) (render.Scene, error) {
	sc := render.Scene{
		Name:     name,
		GridStep: s.GridStep,
		Ground:   s.Ground,
		GroundY:  s.GroundY,
		Order:    s.Order,
	}
	for i, g := range s.Glyphs {
		kind, ok := render.ParseGlyphKind(strings.ToLower(g.Kind))
		if !ok {
			return render.Scene{}, invalid("glyph %d: unknown kind %q", i, g.Kind)
		}
		c, err := ParseColor(g.Color)
		if err != nil {
			return render.Scene{}, fmt.Errorf("glyph %d: %w", i, err)
		}
		var gl render.Glyph
		switch kind {
		case render.GlyphQuad:
			gl = render.QuadGlyph(g.Arm)
			gl.Fill = c
		default:
			gl = render.DartGlyph(c)
		}
		sc.Glyphs = append(sc.Glyphs, gl)
	}
	for _, m := range s.Markers {
		c, err := ParseColor(m.Color)
		if err != nil {
			return render.Scene{}, fmt.Errorf("marker %q: %w", m.Name, err)
		}
		size := m.SizePx
		if size <= 0 {
			size = 12
		}
		sc.Markers = append(sc.Markers, render.Marker{Name: m.Name, Pos: view.Vec2{X: m.X, Y: m.Y}, SizePx: size, Color: c})
	}
	return sc, nil
}

// ParseColor reads "#rrggbb" or "#rrggbbaa". Empty means white.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return render.White, nil
	}
	c := color.RGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = errors.New("want #rrggbb or #rrggbbaa")
	}
	if err != nil {
		return color.RGBA{}, invalid("color %q: %v", s, err)
	}
	return c, nil
}
