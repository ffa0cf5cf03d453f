// Package input turns directional key state into the two command axes fed to
// the simulation step.
package input

import (
	"fmt"
	"strings"
)

// Direction is one of the four mapped directional inputs.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

var directionNames = map[Direction]string{
	DirNone:  "none",
	DirUp:    "up",
	DirDown:  "down",
	DirLeft:  "left",
	DirRight: "right",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts the lower-case names used in config files.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return DirNone, fmt.Errorf("unknown direction %q", s)
}

// Flags is the raw held/not-held state of the directional inputs.
type Flags struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Held reports whether d is currently down.
func (f Flags) Held(d Direction) bool {
	switch d {
	case DirUp:
		return f.Up
	case DirDown:
		return f.Down
	case DirLeft:
		return f.Left
	case DirRight:
		return f.Right
	}
	return false
}

// Set returns a copy of f with d set to v.
func (f Flags) Set(d Direction, v bool) Flags {
	switch d {
	case DirUp:
		f.Up = v
	case DirDown:
		f.Down = v
	case DirLeft:
		f.Left = v
	case DirRight:
		f.Right = v
	}
	return f
}

// Axes is the pair of signed commands passed to one simulation step.
type Axes struct {
	Axis1 float64
	Axis2 float64
}

// Binding maps an opposing pair of directions onto one axis.
type Binding struct {
	Pos  Direction
	Neg  Direction
	Step float64
}

func (b Binding) value(f Flags) float64 {
	v := 0.0
	if f.Held(b.Pos) {
		v += b.Step
	}
	if f.Held(b.Neg) {
		v -= b.Step
	}
	return v
}

// Mapper converts Flags to Axes. It holds no state of its own.
type Mapper struct {
	Axis1 Binding
	Axis2 Binding
}

// Map applies opposite cancellation per axis: both directions held gives 0.
func (m Mapper) Map(f Flags) Axes {
	return Axes{
		Axis1: m.Axis1.value(f),
		Axis2: m.Axis2.value(f),
	}
}

// ThrustSteer is the drone layout: up/down drive thrust on axis 1,
// left/right drive steering on axis 2 with left positive.
func ThrustSteer(thrustStep, steerStep float64) Mapper {
	return Mapper{
		Axis1: Binding{Pos: DirUp, Neg: DirDown, Step: thrustStep},
		Axis2: Binding{Pos: DirLeft, Neg: DirRight, Step: steerStep},
	}
}

// LateralLongitudinal is the pursuit layout: left/right on axis 1 with left
// positive, up/down on axis 2.
func LateralLongitudinal(xStep, yStep float64) Mapper {
	return Mapper{
		Axis1: Binding{Pos: DirLeft, Neg: DirRight, Step: xStep},
		Axis2: Binding{Pos: DirUp, Neg: DirDown, Step: yStep},
	}
}
