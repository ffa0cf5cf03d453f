// Package sim defines the boundary to the physical simulation and ships the
// reference models used by the viewers.
package sim

import (
	"errors"
	"fmt"
	"sort"
)

// StatusOK is the only successful Init status.
const StatusOK = 0

// ErrUnknownModel is returned by New for an unregistered model name.
var ErrUnknownModel = errors.New("unknown simulation model")

// Port is the narrow capability the viewer needs from a simulation.
// Init is called exactly once before any Step. Accessors are pure reads and
// are only meaningful after at least one Step.
type Port interface {
	// Init prepares the model for a fixed step of dt seconds and returns a
	// status code; anything but StatusOK is fatal.
	Init(dt float64) int
	// Step advances exactly one quantum with the given command axes.
	Step(axis1, axis2 float64)

	EntityCount() int
	PositionX(entity int) float64
	PositionY(entity int) float64
	Heading(entity int) float64
}

// EntityState is one tracked body as read from the port.
type EntityState struct {
	X, Y    float64 // meters
	Heading float64 // radians
}

// Snapshot is the set of entity states produced by the latest completed step.
type Snapshot struct {
	Entities []EntityState
	Steps    uint64
	SimTime  float64 // seconds, Steps * quantum
}

// Entity returns entity i, or false if the snapshot has no such entity.
func (s Snapshot) Entity(i int) (EntityState, bool) {
	if i < 0 || i >= len(s.Entities) {
		return EntityState{}, false
	}
	return s.Entities[i], true
}

// ReadSnapshot reads every entity through the port accessors into dst,
// reusing its backing array.
func ReadSnapshot(p Port, dst []EntityState) []EntityState {
	n := p.EntityCount()
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, EntityState{
			X:       p.PositionX(i),
			Y:       p.PositionY(i),
			Heading: p.Heading(i),
		})
	}
	return dst
}

var registry = map[string]func() Port{
	"drone":   func() Port { return NewDrone() },
	"pursuit": func() Port { return NewPursuit() },
}

// New constructs a registered model by name.
func New(model string) (Port, error) {
	f, ok := registry[model]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownModel, model, Models())
	}
	return f(), nil
}

// Models lists registered model names in sorted order.
func Models() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
