package sim

import "math"

const gravity = 9.81

// Airframe holds the fixed physical parameters of the planar drone.
type Airframe struct {
	Mass      float64 // kg
	Inertia   float64 // kg m^2
	MaxThrust float64 // N per prop
	PropDist  float64 // m, centre of gravity to motor
}

// DefaultAirframe is a 250 g bicopter with 127 mm prop spacing.
var DefaultAirframe = Airframe{
	Mass:      0.25,
	Inertia:   5e-5,
	MaxThrust: 3,
	PropDist:  0.127 / 2,
}

// Drone is a planar two-rotor body integrated with forward Euler.
// Angle 0 is nose up; positive angles rotate left (counter-clockwise).
type Drone struct {
	Airframe Airframe
	dt       float64

	x, y       float64
	vx, vy     float64
	angle      float64
	angularVel float64
}

// NewDrone returns an uninitialised drone at the origin.
func NewDrone() *Drone {
	return &Drone{Airframe: DefaultAirframe}
}

func (d *Drone) Init(dt float64) int {
	if !(dt > 0) {
		return 1
	}
	d.dt = dt
	d.x, d.y, d.vx, d.vy = 0, 0, 0, 0
	d.angle, d.angularVel = 0, 0
	return StatusOK
}

// Step takes thrust on axis 1 and steering on axis 2.
func (d *Drone) Step(thrust, steer float64) {
	left := thrust*0.8 - steer*0.01
	right := thrust*0.8 + steer*0.01

	af := d.Airframe
	accBody := (left + right) * af.MaxThrust / af.Mass
	ax := -math.Sin(d.angle) * accBody
	ay := math.Cos(d.angle)*accBody - gravity
	angAcc := (right - left) * af.MaxThrust * af.PropDist / af.Inertia

	d.angularVel += angAcc * d.dt
	d.vx += ax * d.dt
	d.vy += ay * d.dt

	d.angle += d.angularVel * d.dt
	d.x += d.vx * d.dt
	d.y += d.vy * d.dt
}

func (d *Drone) EntityCount() int      { return 1 }
func (d *Drone) PositionX(int) float64 { return d.x }
func (d *Drone) PositionY(int) float64 { return d.y }
func (d *Drone) Heading(int) float64   { return d.angle }
