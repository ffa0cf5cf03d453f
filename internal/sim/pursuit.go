package sim

import "math"

// Entity indices for the pursuit model.
const (
	PursuitInterceptor = 0
	PursuitTarget      = 1
)

// interceptRadius is the per-axis separation at which the engagement resets.
const interceptRadius = 5.0

// navGain is the proportional-navigation constant.
const navGain = 10.0

// Aircraft is a constant-speed planar body steered by lateral acceleration.
type Aircraft struct {
	X, Y       float64 // m
	Speed      float64 // m/s
	Angle      float64 // rad, 0 along +X
	TurnRate   float64 // rad/s
	MaxTurnAcc float64 // m/s^2 lateral
}

// Pursuit is a user-steered target chased by a proportional-navigation
// interceptor. When the two close within interceptRadius on both axes the
// engagement restarts from the initial geometry.
type Pursuit struct {
	Interceptor Aircraft
	Target      Aircraft
	Intercepts  int

	dt float64
}

// NewPursuit returns an uninitialised engagement.
func NewPursuit() *Pursuit {
	return &Pursuit{}
}

func (p *Pursuit) reset() {
	p.Target = Aircraft{
		X: -500, Y: 0,
		Speed:      200,
		Angle:      15 * math.Pi / 180,
		MaxTurnAcc: 100,
	}
	p.Interceptor = Aircraft{
		X: 1200, Y: -500,
		Speed:      300,
		Angle:      120 * math.Pi / 180,
		MaxTurnAcc: 150,
	}
}

func (p *Pursuit) Init(dt float64) int {
	if !(dt > 0) {
		return 1
	}
	p.dt = dt
	p.Intercepts = 0
	p.reset()
	return StatusOK
}

// Step takes the target's left/right command on axis 1. Axis 2
// (front/back) is accepted for symmetry with the drone but has no effect on
// a constant-speed airframe.
func (p *Pursuit) Step(leftRight, _ float64) {
	p.stepTarget(leftRight)
	p.stepInterceptor()

	if math.Abs(p.Target.X-p.Interceptor.X) < interceptRadius &&
		math.Abs(p.Target.Y-p.Interceptor.Y) < interceptRadius {
		p.Intercepts++
		p.reset()
	}
}

func (a *Aircraft) advance(turnAcc, dt float64) {
	a.Angle += a.TurnRate * dt
	a.TurnRate = turnAcc / a.Speed
	a.X += math.Cos(a.Angle) * a.Speed * dt
	a.Y += math.Sin(a.Angle) * a.Speed * dt
}

func (p *Pursuit) stepTarget(cmd float64) {
	p.Target.advance(cmd*p.Target.MaxTurnAcc, p.dt)
}

func (p *Pursuit) stepInterceptor() {
	tg, ic := &p.Target, &p.Interceptor

	rx, ry := tg.X-ic.X, tg.Y-ic.Y
	rng := math.Hypot(rx, ry)

	vx := tg.Speed*math.Cos(tg.Angle) - ic.Speed*math.Cos(ic.Angle)
	vy := tg.Speed*math.Sin(tg.Angle) - ic.Speed*math.Sin(ic.Angle)
	closing := math.Hypot(vx, vy)

	los := math.Atan2(ry, rx)
	rel := math.Atan2(vy, vx) - los
	radial := math.Cos(rel) * closing
	tangential := math.Sin(rel) * closing

	losRate := 0.0
	if rng > 0 {
		losRate = tangential / rng
	}

	acc := navGain * math.Abs(radial) * losRate
	acc = math.Max(-ic.MaxTurnAcc, math.Min(ic.MaxTurnAcc, acc))
	ic.advance(acc, p.dt)
}

func (p *Pursuit) EntityCount() int { return 2 }

func (p *Pursuit) aircraft(i int) *Aircraft {
	if i == PursuitTarget {
		return &p.Target
	}
	return &p.Interceptor
}

func (p *Pursuit) PositionX(i int) float64 { return p.aircraft(i).X }
func (p *Pursuit) PositionY(i int) float64 { return p.aircraft(i).Y }
func (p *Pursuit) Heading(i int) float64   { return p.aircraft(i).Angle }
