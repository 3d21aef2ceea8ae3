// Package motion implements the prescribed and free-body kinematics of
// this design (C3). Per the ownership-cycle redesign flag, a
// Motion never holds a reference back to the body it drives: every
// call takes the body's current centroid/orientation as an argument
// and returns the new one, so a Motion is a plain value object the
// body owns rather than the other way around.
package motion

import (
	"math"

	"github.com/finitevolume/ibflow/geometry2d"
)

// Motion advances a body's rigid-body state over one time step and
// reports the no-slip wall velocity at a boundary point, both without
// retaining any pointer to the body itself.
type Motion interface {
	// Advance returns the centroid and orientation angle (radians) the
	// body should have at elapsed time t+dt, given its state at t and
	// the hydrodynamic force/torque integrated over [t, t+dt].
	// Prescribed motions ignore force and torque.
	Advance(centroid geometry2d.Point, theta float64, t, dt float64, force geometry2d.Point, torque float64) (newCentroid geometry2d.Point, newTheta float64)

	// VelocityAt returns the wall velocity at point, given the body's
	// current centroid, for use as the Dirichlet value in
	// velocityBcs.
	VelocityAt(point, centroid geometry2d.Point, t float64) geometry2d.Point

	// AccelerationAt returns the wall acceleration at point, used by
	// pressureBcs to build the consistent moving-wall Neumann source
	// rho*(a_B. n).
	AccelerationAt(point, centroid geometry2d.Point, t float64) geometry2d.Point
}

// TranslatingMotion prescribes position(t) = x0 + v0*t + 0.5*a0*t^2.
type TranslatingMotion struct {
	X0 geometry2d.Point
	V0 geometry2d.Point
	A0 geometry2d.Point
}

func NewTranslatingMotion(x0, v0, a0 geometry2d.Point) *TranslatingMotion {
	return &TranslatingMotion{X0: x0, V0: v0, A0: a0}
}

func (m *TranslatingMotion) Advance(_ geometry2d.Point, theta float64, t, dt float64, _ geometry2d.Point, _ float64) (geometry2d.Point, float64) {
	return m.position(t + dt), theta
}

func (m *TranslatingMotion) position(t float64) geometry2d.Point {
	return m.X0.Plus(m.V0.Scaled(t)).Plus(m.A0.Scaled(0.5 * t * t))
}

func (m *TranslatingMotion) velocity(t float64) geometry2d.Point {
	return m.V0.Plus(m.A0.Scaled(t))
}

func (m *TranslatingMotion) VelocityAt(_, _ geometry2d.Point, t float64) geometry2d.Point {
	return m.velocity(t)
}

func (m *TranslatingMotion) AccelerationAt(_, _ geometry2d.Point, _ float64) geometry2d.Point {
	return m.A0
}

// OscillatingMotion prescribes position(t) = x0 + direction*A*sin(w t + phi).
type OscillatingMotion struct {
	X0 geometry2d.Point
	Direction geometry2d.Point // unit vector of oscillation
	Omega float64
	Amplitude float64
	Phase float64
}

func NewOscillatingMotion(x0, direction geometry2d.Point, omega, amplitude, phase float64) *OscillatingMotion {
	return &OscillatingMotion{X0: x0, Direction: direction.Unit(), Omega: omega, Amplitude: amplitude, Phase: phase}
}

func (m *OscillatingMotion) position(t float64) geometry2d.Point {
	disp := m.Amplitude * math.Sin(m.Omega*t+m.Phase)
	return m.X0.Plus(m.Direction.Scaled(disp))
}

func (m *OscillatingMotion) velocity(t float64) geometry2d.Point {
	speed := m.Amplitude * m.Omega * math.Cos(m.Omega*t+m.Phase)
	return m.Direction.Scaled(speed)
}

func (m *OscillatingMotion) Advance(_ geometry2d.Point, theta float64, t, dt float64, _ geometry2d.Point, _ float64) (geometry2d.Point, float64) {
	return m.position(t + dt), theta
}

func (m *OscillatingMotion) VelocityAt(_, _ geometry2d.Point, t float64) geometry2d.Point {
	return m.velocity(t)
}

func (m *OscillatingMotion) AccelerationAt(_, _ geometry2d.Point, t float64) geometry2d.Point {
	accel := -m.Amplitude * m.Omega * m.Omega * math.Sin(m.Omega*t+m.Phase)
	return m.Direction.Scaled(accel)
}

// SolidBodyMotion is a free rigid body integrated by semi-implicit
// Euler from applied force and torque. Mass and moment
// of inertia are derived once from density and shape at construction;
// velocity and angular velocity are the motion's own persistent state,
// distinct from the body it drives.
type SolidBodyMotion struct {
	Mass float64
	MomentOfInertia float64
	Velocity geometry2d.Point
	AngularVelocity float64

	// LastLinearAccel/LastAngularAccel cache the acceleration implied by
	// the most recent Advance call, since pressureBcs needs a_B for the
	// step whose force was integrated one step earlier.
	LastLinearAccel geometry2d.Point
	LastAngularAccel float64
}

// NewSolidBodyMotion derives mass from density*area and, for a circle,
// the exact polar moment of inertia 0.5*m*r^2; for a general polygon it
// uses the shape's bounding-box half-diagonal as a conservative
// approximation, documented in DESIGN.md as an Open Question decision
// since the design does not specify a polygon second-moment formula.
func NewSolidBodyMotion(rho float64, shape geometry2d.Shape, v0 geometry2d.Point, omega0 float64) *SolidBodyMotion {
	area := shape.Area()
	mass := rho * area
	var inertia float64
	if c, ok := shape.(*geometry2d.Circle); ok {
		inertia = 0.5 * mass * c.Radius * c.Radius
	} else {
		box := shape.BoundingBox()
		halfDiag := box.Max.Minus(box.Min).Scaled(0.5).Mag()
		inertia = 0.5 * mass * halfDiag * halfDiag
	}
	return &SolidBodyMotion{Mass: mass, MomentOfInertia: inertia, Velocity: v0, AngularVelocity: omega0}
}

func (m *SolidBodyMotion) Advance(centroid geometry2d.Point, theta float64, _, dt float64, force geometry2d.Point, torque float64) (geometry2d.Point, float64) {
	m.LastLinearAccel = force.Scaled(1 / m.Mass)
	m.LastAngularAccel = torque / m.MomentOfInertia
	m.Velocity = m.Velocity.Plus(m.LastLinearAccel.Scaled(dt))
	m.AngularVelocity += m.LastAngularAccel * dt
	newCentroid := centroid.Plus(m.Velocity.Scaled(dt))
	newTheta := theta + m.AngularVelocity*dt
	return newCentroid, newTheta
}

func (m *SolidBodyMotion) VelocityAt(point, centroid geometry2d.Point, _ float64) geometry2d.Point {
	r := point.Minus(centroid)
	return m.Velocity.Plus(r.Tangent().Scaled(m.AngularVelocity))
}

// AccelerationAt applies the rigid-body point-acceleration formula
// a_P = a_G + alpha x r - omega^2 r using the acceleration implied by
// the last Advance call.
func (m *SolidBodyMotion) AccelerationAt(point, centroid geometry2d.Point, _ float64) geometry2d.Point {
	r := point.Minus(centroid)
	centripetal := r.Scaled(-m.AngularVelocity * m.AngularVelocity)
	tangential := r.Tangent().Scaled(m.LastAngularAccel)
	return m.LastLinearAccel.Plus(tangential).Plus(centripetal)
}
