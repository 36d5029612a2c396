/*
Package physics
File: body.go
Description:
    A minimal rigid body used to drive ships when no external integrator is plugged in.
    Forces and torques accumulate between Integrate calls and are cleared afterwards.

    Integration is semi-implicit Euler with linear damping, no gravity.
    Inertia is approximated by mass on every axis.
*/

package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Config mirrors the rigid body settings ships were tuned with.
type Config struct {
	Mass        float32 `yaml:"-" json:"mass"`                    // Set per tier from the stat profile
	LinearDrag  float32 `yaml:"linear_drag" json:"linear_drag"`   // Fraction of velocity lost per second
	AngularDrag float32 `yaml:"angular_drag" json:"angular_drag"` // Fraction of spin lost per second
}

// DefaultConfig is drag 0.5, angular drag 2, unit mass.
func DefaultConfig() Config {
	return Config{Mass: 1, LinearDrag: 0.5, AngularDrag: 2}
}

// Body is a single rigid body. It is not safe for concurrent use; the owning ship serializes access.
type Body struct {
	cfg Config

	position        mgl32.Vec3
	velocity        mgl32.Vec3
	orientation     mgl32.Quat
	angularVelocity mgl32.Vec3

	force  mgl32.Vec3
	torque mgl32.Vec3
}

func NewBody(cfg Config) *Body {
	if cfg.Mass <= 0 {
		cfg.Mass = 1
	}
	return &Body{cfg: cfg, orientation: mgl32.QuatIdent()}
}

func (b *Body) ApplyForce(f mgl32.Vec3)  { b.force = b.force.Add(f) }
func (b *Body) ApplyTorque(t mgl32.Vec3) { b.torque = b.torque.Add(t) }

func (b *Body) Velocity() mgl32.Vec3        { return b.velocity }
func (b *Body) SetVelocity(v mgl32.Vec3)    { b.velocity = v }
func (b *Body) AngularVelocity() mgl32.Vec3 { return b.angularVelocity }
func (b *Body) Position() mgl32.Vec3        { return b.position }
func (b *Body) Orientation() mgl32.Quat     { return b.orientation }
func (b *Body) Mass() float32               { return b.cfg.Mass }

// SetDrag retunes linear and angular drag on a live body. Negative values are ignored.
func (b *Body) SetDrag(linear, angular float32) {
	if linear >= 0 {
		b.cfg.LinearDrag = linear
	}
	if angular >= 0 {
		b.cfg.AngularDrag = angular
	}
}

// ResetKinematics teleports the body and stops all motion.
func (b *Body) ResetKinematics(pos mgl32.Vec3, rot mgl32.Quat) {
	b.position = pos
	b.orientation = rot.Normalize()
	b.velocity = mgl32.Vec3{}
	b.angularVelocity = mgl32.Vec3{}
	b.force = mgl32.Vec3{}
	b.torque = mgl32.Vec3{}
}

// Integrate advances the body by dt seconds and clears the accumulated force and torque.
func (b *Body) Integrate(dt float32) {
	if dt <= 0 {
		return
	}
	invMass := 1 / b.cfg.Mass

	// 1. Linear
	b.velocity = b.velocity.Add(b.force.Mul(invMass * dt))
	b.velocity = b.velocity.Mul(damping(b.cfg.LinearDrag, dt))
	b.position = b.position.Add(b.velocity.Mul(dt))

	// 2. Angular (world-space angular velocity)
	b.angularVelocity = b.angularVelocity.Add(b.torque.Mul(invMass * dt))
	b.angularVelocity = b.angularVelocity.Mul(damping(b.cfg.AngularDrag, dt))
	if w := b.angularVelocity.Len(); w > 0 {
		step := mgl32.QuatRotate(w*dt, b.angularVelocity.Mul(1/w))
		b.orientation = step.Mul(b.orientation).Normalize()
	}

	b.force = mgl32.Vec3{}
	b.torque = mgl32.Vec3{}
}

func damping(drag, dt float32) float32 {
	d := 1 - drag*dt
	if d < 0 {
		return 0
	}
	return d
}
