/*
Package game
File: capabilities.go
Description:
    The collaborators a ship drives but does not own: its rigid body and its input source.
    LatchedInput is the default source, fed by the REST and WebSocket transports.
*/

package game

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Physics is the rigid body a ship drives. The body owns position, velocity and
// orientation; the simulation only pushes forces and reads the results back.
type Physics interface {
	ApplyForce(f mgl32.Vec3)
	ApplyTorque(t mgl32.Vec3)
	Integrate(dt float32)

	Velocity() mgl32.Vec3
	SetVelocity(v mgl32.Vec3)
	Position() mgl32.Vec3
	Orientation() mgl32.Quat

	// ResetKinematics teleports the body and zeroes linear and angular velocity.
	ResetKinematics(pos mgl32.Vec3, rot mgl32.Quat)
}

// DragTuner is implemented by bodies whose drag can change while the ship is live.
type DragTuner interface {
	SetDrag(linear, angular float32)
}

// InputSource is polled exactly once per tick.
type InputSource interface {
	Sample() InputSample
}

// LatchedInput holds the most recent sample pushed by a transport.
// It is safe to Set from one goroutine while the scheduler samples from another.
type LatchedInput struct {
	mu     sync.Mutex
	latest InputSample
}

func (l *LatchedInput) Set(in InputSample) {
	l.mu.Lock()
	l.latest = in
	l.mu.Unlock()
}

func (l *LatchedInput) Sample() InputSample {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}
