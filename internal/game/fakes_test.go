package game

import (
	"io"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// fakeBody is a Physics that moves only when told to. Integrate adds the
// accumulated force straight onto the velocity (unit mass, no drag).
type fakeBody struct {
	pos    mgl32.Vec3
	vel    mgl32.Vec3
	rot    mgl32.Quat
	force  mgl32.Vec3
	torque mgl32.Vec3

	integrations int
	resets       int
	lastTorque   mgl32.Vec3
	drag         [2]float32
}

func newFakeBody() *fakeBody {
	return &fakeBody{rot: mgl32.QuatIdent()}
}

func (b *fakeBody) ApplyForce(f mgl32.Vec3)  { b.force = b.force.Add(f) }
func (b *fakeBody) ApplyTorque(t mgl32.Vec3) { b.torque = b.torque.Add(t) }

func (b *fakeBody) Integrate(dt float32) {
	b.integrations++
	b.vel = b.vel.Add(b.force.Mul(dt))
	b.pos = b.pos.Add(b.vel.Mul(dt))
	b.lastTorque = b.torque
	b.force = mgl32.Vec3{}
	b.torque = mgl32.Vec3{}
}

func (b *fakeBody) Velocity() mgl32.Vec3     { return b.vel }
func (b *fakeBody) SetVelocity(v mgl32.Vec3) { b.vel = v }
func (b *fakeBody) Position() mgl32.Vec3     { return b.pos }
func (b *fakeBody) Orientation() mgl32.Quat  { return b.rot }

func (b *fakeBody) ResetKinematics(pos mgl32.Vec3, rot mgl32.Quat) {
	b.resets++
	b.pos = pos
	b.rot = rot
	b.vel = mgl32.Vec3{}
}

func (b *fakeBody) SetDrag(linear, angular float32) { b.drag = [2]float32{linear, angular} }

// scriptedInput returns the same sample every tick.
type scriptedInput struct{ in InputSample }

func (s *scriptedInput) Sample() InputSample { return s.in }

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestShip builds a ship on a fakeBody.
func newTestShip(t testing.TB, tier Tier, hooks Hooks) (*ShipSimulation, *fakeBody) {
	t.Helper()
	body := newFakeBody()
	ship, err := NewShipSimulation("test", tier, DefaultShipConfig(), Options{
		NewBody: func(StatProfile) Physics { return body },
		Logger:  quietLogger(),
		Hooks:   hooks,
	})
	require.NoError(t, err)
	return ship, body
}
