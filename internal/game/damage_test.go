package game

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTakeDamageReducesShield(t *testing.T) {
	d := NewDamageModel(100, newFakeBody(), &TokenLedger{}, quietLogger())
	_, destroyed := d.TakeDamage(30)
	assert.False(t, destroyed)
	assert.Equal(t, float32(70), d.Shield())
}

func TestTakeDamageRespawns(t *testing.T) {
	body := newFakeBody()
	body.pos = mgl32.Vec3{50, 0, 0}
	body.vel = mgl32.Vec3{0, 0, 40}
	ledger := &TokenLedger{}
	ledger.Collect(10)

	d := NewDamageModel(100, body, ledger, quietLogger())
	d.SetSpawn(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())
	d.TakeDamage(99)
	assert.Equal(t, float32(1), d.Shield())

	r, destroyed := d.TakeDamage(5)
	assert.True(t, destroyed)
	assert.Equal(t, Respawn{Dropped: 5, Remaining: 5}, r)
	assert.Equal(t, float32(100), d.Shield())
	assert.Equal(t, 1, body.resets)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, body.pos)
	assert.Equal(t, mgl32.Vec3{}, body.vel)
	assert.Equal(t, 5, ledger.Balance())
}

func TestTakeDamageExactlyZeroDestroys(t *testing.T) {
	d := NewDamageModel(50, newFakeBody(), &TokenLedger{}, quietLogger())
	_, destroyed := d.TakeDamage(50)
	assert.True(t, destroyed)
	assert.Equal(t, float32(50), d.Shield())
}

// Negative damage heals, capped at the max shield. This pins current behaviour.
func TestNegativeDamageHealsUpToMax(t *testing.T) {
	d := NewDamageModel(100, newFakeBody(), &TokenLedger{}, quietLogger())
	d.TakeDamage(40)

	_, destroyed := d.TakeDamage(-15)
	assert.False(t, destroyed)
	assert.Equal(t, float32(75), d.Shield())

	d.TakeDamage(-500)
	assert.Equal(t, float32(100), d.Shield())
}

func TestSetMaxShieldClampsOnly(t *testing.T) {
	d := NewDamageModel(100, newFakeBody(), &TokenLedger{}, quietLogger())
	d.SetMaxShield(140)
	assert.Equal(t, float32(100), d.Shield())
	assert.Equal(t, float32(140), d.MaxShield())

	d.SetMaxShield(80)
	assert.Equal(t, float32(80), d.Shield())

	d.SetMaxShield(-1)
	assert.Equal(t, float32(80), d.MaxShield())
}

func TestTokenForfeiture(t *testing.T) {
	tests := []struct {
		balance, dropped, kept int
	}{
		{10, 5, 5},
		{5, 2, 3},
		{1, 0, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		l := &TokenLedger{}
		l.Collect(tt.balance)
		assert.Equal(t, tt.dropped, l.ForfeitOnDestruction(), "balance %d", tt.balance)
		assert.Equal(t, tt.kept, l.Balance(), "balance %d", tt.balance)
	}
}

func TestTokenCollectIgnoresNegative(t *testing.T) {
	l := &TokenLedger{}
	assert.Equal(t, 3, l.Collect(3))
	assert.Equal(t, 3, l.Collect(-10))
	assert.Equal(t, 3, l.Balance())
}

func TestTokenCollectSaturates(t *testing.T) {
	l := &TokenLedger{}
	l.Collect(math.MaxInt)
	assert.Equal(t, math.MaxInt, l.Collect(1))
	assert.Equal(t, math.MaxInt, l.Collect(math.MaxInt))
	assert.Equal(t, math.MaxInt, l.Balance())
}
