/*
Package game
File: damage.go
Description:
    Shield depletion and the destruction/respawn transition.

    The ship only has one logical state, Active. When the shield reaches zero the
    ship is destroyed and respawned in the same call: kinematics reset to the
    spawn point, shield refilled, half the tokens forfeited. There is no
    invulnerability window afterwards.
*/

package game

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

// Respawn describes one destruction/respawn transition.
type Respawn struct {
	Dropped   int
	Remaining int
}

// DamageModel owns the ShieldState of one ship.
type DamageModel struct {
	maxShield     float32
	currentShield float32

	body   Physics
	ledger *TokenLedger
	logger *log.Logger

	spawnPos mgl32.Vec3
	spawnRot mgl32.Quat
}

// NewDamageModel starts with a full shield.
func NewDamageModel(maxShield float32, body Physics, ledger *TokenLedger, logger *log.Logger) *DamageModel {
	if logger == nil {
		logger = log.Default()
	}
	return &DamageModel{
		maxShield:     maxShield,
		currentShield: maxShield,
		body:          body,
		ledger:        ledger,
		logger:        logger,
		spawnRot:      mgl32.QuatIdent(),
	}
}

func (d *DamageModel) Shield() float32    { return d.currentShield }
func (d *DamageModel) MaxShield() float32 { return d.maxShield }

// SetSpawn changes where the ship reappears after destruction.
func (d *DamageModel) SetSpawn(pos mgl32.Vec3, rot mgl32.Quat) {
	d.spawnPos = pos
	d.spawnRot = rot
}

// SetMaxShield changes the ceiling (upgrades). The current shield is clamped, never raised.
func (d *DamageModel) SetMaxShield(maxShield float32) {
	if !positive(maxShield) {
		return
	}
	d.maxShield = maxShield
	if d.currentShield > maxShield {
		d.currentShield = maxShield
	}
}

// TakeDamage subtracts amount from the shield and respawns the ship when it runs out.
//
// Negative amounts are not rejected: they act as healing, capped at the max shield.
func (d *DamageModel) TakeDamage(amount float32) (Respawn, bool) {
	if amount < 0 {
		d.logger.Printf("SIM: negative damage %.1f applied as healing", amount)
	}
	d.currentShield -= amount
	if d.currentShield > d.maxShield {
		d.currentShield = d.maxShield
	}
	d.logger.Printf("SIM: ship took %.1f damage, shield %.1f", amount, d.currentShield)

	if d.currentShield > 0 {
		return Respawn{}, false
	}
	return d.destroy(), true
}

func (d *DamageModel) destroy() Respawn {
	d.logger.Println("SIM: ship destroyed, respawning")

	// 1. Reset position and velocities
	if d.body != nil {
		d.body.ResetKinematics(d.spawnPos, d.spawnRot)
	}

	// 2. Restore shields
	d.currentShield = d.maxShield

	// 3. Drop 50% of tokens
	var r Respawn
	if d.ledger != nil {
		r.Dropped = d.ledger.ForfeitOnDestruction()
		r.Remaining = d.ledger.Balance()
	}
	d.logger.Printf("SIM: dropped %d PLASMA tokens", r.Dropped)
	return r
}
