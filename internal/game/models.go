/*
Package game
File: models.go
Description:
    Defines the data structures shared by the ship simulation.
    This file serves as the "schema" for the simulation: ship tiers, stat profiles,
    input samples, HUD snapshots and the events reported to outside collaborators.

    No simulation logic is performed here beyond parsing and formatting helpers.
*/

package game

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Tier selects one of the fixed ship classes.
type Tier int

const (
	TierScout Tier = iota
	TierFighter
	TierDestroyer
)

// Tiers lists every valid tier in table order.
var Tiers = []Tier{TierScout, TierFighter, TierDestroyer}

func (t Tier) String() string {
	switch t {
	case TierScout:
		return "scout"
	case TierFighter:
		return "fighter"
	case TierDestroyer:
		return "destroyer"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t >= TierScout && t <= TierDestroyer
}

// ParseTier accepts the lower-case names used by the API and tuning.yaml.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scout":
		return TierScout, nil
	case "fighter":
		return TierFighter, nil
	case "destroyer":
		return TierDestroyer, nil
	}
	return 0, configErrorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, configErrorf("unknown tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// StatProfile is the tier baseline. It is set once at ship creation and never mutated.
type StatProfile struct {
	MaxShield       float32 `yaml:"max_shield" json:"max_shield"`               // Shield pool restored on respawn
	MaxSpeed        float32 `yaml:"max_speed" json:"max_speed"`                 // Velocity ceiling before boost
	WeaponSlotCount uint    `yaml:"weapon_slot_count" json:"weapon_slot_count"` // Weapon mounts fired per trigger
	MassFactor      float32 `yaml:"mass_factor" json:"mass_factor"`             // Rigid body mass
}

// InputSample is one tick's worth of pilot input.
// Axis and roll values are expected in {-1,0,1}; anything else is clamped.
type InputSample struct {
	Forward  float32 `json:"forward"`  // W / S
	Strafe   float32 `json:"strafe"`   // D / A
	Vertical float32 `json:"vertical"` // Space / Shift
	Roll     float32 `json:"roll"`     // E / Q
	Yaw      float32 `json:"yaw"`      // Look delta X
	Pitch    float32 `json:"pitch"`    // Look delta Y
	Boost    bool    `json:"boost"`
	Fire     bool    `json:"fire"`
}

// Snapshot is the read-only HUD view of a ship, sampled on demand.
type Snapshot struct {
	ID         string     `json:"id"`
	Tier       Tier       `json:"tier"`
	Tick       uint64     `json:"tick"`
	Tokens     int        `json:"tokens"`
	Fuel       float32    `json:"fuel"`
	MaxFuel    float32    `json:"max_fuel"`
	Shield     float32    `json:"shield"`
	MaxShield  float32    `json:"max_shield"`
	Level      int        `json:"level"`
	Experience int        `json:"experience"`
	CanMint    bool       `json:"can_mint"`
	IsMinted   bool       `json:"is_minted"`
	Boosting   bool       `json:"boosting"`
	Speed      float32    `json:"speed"`
	Position   mgl32.Vec3 `json:"position"`
}

// String renders the debug HUD line.
func (s Snapshot) String() string {
	return fmt.Sprintf("Tokens: %d, Fuel: %.1f, Shield: %.1f, Level: %d", s.Tokens, s.Fuel, s.Shield, s.Level)
}

// DestructionEvent is reported when a ship's shield is depleted and it respawns.
type DestructionEvent struct {
	ShipID    string `json:"ship_id"`
	Tick      uint64 `json:"tick"`
	Dropped   int    `json:"dropped"`   // Tokens forfeited
	Remaining int    `json:"remaining"` // Tokens kept by the pilot
}

// LevelUpEvent is reported on every level increase.
type LevelUpEvent struct {
	ShipID       string `json:"ship_id"`
	Level        int    `json:"level"`
	MintUnlocked bool   `json:"mint_unlocked"`
}

// FireEvent is the rate-limited trigger handed to external combat logic.
type FireEvent struct {
	ShipID      string     `json:"ship_id"`
	Time        float64    `json:"time"`
	Mounts      uint       `json:"mounts"`
	Origin      mgl32.Vec3 `json:"origin"`
	Direction   mgl32.Vec3 `json:"direction"`
	WeaponBonus float32    `json:"weapon_bonus"`
}

// PilotRecord is the persisted part of a ship: who it is and what it has earned.
type PilotRecord struct {
	ShipID      string `json:"ship_id"`
	Tier        Tier   `json:"tier"`
	Experience  int    `json:"experience"`
	IsMinted    bool   `json:"is_minted"`
	MintAddress string `json:"mint_address,omitempty"`
	Tokens      int    `json:"tokens"`
}
