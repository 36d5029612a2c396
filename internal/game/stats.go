/*
Package game
File: stats.go
Description:
    The tier table. Every ship class differs only in its baseline stats and mass,
    so a ship is parameterized by a StatProfile value looked up here.
*/

package game

import "math"

// baseProfiles is indexed by Tier.
var baseProfiles = [...]StatProfile{
	// Scout: fast and agile starter ship
	TierScout: {MaxShield: 100, MaxSpeed: 80, WeaponSlotCount: 1, MassFactor: 0.8},
	// Fighter: balanced line ship
	TierFighter: {MaxShield: 150, MaxSpeed: 65, WeaponSlotCount: 2, MassFactor: 1.0},
	// Destroyer: slow, heavily shielded
	TierDestroyer: {MaxShield: 250, MaxSpeed: 50, WeaponSlotCount: 3, MassFactor: 1.5},
}

// ProfileTable maps each tier to its baseline. Tuning files may override rows.
type ProfileTable map[Tier]StatProfile

// DefaultProfiles returns a fresh copy of the built-in tier table.
func DefaultProfiles() ProfileTable {
	t := make(ProfileTable, len(baseProfiles))
	for i, p := range baseProfiles {
		t[Tier(i)] = p
	}
	return t
}

// Lookup returns the profile for tier, or a ConfigurationError when the tier is
// unknown or its row is malformed.
func (t ProfileTable) Lookup(tier Tier) (StatProfile, error) {
	if !tier.Valid() {
		return StatProfile{}, configErrorf("unknown tier %d", int(tier))
	}
	p, ok := t[tier]
	if !ok {
		return StatProfile{}, configErrorf("no stat profile for tier %s", tier)
	}
	if err := p.Validate(); err != nil {
		return StatProfile{}, &ConfigurationError{Reason: "tier " + tier.String(), Err: err}
	}
	return p, nil
}

// Validate checks that every float stat is strictly positive and finite.
func (p StatProfile) Validate() error {
	if !positive(p.MaxShield) {
		return configErrorf("max_shield must be > 0, got %v", p.MaxShield)
	}
	if !positive(p.MaxSpeed) {
		return configErrorf("max_speed must be > 0, got %v", p.MaxSpeed)
	}
	if !positive(p.MassFactor) {
		return configErrorf("mass_factor must be > 0, got %v", p.MassFactor)
	}
	return nil
}

func positive(v float32) bool {
	f := float64(v)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
