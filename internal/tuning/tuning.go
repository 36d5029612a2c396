/*
Package tuning
File: tuning.go
Description:
    Loads 'tuning.yaml': flight constants, fuel rates, rigid body drag, tier stat
    overrides and the upgrade catalog. The file is validated against an embedded
    JSON schema before it is decoded.

    Fields missing from the file keep their defaults.
*/

package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/everforgeworks/plasma-siege/internal/game"
)

// Tuning is the root of tuning.yaml.
type Tuning struct {
	TickRateHz          int `yaml:"tick_rate_hz" json:"tick_rate_hz"`                   // Fixed simulation rate
	BroadcastEveryTicks int `yaml:"broadcast_every_ticks" json:"broadcast_every_ticks"` // Telemetry push period

	Ship game.ShipConfig `yaml:",inline" json:"ship"`

	// Tiers overrides rows of the built-in tier table, keyed by tier name.
	Tiers map[string]game.StatProfile `yaml:"tiers" json:"tiers"`

	// Upgrades is the installable catalog. Empty means DefaultUpgrades.
	Upgrades []game.UpgradeSpec `yaml:"upgrades" json:"upgrades"`
}

// Defaults returns the tuning used when no file is present.
func Defaults() Tuning {
	return Tuning{
		TickRateHz:          game.DefaultTickRateHz,
		BroadcastEveryTicks: 5,
		Ship:                game.DefaultShipConfig(),
		Upgrades:            DefaultUpgrades(),
	}
}

// DefaultUpgrades is the starter catalog, one line of three marks per category.
func DefaultUpgrades() []game.UpgradeSpec {
	return []game.UpgradeSpec{
		{Key: "fuel_tank_mk1", Name: "Auxiliary Tank Mk I", Category: game.CategoryFuel, Value: 20},
		{Key: "fuel_tank_mk2", Name: "Auxiliary Tank Mk II", Category: game.CategoryFuel, Value: 35},
		{Key: "fuel_tank_mk3", Name: "Auxiliary Tank Mk III", Category: game.CategoryFuel, Value: 50},
		{Key: "shield_cell_mk1", Name: "Shield Cell Mk I", Category: game.CategoryShield, Value: 25},
		{Key: "shield_cell_mk2", Name: "Shield Cell Mk II", Category: game.CategoryShield, Value: 40},
		{Key: "shield_cell_mk3", Name: "Shield Cell Mk III", Category: game.CategoryShield, Value: 60},
		{Key: "plasma_coil_mk1", Name: "Plasma Coil Mk I", Category: game.CategoryWeapon, Value: 5},
		{Key: "plasma_coil_mk2", Name: "Plasma Coil Mk II", Category: game.CategoryWeapon, Value: 10},
		{Key: "plasma_coil_mk3", Name: "Plasma Coil Mk III", Category: game.CategoryWeapon, Value: 15},
	}
}

// Load reads and validates a tuning file.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

// Parse validates raw YAML against the schema and decodes it over the defaults.
func Parse(raw []byte) (Tuning, error) {
	// 1. Structural check
	if err := validateSchema(raw); err != nil {
		return Tuning{}, &game.ConfigurationError{Reason: "tuning.yaml", Err: err}
	}

	// 2. Decode over defaults
	t := Defaults()
	t.Upgrades = nil
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Tuning{}, &game.ConfigurationError{Reason: "tuning.yaml", Err: err}
	}
	if len(t.Upgrades) == 0 {
		t.Upgrades = DefaultUpgrades()
	}

	// 3. Semantic check
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate checks everything the schema cannot express.
func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return &game.ConfigurationError{Reason: fmt.Sprintf("tick_rate_hz must be > 0, got %d", t.TickRateHz)}
	}
	if t.BroadcastEveryTicks <= 0 {
		return &game.ConfigurationError{Reason: fmt.Sprintf("broadcast_every_ticks must be > 0, got %d", t.BroadcastEveryTicks)}
	}
	if err := t.Ship.Validate(); err != nil {
		return err
	}
	if _, err := t.Profiles(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(t.Upgrades))
	for _, u := range t.Upgrades {
		if seen[u.Key] {
			return &game.ConfigurationError{Reason: fmt.Sprintf("duplicate upgrade key %q", u.Key)}
		}
		seen[u.Key] = true
		if !u.Category.Valid() {
			return &game.ConfigurationError{Reason: fmt.Sprintf("upgrade %q has unknown category %q", u.Key, u.Category)}
		}
	}
	return nil
}

// Profiles merges the tier overrides into the built-in table.
func (t Tuning) Profiles() (game.ProfileTable, error) {
	table := game.DefaultProfiles()
	for name, p := range t.Tiers {
		tier, err := game.ParseTier(name)
		if err != nil {
			return nil, err
		}
		table[tier] = p
	}
	for _, tier := range game.Tiers {
		if _, err := table.Lookup(tier); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Upgrade is a helper to retrieve a catalog entry by its Key.
func (t Tuning) Upgrade(key string) (game.UpgradeSpec, bool) {
	for _, u := range t.Upgrades {
		if u.Key == key {
			return u, true
		}
	}
	return game.UpgradeSpec{}, false
}
