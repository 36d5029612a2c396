/*
Package game
File: upgrades.go
Description:
    Upgrade slots. Each ship carries three fixed-length slot arrays (fuel, shield, weapon).
    Slots are addressed by index and are independently empty or occupied.
    The aggregate bonus per category feeds the effective ship stats.
*/

package game

import "fmt"

// SlotsPerCategory is the fixed length of every slot array.
const SlotsPerCategory = 3

// UpgradeCategory names one of the three slot arrays.
type UpgradeCategory string

const (
	CategoryFuel   UpgradeCategory = "fuel"
	CategoryShield UpgradeCategory = "shield"
	CategoryWeapon UpgradeCategory = "weapon"
)

// Categories lists the slot arrays in display order.
var Categories = []UpgradeCategory{CategoryFuel, CategoryShield, CategoryWeapon}

// Valid reports whether c names one of the slot arrays.
func (c UpgradeCategory) Valid() bool {
	_, ok := c.index()
	return ok
}

func (c UpgradeCategory) index() (int, bool) {
	switch c {
	case CategoryFuel:
		return 0, true
	case CategoryShield:
		return 1, true
	case CategoryWeapon:
		return 2, true
	}
	return 0, false
}

// UpgradeSpec is an installable upgrade from the catalog.
type UpgradeSpec struct {
	Key      string          `yaml:"key" json:"key"`           // Unique ID (e.g., "fuel_tank_mk1")
	Name     string          `yaml:"name" json:"name"`         // Display name
	Category UpgradeCategory `yaml:"category" json:"category"` // Slot array this upgrade fits
	Value    float32         `yaml:"value" json:"value"`       // Bonus granted while installed
}

// Bonus is the amount this upgrade contributes to its category.
func (u UpgradeSpec) Bonus() float32 {
	return u.Value
}

// UpgradeSlot holds at most one upgrade.
type UpgradeSlot struct {
	Installed *UpgradeSpec `json:"installed,omitempty"`
	SlotTier  int          `json:"slot_tier"`
}

// Bonus is 0 for an empty slot.
func (s UpgradeSlot) Bonus() float32 {
	if s.Installed == nil {
		return 0
	}
	return s.Installed.Bonus()
}

// UpgradeSystem owns the three slot arrays of one ship.
type UpgradeSystem struct {
	slots [3][SlotsPerCategory]UpgradeSlot
}

// Install writes spec into slot index of category. A rejected write leaves every slot unchanged.
func (u *UpgradeSystem) Install(category UpgradeCategory, index int, spec UpgradeSpec, slotTier int) error {
	row, err := u.row(category, index)
	if err != nil {
		return err
	}
	if spec.Category != category {
		return fmt.Errorf("%w: %s upgrade %q into %s slot", ErrUpgradeCategoryMismatch, spec.Category, spec.Key, category)
	}
	s := spec
	u.slots[row][index] = UpgradeSlot{Installed: &s, SlotTier: slotTier}
	return nil
}

// Remove empties slot index of category.
func (u *UpgradeSystem) Remove(category UpgradeCategory, index int) error {
	row, err := u.row(category, index)
	if err != nil {
		return err
	}
	u.slots[row][index] = UpgradeSlot{}
	return nil
}

// Bonus sums the installed bonuses of category. Unknown categories contribute nothing.
func (u *UpgradeSystem) Bonus(category UpgradeCategory) float32 {
	row, ok := category.index()
	if !ok {
		return 0
	}
	var total float32
	for _, s := range u.slots[row] {
		total += s.Bonus()
	}
	return total
}

// Slots returns a copy of the slot array for category.
func (u *UpgradeSystem) Slots(category UpgradeCategory) []UpgradeSlot {
	row, ok := category.index()
	if !ok {
		return nil
	}
	out := make([]UpgradeSlot, SlotsPerCategory)
	for i, s := range u.slots[row] {
		if s.Installed != nil {
			spec := *s.Installed
			s.Installed = &spec
		}
		out[i] = s
	}
	return out
}

func (u *UpgradeSystem) row(category UpgradeCategory, index int) (int, error) {
	row, ok := category.index()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUpgradeCategory, category)
	}
	if index < 0 || index >= SlotsPerCategory {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrSlotIndexOutOfRange, index, SlotsPerCategory)
	}
	return row, nil
}
