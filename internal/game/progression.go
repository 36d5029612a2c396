/*
Package game
File: progression.go
Description:
    Experience and level tracking for a ship, and the NFT mint eligibility predicate.

    Level is derived from experience: min(10, floor(exp/1000) + 1).
    Experience never decreases, so there is no level-down path.
*/

package game

import (
	"fmt"
	"math"
)

const (
	MaxLevel           = 10
	ExperiencePerLevel = 1000
)

// LevelFor maps total experience to a level.
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return min(MaxLevel, experience/ExperiencePerLevel+1)
}

// ProgressionTracker holds the ProgressionState of one ship.
type ProgressionTracker struct {
	level       int
	experience  int
	isMinted    bool
	mintAddress string

	// onLevelUp is called after the level field has been updated.
	onLevelUp func(level int)
}

// NewProgressionTracker starts at level 1 with no experience.
func NewProgressionTracker() *ProgressionTracker {
	return &ProgressionTracker{level: 1}
}

func (p *ProgressionTracker) Level() int          { return p.level }
func (p *ProgressionTracker) Experience() int     { return p.experience }
func (p *ProgressionTracker) IsMinted() bool      { return p.isMinted }
func (p *ProgressionTracker) MintAddress() string { return p.mintAddress }

// AwardExperience adds amount (negative amounts count as 0, totals saturate at math.MaxInt)
// and recomputes the level.
// Returns true when the ship leveled up.
func (p *ProgressionTracker) AwardExperience(amount int) bool {
	if amount <= 0 {
		return false
	}
	// Saturate instead of wrapping negative.
	if amount > math.MaxInt-p.experience {
		p.experience = math.MaxInt
	} else {
		p.experience += amount
	}

	newLevel := LevelFor(p.experience)
	// Redundant with the cap in LevelFor.
	if newLevel > p.level && newLevel <= MaxLevel {
		p.level = newLevel
		if p.onLevelUp != nil {
			p.onLevelUp(newLevel)
		}
		return true
	}
	return false
}

// CanMintNFT is true at max level until the ship has been minted.
func (p *ProgressionTracker) CanMintNFT() bool {
	return p.level >= MaxLevel && !p.isMinted
}

// RecordMint stores the result of an external mint. Once recorded it is permanent.
func (p *ProgressionTracker) RecordMint(address string) error {
	if !p.CanMintNFT() {
		return fmt.Errorf("%w: level %d, minted %t", ErrMintNotEligible, p.level, p.isMinted)
	}
	p.isMinted = true
	p.mintAddress = address
	return nil
}

// restore loads persisted progress. Level is recomputed, never trusted from storage.
func (p *ProgressionTracker) restore(experience int, minted bool, address string) {
	p.experience = max(0, experience)
	p.level = LevelFor(p.experience)
	p.isMinted = minted
	if minted {
		p.mintAddress = address
	}
}
