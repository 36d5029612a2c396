/*
Package game
File: fleet.go
Description:
    The registry of live ships. Each ship owns its state independently;
    the fleet only guards the id -> ship map.

    Lock order: the fleet lock is never held while a ship lock is taken.
*/

package game

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Fleet holds every ship in the world.
type Fleet struct {
	mu    sync.RWMutex
	ships map[string]*ShipSimulation

	cfgMu sync.RWMutex
	cfg   ShipConfig
	opts  Options
}

// NewFleet prepares a fleet that spawns ships with cfg and opts.
// Input in opts is ignored: every spawned ship gets its own latched input.
func NewFleet(cfg ShipConfig, opts Options) *Fleet {
	opts.Input = nil
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Fleet{
		ships: make(map[string]*ShipSimulation),
		cfg:   cfg,
		opts:  opts,
	}
}

// Spawn creates a ship of tier with a fresh id.
func (f *Fleet) Spawn(tier Tier) (*ShipSimulation, error) {
	return f.SpawnWithID(uuid.NewString(), tier)
}

// SpawnWithID creates a ship with a caller-chosen id (restored pilots).
func (f *Fleet) SpawnWithID(id string, tier Tier) (*ShipSimulation, error) {
	f.cfgMu.RLock()
	cfg, opts := f.cfg, f.opts
	f.cfgMu.RUnlock()

	ship, err := NewShipSimulation(id, tier, cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := f.Add(ship); err != nil {
		return nil, err
	}
	return ship, nil
}

// Restore spawns a ship for a persisted pilot and loads its progress.
func (f *Fleet) Restore(rec PilotRecord) (*ShipSimulation, error) {
	f.cfgMu.RLock()
	cfg, opts := f.cfg, f.opts
	f.cfgMu.RUnlock()

	ship, err := NewShipSimulation(rec.ShipID, rec.Tier, cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := ship.Restore(rec); err != nil {
		return nil, err
	}
	if err := f.Add(ship); err != nil {
		return nil, err
	}
	return ship, nil
}

// Add registers an already built ship.
func (f *Fleet) Add(ship *ShipSimulation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ships[ship.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrShipExists, ship.ID())
	}
	f.ships[ship.ID()] = ship
	return nil
}

// Get looks a ship up by id.
func (f *Fleet) Get(id string) (*ShipSimulation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ship, ok := f.ships[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShipNotFound, id)
	}
	return ship, nil
}

// Remove drops a ship from the fleet and returns it.
func (f *Fleet) Remove(id string) (*ShipSimulation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ship, ok := f.ships[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShipNotFound, id)
	}
	delete(f.ships, id)
	return ship, nil
}

// Len is the number of live ships.
func (f *Fleet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ships)
}

// Ships returns the live ships sorted by id.
func (f *Fleet) Ships() []*ShipSimulation {
	f.mu.RLock()
	out := make([]*ShipSimulation, 0, len(f.ships))
	for _, s := range f.ships {
		out = append(out, s)
	}
	f.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// StepAll advances every ship by one tick.
func (f *Fleet) StepAll(dt float32) {
	for _, s := range f.Ships() {
		s.Step(dt)
	}
}

// Snapshots samples every ship, sorted by id.
func (f *Fleet) Snapshots() []Snapshot {
	ships := f.Ships()
	out := make([]Snapshot, 0, len(ships))
	for _, s := range ships {
		out = append(out, s.Snapshot())
	}
	return out
}

// Records captures the pilot data of every ship.
func (f *Fleet) Records() []PilotRecord {
	ships := f.Ships()
	out := make([]PilotRecord, 0, len(ships))
	for _, s := range ships {
		out = append(out, s.Record())
	}
	return out
}

// Profiles returns the tier table ships are spawned with.
func (f *Fleet) Profiles() ProfileTable {
	f.cfgMu.RLock()
	defer f.cfgMu.RUnlock()
	if f.opts.Profiles == nil {
		return DefaultProfiles()
	}
	out := make(ProfileTable, len(f.opts.Profiles))
	for k, v := range f.opts.Profiles {
		out[k] = v
	}
	return out
}

// Config returns the tuning new ships are spawned with.
func (f *Fleet) Config() ShipConfig {
	f.cfgMu.RLock()
	defer f.cfgMu.RUnlock()
	return f.cfg
}

// Reconfigure swaps the tuning for future spawns and pushes it to live ships
// (flight, fuel and drag). Tier profiles only apply to ships spawned afterwards.
func (f *Fleet) Reconfigure(cfg ShipConfig, profiles ProfileTable) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if profiles != nil {
		for _, tier := range Tiers {
			if _, err := profiles.Lookup(tier); err != nil {
				return err
			}
		}
	}

	f.cfgMu.Lock()
	f.cfg = cfg
	if profiles != nil {
		f.opts.Profiles = profiles
	}
	f.cfgMu.Unlock()

	for _, s := range f.Ships() {
		if err := s.ApplyConfig(cfg); err != nil {
			return err
		}
	}
	return nil
}
