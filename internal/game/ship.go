/*
Package game
File: ship.go
Description:
    ShipSimulation is the aggregate that owns every piece of per-ship state:
    progression, shield, fuel, tokens and upgrade slots.

    It is updated once per fixed tick by Step, in this order:
    1. Movement and rotation (FlightController -> physics forces/torques)
    2. Fuel drain/regen (ResourceGovernor)
    3. Integration and the hard speed clamp
    4. Fire gate
    5. Event drain (damage, pickups, experience queued since the last tick)

    Thread Safety: a single mutex serializes Step, event drains, upgrade writes and
    snapshots. Hooks are invoked after the mutex is released.
*/

package game

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/everforgeworks/plasma-siege/internal/physics"
)

// ShipConfig bundles the tuning every ship is built with.
type ShipConfig struct {
	Flight    FlightConfig   `yaml:"flight" json:"flight"`
	Resources ResourceConfig `yaml:"resources" json:"resources"`
	Physics   physics.Config `yaml:"physics" json:"physics"`
}

// DefaultShipConfig returns the stock tuning.
func DefaultShipConfig() ShipConfig {
	return ShipConfig{
		Flight:    DefaultFlightConfig(),
		Resources: DefaultResourceConfig(),
		Physics:   physics.DefaultConfig(),
	}
}

func (c ShipConfig) Validate() error {
	if err := c.Flight.Validate(); err != nil {
		return err
	}
	if err := c.Resources.Validate(); err != nil {
		return err
	}
	if c.Physics.LinearDrag < 0 || c.Physics.AngularDrag < 0 {
		return configErrorf("drag must be >= 0")
	}
	return nil
}

// Hooks let the world react to ship events. Any of them may be nil.
type Hooks struct {
	OnDestroyed func(DestructionEvent)
	OnLevelUp   func(LevelUpEvent)
	OnFire      func(FireEvent)
}

// Options carries the collaborators of a ship.
type Options struct {
	Profiles ProfileTable              // nil means DefaultProfiles
	NewBody  func(StatProfile) Physics // nil means a physics.Body built from ShipConfig.Physics
	Input    InputSource               // nil means an internal LatchedInput fed by SetInput
	Logger   *log.Logger
	Hooks    Hooks
}

type eventKind int

const (
	eventDamage eventKind = iota + 1
	eventPickup
	eventExperience
)

type shipEvent struct {
	kind   eventKind
	amount float32
	value  int
}

// ShipSimulation is one piloted ship.
type ShipSimulation struct {
	mu sync.Mutex

	id      string
	tier    Tier
	profile StatProfile
	cfg     ShipConfig

	body        Physics
	input       InputSource
	latched     *LatchedInput
	flight      *FlightController
	resources   *ResourceGovernor
	damage      *DamageModel
	tokens      *TokenLedger
	progression *ProgressionTracker
	upgrades    UpgradeSystem

	tick     uint64
	clock    float64
	boosting bool
	queue    []shipEvent

	hooks   Hooks
	logger  *log.Logger
	pending []func()
}

// NewShipSimulation builds a fully initialized ship or returns a ConfigurationError.
func NewShipSimulation(id string, tier Tier, cfg ShipConfig, opts Options) (*ShipSimulation, error) {
	// 1. Validate everything before allocating any state
	profiles := opts.Profiles
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	profile, err := profiles.Lookup(tier)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 2. Build the physics body
	var body Physics
	if opts.NewBody != nil {
		body = opts.NewBody(profile)
	} else {
		pc := cfg.Physics
		pc.Mass = profile.MassFactor
		body = physics.NewBody(pc)
	}
	if body == nil {
		return nil, configErrorf("no physics body for %s ship", tier)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &ShipSimulation{
		id:          id,
		tier:        tier,
		profile:     profile,
		cfg:         cfg,
		body:        body,
		flight:      NewFlightController(cfg.Flight),
		resources:   NewResourceGovernor(cfg.Resources),
		tokens:      &TokenLedger{},
		progression: NewProgressionTracker(),
		hooks:       opts.Hooks,
		logger:      logger,
	}
	s.damage = NewDamageModel(profile.MaxShield, body, s.tokens, logger)
	s.damage.SetSpawn(body.Position(), body.Orientation())

	if opts.Input != nil {
		s.input = opts.Input
	} else {
		s.latched = &LatchedInput{}
		s.input = s.latched
	}
	s.progression.onLevelUp = s.leveledUp

	logger.Printf("SIM: %s ship %s initialized with %.0f shield and %.0f speed", tier, id, profile.MaxShield, profile.MaxSpeed)
	return s, nil
}

func (s *ShipSimulation) ID() string           { return s.id }
func (s *ShipSimulation) Tier() Tier           { return s.tier }
func (s *ShipSimulation) Profile() StatProfile { return s.profile }

// SetInput latches the next input sample. It is a no-op for ships built with a custom InputSource.
func (s *ShipSimulation) SetInput(in InputSample) bool {
	if s.latched == nil {
		return false
	}
	s.latched.Set(in)
	return true
}

// Step advances the ship by one fixed tick of dt seconds.
func (s *ShipSimulation) Step(dt float32) {
	s.mu.Lock()
	in := s.input.Sample()

	// 1. Movement and rotation
	cmd := s.flight.Tick(in, s.resources.State(), s.profile.MaxSpeed, s.body.Orientation())
	s.body.ApplyForce(cmd.Force)
	s.body.ApplyTorque(cmd.Torque)
	s.boosting = cmd.BoostActive

	// 2. Fuel
	s.resources.Update(dt, cmd.BoostActive)

	// 3. Integrate, then clamp
	s.body.Integrate(dt)
	if v, clamped := ClampVelocity(s.body.Velocity(), cmd.SpeedLimit); clamped {
		s.body.SetVelocity(v)
	}

	s.tick++
	s.clock += float64(dt)

	// 4. Weapons
	if in.Fire && s.flight.TryFire(s.clock) {
		s.fired()
	}

	// 5. Events delivered since the last tick
	s.drainLocked()
	s.unlockAndNotify()
}

// OnDamageApplied queues damage for the next tick boundary.
func (s *ShipSimulation) OnDamageApplied(amount float32) {
	s.enqueue(shipEvent{kind: eventDamage, amount: amount})
}

// OnTokenPickupConsumed queues a token pickup for the next tick boundary.
func (s *ShipSimulation) OnTokenPickupConsumed(value int) {
	s.enqueue(shipEvent{kind: eventPickup, value: value})
}

// OnExperienceAwarded queues an experience award for the next tick boundary.
func (s *ShipSimulation) OnExperienceAwarded(amount int) {
	s.enqueue(shipEvent{kind: eventExperience, value: amount})
}

// DrainEvents applies queued events immediately, outside of a tick.
func (s *ShipSimulation) DrainEvents() {
	s.mu.Lock()
	s.drainLocked()
	s.unlockAndNotify()
}

// InstallUpgrade writes spec into a slot. Rejected writes leave the ship unchanged.
func (s *ShipSimulation) InstallUpgrade(category UpgradeCategory, index int, spec UpgradeSpec, slotTier int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.upgrades.Install(category, index, spec, slotTier); err != nil {
		return err
	}
	s.applyUpgradeBonusesLocked()
	s.logger.Printf("SIM: ship %s installed %s in %s slot %d", s.id, spec.Key, category, index)
	return nil
}

// RemoveUpgrade empties a slot.
func (s *ShipSimulation) RemoveUpgrade(category UpgradeCategory, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.upgrades.Remove(category, index); err != nil {
		return err
	}
	s.applyUpgradeBonusesLocked()
	return nil
}

// UpgradeSlots returns a copy of one slot array.
func (s *ShipSimulation) UpgradeSlots(category UpgradeCategory) []UpgradeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upgrades.Slots(category)
}

// RecordMint stores the address produced by an external mint.
func (s *ShipSimulation) RecordMint(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.progression.RecordMint(address); err != nil {
		return fmt.Errorf("ship %s: %w", s.id, err)
	}
	s.logger.Printf("SIM: ship %s minted at %s", s.id, address)
	return nil
}

// CanMintNFT reports mint eligibility.
func (s *ShipSimulation) CanMintNFT() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progression.CanMintNFT()
}

// ApplyConfig swaps in new tuning for a live ship (hot reload). Progress and pools are kept.
// Drag reaches the body when it implements DragTuner; mass stays fixed by the tier.
func (s *ShipSimulation) ApplyConfig(cfg ShipConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := NewFlightController(cfg.Flight)
	next.nextFireTime = s.flight.nextFireTime
	s.flight = next
	s.resources.setConfig(cfg.Resources, s.upgrades.Bonus(CategoryFuel))
	if t, ok := s.body.(DragTuner); ok {
		t.SetDrag(cfg.Physics.LinearDrag, cfg.Physics.AngularDrag)
	}
	s.cfg = cfg
	return nil
}

// Snapshot samples the HUD view.
func (s *ShipSimulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.resources.State()
	return Snapshot{
		ID:         s.id,
		Tier:       s.tier,
		Tick:       s.tick,
		Tokens:     s.tokens.Balance(),
		Fuel:       res.CurrentFuel,
		MaxFuel:    res.MaxFuel,
		Shield:     s.damage.Shield(),
		MaxShield:  s.damage.MaxShield(),
		Level:      s.progression.Level(),
		Experience: s.progression.Experience(),
		CanMint:    s.progression.CanMintNFT(),
		IsMinted:   s.progression.IsMinted(),
		Boosting:   s.boosting,
		Speed:      s.body.Velocity().Len(),
		Position:   s.body.Position(),
	}
}

// Record captures the persisted pilot data.
func (s *ShipSimulation) Record() PilotRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PilotRecord{
		ShipID:      s.id,
		Tier:        s.tier,
		Experience:  s.progression.Experience(),
		IsMinted:    s.progression.IsMinted(),
		MintAddress: s.progression.MintAddress(),
		Tokens:      s.tokens.Balance(),
	}
}

// Restore loads a persisted pilot into a freshly spawned ship of the same tier.
func (s *ShipSimulation) Restore(rec PilotRecord) error {
	if rec.Tier != s.tier {
		return configErrorf("pilot %s is a %s, ship is a %s", rec.ShipID, rec.Tier, s.tier)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progression.restore(rec.Experience, rec.IsMinted, rec.MintAddress)
	s.tokens.restore(rec.Tokens)
	return nil
}

func (s *ShipSimulation) enqueue(ev shipEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
}

func (s *ShipSimulation) drainLocked() {
	queue := s.queue
	s.queue = nil
	for _, ev := range queue {
		switch ev.kind {
		case eventDamage:
			if r, destroyed := s.damage.TakeDamage(ev.amount); destroyed {
				s.destroyed(r)
			}
		case eventPickup:
			total := s.tokens.Collect(ev.value)
			s.logger.Printf("SIM: ship %s collected %d PLASMA, total %d", s.id, ev.value, total)
		case eventExperience:
			s.progression.AwardExperience(ev.value)
		}
	}
}

func (s *ShipSimulation) applyUpgradeBonusesLocked() {
	s.damage.SetMaxShield(s.profile.MaxShield + s.upgrades.Bonus(CategoryShield))
	s.resources.SetMaxFuel(s.cfg.Resources.MaxFuel + s.upgrades.Bonus(CategoryFuel))
}

func (s *ShipSimulation) destroyed(r Respawn) {
	s.boosting = false
	ev := DestructionEvent{ShipID: s.id, Tick: s.tick, Dropped: r.Dropped, Remaining: r.Remaining}
	if h := s.hooks.OnDestroyed; h != nil {
		s.pending = append(s.pending, func() { h(ev) })
	}
}

func (s *ShipSimulation) leveledUp(level int) {
	s.logger.Printf("SIM: ship %s leveled up to %d", s.id, level)
	unlocked := level == MaxLevel && s.progression.CanMintNFT()
	if unlocked {
		s.logger.Printf("SIM: ship %s can now be minted as NFT", s.id)
	}
	ev := LevelUpEvent{ShipID: s.id, Level: level, MintUnlocked: unlocked}
	if h := s.hooks.OnLevelUp; h != nil {
		s.pending = append(s.pending, func() { h(ev) })
	}
}

func (s *ShipSimulation) fired() {
	h := s.hooks.OnFire
	if h == nil {
		return
	}
	rot := s.body.Orientation()
	ev := FireEvent{
		ShipID:      s.id,
		Time:        s.clock,
		Mounts:      s.profile.WeaponSlotCount,
		Origin:      s.body.Position(),
		Direction:   rot.Rotate(localForward),
		WeaponBonus: s.upgrades.Bonus(CategoryWeapon),
	}
	s.pending = append(s.pending, func() { h(ev) })
}

// unlockAndNotify releases the mutex and then runs the hooks collected while it was held.
func (s *ShipSimulation) unlockAndNotify() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// IsConfigurationError reports whether err came from ship construction or tuning validation.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
