/*
Package game
File: resources.go
Description:
    The fuel pool. Boosting drains it, everything else regenerates it.
    Exactly one of drain or regen happens per tick, decided by the tick's boost flag.
*/

package game

// ResourceConfig holds the fuel tuning.
type ResourceConfig struct {
	MaxFuel       float32 `yaml:"max_fuel" json:"max_fuel"`               // Tank capacity before upgrades
	FuelRegenRate float32 `yaml:"fuel_regen_rate" json:"fuel_regen_rate"` // Units per second while not boosting
	BoostFuelCost float32 `yaml:"boost_fuel_cost" json:"boost_fuel_cost"` // Units per second while boosting
}

// DefaultResourceConfig is the stock fuel tuning.
func DefaultResourceConfig() ResourceConfig {
	return ResourceConfig{MaxFuel: 100, FuelRegenRate: 20, BoostFuelCost: 30}
}

func (c ResourceConfig) Validate() error {
	if !positive(c.MaxFuel) {
		return configErrorf("max_fuel must be > 0, got %v", c.MaxFuel)
	}
	if c.FuelRegenRate < 0 || c.BoostFuelCost < 0 {
		return configErrorf("fuel rates must be >= 0")
	}
	return nil
}

// ResourceState is the current fuel level and its ceiling.
type ResourceState struct {
	CurrentFuel float32 `json:"current_fuel"`
	MaxFuel     float32 `json:"max_fuel"`
}

// ResourceGovernor applies per-tick drain/regen to a ResourceState.
type ResourceGovernor struct {
	cfg   ResourceConfig
	state ResourceState
}

// NewResourceGovernor starts with a full tank.
func NewResourceGovernor(cfg ResourceConfig) *ResourceGovernor {
	return &ResourceGovernor{
		cfg:   cfg,
		state: ResourceState{CurrentFuel: cfg.MaxFuel, MaxFuel: cfg.MaxFuel},
	}
}

func (g *ResourceGovernor) State() ResourceState { return g.state }

// Update drains or regenerates fuel for one tick and returns the new level.
func (g *ResourceGovernor) Update(dt float32, boostActive bool) float32 {
	if dt < 0 {
		dt = 0
	}
	if boostActive {
		g.state.CurrentFuel -= g.cfg.BoostFuelCost * dt
	} else {
		g.state.CurrentFuel += g.cfg.FuelRegenRate * dt
	}
	g.clamp()
	return g.state.CurrentFuel
}

// Refill sets the tank to full.
func (g *ResourceGovernor) Refill() {
	g.state.CurrentFuel = g.state.MaxFuel
}

// SetMaxFuel changes the ceiling (upgrades). The current level is clamped, never raised.
func (g *ResourceGovernor) SetMaxFuel(maxFuel float32) {
	if !positive(maxFuel) {
		return
	}
	g.state.MaxFuel = maxFuel
	g.clamp()
}

// setConfig swaps the tuning (hot reload) while keeping the current level and upgrade bonus.
func (g *ResourceGovernor) setConfig(cfg ResourceConfig, bonus float32) {
	g.cfg = cfg
	g.SetMaxFuel(cfg.MaxFuel + bonus)
}

func (g *ResourceGovernor) clamp() {
	if g.state.CurrentFuel < 0 {
		g.state.CurrentFuel = 0
	}
	if g.state.CurrentFuel > g.state.MaxFuel {
		g.state.CurrentFuel = g.state.MaxFuel
	}
}
