/*
Package game
File: flight.go
Description:
    The 6-DoF flight controller.
    Each tick it turns an input sample into a world-space force and torque,
    decides whether boost is active, and gates the fire trigger.

    Ship local axes follow the usual convention: +Z forward, +X right, +Y up.
*/

package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	localForward = mgl32.Vec3{0, 0, 1}
	localRight   = mgl32.Vec3{1, 0, 0}
	localUp      = mgl32.Vec3{0, 1, 0}
)

// FlightConfig is the flight tuning passed into the controller at construction.
type FlightConfig struct {
	ThrustPower     float32 `yaml:"thrust_power" json:"thrust_power"`         // Forward/back force
	StrafePower     float32 `yaml:"strafe_power" json:"strafe_power"`         // Left/right force
	LiftPower       float32 `yaml:"lift_power" json:"lift_power"`             // Up/down force
	RotationSpeed   float32 `yaml:"rotation_speed" json:"rotation_speed"`     // Torque scale
	BoostMultiplier float32 `yaml:"boost_multiplier" json:"boost_multiplier"` // Thrust and speed ceiling multiplier while boosting
	InvertPitch     bool    `yaml:"invert_pitch" json:"invert_pitch"`
	InvertYaw       bool    `yaml:"invert_yaw" json:"invert_yaw"`
	FireRate        float32 `yaml:"fire_rate" json:"fire_rate"`           // Seconds between shots
	MaxLookDelta    float32 `yaml:"max_look_delta" json:"max_look_delta"` // Look deltas are clamped to +/- this
}

// DefaultFlightConfig is the stock handling tuning.
func DefaultFlightConfig() FlightConfig {
	return FlightConfig{
		ThrustPower:     15,
		StrafePower:     12,
		LiftPower:       12,
		RotationSpeed:   3,
		BoostMultiplier: 2,
		FireRate:        0.2,
		MaxLookDelta:    10,
	}
}

func (c FlightConfig) Validate() error {
	if c.ThrustPower < 0 || c.StrafePower < 0 || c.LiftPower < 0 {
		return configErrorf("flight powers must be >= 0")
	}
	if !positive(c.RotationSpeed) {
		return configErrorf("rotation_speed must be > 0, got %v", c.RotationSpeed)
	}
	if c.BoostMultiplier < 1 {
		return configErrorf("boost_multiplier must be >= 1, got %v", c.BoostMultiplier)
	}
	if c.FireRate < 0 {
		return configErrorf("fire_rate must be >= 0, got %v", c.FireRate)
	}
	if !positive(c.MaxLookDelta) {
		return configErrorf("max_look_delta must be > 0, got %v", c.MaxLookDelta)
	}
	return nil
}

// FlightCommand is what one controller tick asks of the physics body.
type FlightCommand struct {
	Force       mgl32.Vec3
	Torque      mgl32.Vec3
	BoostActive bool
	SpeedLimit  float32 // Ceiling applied after integration
}

// FlightController is stateless apart from the fire cooldown.
type FlightController struct {
	cfg          FlightConfig
	nextFireTime float64
}

func NewFlightController(cfg FlightConfig) *FlightController {
	return &FlightController{cfg: cfg}
}

func (c *FlightController) Config() FlightConfig { return c.cfg }

// Tick computes the force, torque and boost state for one tick.
// Boost is decided from the fuel level at the start of the tick, before any drain.
func (c *FlightController) Tick(in InputSample, res ResourceState, maxSpeed float32, orientation mgl32.Quat) FlightCommand {
	in = c.Sanitize(in)

	// 1. Boost gate
	boosting := in.Boost && res.CurrentFuel > 0
	boostMod := float32(1)
	if boosting {
		boostMod = c.cfg.BoostMultiplier
	}

	// 2. Linear force along local axes
	local := localForward.Mul(in.Forward * c.cfg.ThrustPower * boostMod).
		Add(localRight.Mul(in.Strafe * c.cfg.StrafePower * boostMod)).
		Add(localUp.Mul(in.Vertical * c.cfg.LiftPower * boostMod))

	// 3. Torque: pitch, yaw, roll (roll turns twice as fast)
	pitchSign, yawSign := float32(-1), float32(1)
	if c.cfg.InvertPitch {
		pitchSign = -pitchSign
	}
	if c.cfg.InvertYaw {
		yawSign = -yawSign
	}
	localTorque := mgl32.Vec3{
		in.Pitch * pitchSign,
		in.Yaw * yawSign,
		in.Roll * 2,
	}.Mul(c.cfg.RotationSpeed)

	return FlightCommand{
		Force:       orientation.Rotate(local),
		Torque:      orientation.Rotate(localTorque),
		BoostActive: boosting,
		SpeedLimit:  c.SpeedLimit(maxSpeed, boosting),
	}
}

// SpeedLimit is the velocity ceiling for this tick.
func (c *FlightController) SpeedLimit(maxSpeed float32, boosting bool) float32 {
	if boosting {
		return maxSpeed * c.cfg.BoostMultiplier
	}
	return maxSpeed
}

// TryFire reports whether a shot may be fired at now (seconds of sim time).
func (c *FlightController) TryFire(now float64) bool {
	if now <= c.nextFireTime {
		return false
	}
	c.nextFireTime = now + float64(c.cfg.FireRate)
	return true
}

// Sanitize clamps every input channel into its documented range. It never fails.
func (c *FlightController) Sanitize(in InputSample) InputSample {
	in.Forward = clampUnit(in.Forward)
	in.Strafe = clampUnit(in.Strafe)
	in.Vertical = clampUnit(in.Vertical)
	in.Roll = clampUnit(in.Roll)
	in.Yaw = clampRange(in.Yaw, c.cfg.MaxLookDelta)
	in.Pitch = clampRange(in.Pitch, c.cfg.MaxLookDelta)
	return in
}

// ClampVelocity rescales v to at most limit, keeping its direction.
func ClampVelocity(v mgl32.Vec3, limit float32) (mgl32.Vec3, bool) {
	speed := v.Len()
	if speed <= limit || speed == 0 {
		return v, false
	}
	return v.Mul(limit / speed), true
}

func clampUnit(v float32) float32 {
	return clampRange(v, 1)
}

func clampRange(v, limit float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	return mgl32.Clamp(v, -limit, limit)
}
