package game

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDT = float32(1) / DefaultTickRateHz

func TestNewShipRejectsBadConfiguration(t *testing.T) {
	_, err := NewShipSimulation("x", Tier(7), DefaultShipConfig(), Options{Logger: quietLogger()})
	assert.True(t, IsConfigurationError(err))

	cfg := DefaultShipConfig()
	cfg.Flight.ThrustPower = -1
	_, err = NewShipSimulation("x", TierScout, cfg, Options{Logger: quietLogger()})
	assert.True(t, IsConfigurationError(err))

	broken := DefaultProfiles()
	broken[TierFighter] = StatProfile{MaxShield: 0, MaxSpeed: 10, MassFactor: 1}
	_, err = NewShipSimulation("x", TierFighter, DefaultShipConfig(), Options{Profiles: broken, Logger: quietLogger()})
	assert.True(t, IsConfigurationError(err))
}

func TestNewShipStartsFromProfile(t *testing.T) {
	ship, _ := newTestShip(t, TierDestroyer, Hooks{})
	snap := ship.Snapshot()

	assert.Equal(t, "test", snap.ID)
	assert.Equal(t, TierDestroyer, snap.Tier)
	assert.Equal(t, float32(250), snap.Shield)
	assert.Equal(t, float32(250), snap.MaxShield)
	assert.Equal(t, float32(100), snap.Fuel)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Tokens)
}

func TestNewShipUsesRealBodyByDefault(t *testing.T) {
	ship, err := NewShipSimulation("real", TierScout, DefaultShipConfig(), Options{Logger: quietLogger()})
	require.NoError(t, err)

	ship.SetInput(InputSample{Forward: 1})
	for i := 0; i < 10; i++ {
		ship.Step(testDT)
	}
	snap := ship.Snapshot()
	assert.Greater(t, snap.Speed, float32(0))
	assert.Greater(t, snap.Position.Z(), float32(0))
}

func TestEventsApplyAtTickBoundary(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})

	ship.OnDamageApplied(30)
	ship.OnTokenPickupConsumed(4)
	ship.OnExperienceAwarded(1200)

	snap := ship.Snapshot()
	assert.Equal(t, float32(100), snap.Shield)
	assert.Equal(t, 0, snap.Tokens)
	assert.Equal(t, 1, snap.Level)

	ship.Step(testDT)

	snap = ship.Snapshot()
	assert.Equal(t, float32(70), snap.Shield)
	assert.Equal(t, 4, snap.Tokens)
	assert.Equal(t, 2, snap.Level)
	assert.Equal(t, uint64(1), snap.Tick)
}

func TestDestroyedHook(t *testing.T) {
	var events []DestructionEvent
	ship, body := newTestShip(t, TierScout, Hooks{
		OnDestroyed: func(ev DestructionEvent) { events = append(events, ev) },
	})
	body.pos = mgl32.Vec3{10, 10, 10}

	ship.OnTokenPickupConsumed(10)
	ship.OnDamageApplied(200)
	ship.DrainEvents()

	require.Len(t, events, 1)
	assert.Equal(t, DestructionEvent{ShipID: "test", Dropped: 5, Remaining: 5}, events[0])

	snap := ship.Snapshot()
	assert.Equal(t, 5, snap.Tokens)
	assert.Equal(t, float32(100), snap.Shield)
	assert.Equal(t, 1, body.resets)
	assert.Equal(t, mgl32.Vec3{}, body.pos, "respawns at the spawn point")
}

func TestLevelUpHook(t *testing.T) {
	var events []LevelUpEvent
	ship, _ := newTestShip(t, TierFighter, Hooks{
		OnLevelUp: func(ev LevelUpEvent) { events = append(events, ev) },
	})

	ship.OnExperienceAwarded(1000)
	ship.DrainEvents()
	ship.OnExperienceAwarded(8000)
	ship.DrainEvents()

	require.Len(t, events, 2)
	assert.Equal(t, LevelUpEvent{ShipID: "test", Level: 2}, events[0])
	assert.Equal(t, LevelUpEvent{ShipID: "test", Level: MaxLevel, MintUnlocked: true}, events[1])
	assert.True(t, ship.CanMintNFT())
}

func TestHooksMayReenterShip(t *testing.T) {
	var snap Snapshot
	var ship *ShipSimulation
	ship, _ = newTestShip(t, TierScout, Hooks{
		OnLevelUp: func(LevelUpEvent) { snap = ship.Snapshot() },
	})

	ship.OnExperienceAwarded(2000)
	ship.DrainEvents()
	assert.Equal(t, 3, snap.Level)
}

func TestFireIsRateLimited(t *testing.T) {
	var shots []FireEvent
	ship, _ := newTestShip(t, TierScout, Hooks{
		OnFire: func(ev FireEvent) { shots = append(shots, ev) },
	})
	weapon := UpgradeSpec{Key: "plasma_cannon_mk1", Category: CategoryWeapon, Value: 5}
	require.NoError(t, ship.InstallUpgrade(CategoryWeapon, 0, weapon, 1))

	ship.SetInput(InputSample{Fire: true})
	for i := 0; i < DefaultTickRateHz; i++ {
		ship.Step(testDT)
	}

	// One second at 0.2s between shots.
	require.Len(t, shots, 5)
	first := shots[0]
	assert.Equal(t, uint(1), first.Mounts)
	assert.Equal(t, float32(5), first.WeaponBonus)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, first.Direction)
	for i := 1; i < len(shots); i++ {
		assert.Greater(t, shots[i].Time-shots[i-1].Time, 0.2)
	}
}

func TestFireMountsFollowTier(t *testing.T) {
	var shots []FireEvent
	ship, _ := newTestShip(t, TierDestroyer, Hooks{
		OnFire: func(ev FireEvent) { shots = append(shots, ev) },
	})
	ship.SetInput(InputSample{Fire: true})
	ship.Step(testDT)

	require.Len(t, shots, 1)
	assert.Equal(t, uint(3), shots[0].Mounts)
}

func TestUpgradesRaiseMaxButNotCurrent(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})

	require.NoError(t, ship.InstallUpgrade(CategoryShield, 0, shieldMk1, 1))
	require.NoError(t, ship.InstallUpgrade(CategoryFuel, 1, tankMk1, 1))

	snap := ship.Snapshot()
	assert.Equal(t, float32(125), snap.MaxShield)
	assert.Equal(t, float32(100), snap.Shield)
	assert.Equal(t, float32(120), snap.MaxFuel)
	assert.Equal(t, float32(100), snap.Fuel)

	// Removing the upgrade clamps the pools back down.
	require.NoError(t, ship.RemoveUpgrade(CategoryShield, 0))
	snap = ship.Snapshot()
	assert.Equal(t, float32(100), snap.MaxShield)
	assert.Equal(t, float32(100), snap.Shield)
}

func TestRejectedUpgradeLeavesShipUnchanged(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})
	before := ship.Snapshot()

	err := ship.InstallUpgrade(CategoryShield, 3, shieldMk1, 1)
	assert.ErrorIs(t, err, ErrSlotIndexOutOfRange)
	err = ship.InstallUpgrade(CategoryFuel, 0, shieldMk1, 1)
	assert.ErrorIs(t, err, ErrUpgradeCategoryMismatch)

	assert.Equal(t, before, ship.Snapshot())
	for _, c := range Categories {
		for _, slot := range ship.UpgradeSlots(c) {
			assert.Nil(t, slot.Installed)
		}
	}
}

func TestStepClampsSpeed(t *testing.T) {
	ship, body := newTestShip(t, TierScout, Hooks{})
	body.vel = mgl32.Vec3{0, 0, 500}

	ship.Step(testDT)
	assert.InDelta(t, 80, body.vel.Len(), 1e-3)
}

func TestStepBoostRaisesLimitAndDrainsFuel(t *testing.T) {
	ship, body := newTestShip(t, TierScout, Hooks{})
	body.vel = mgl32.Vec3{0, 0, 500}

	ship.SetInput(InputSample{Forward: 1, Boost: true})
	ship.Step(testDT)

	snap := ship.Snapshot()
	assert.True(t, snap.Boosting)
	assert.InDelta(t, 160, body.vel.Len(), 1e-3)
	assert.InDelta(t, 99.4, snap.Fuel, 1e-3)

	// Releasing boost regenerates.
	ship.SetInput(InputSample{Forward: 1})
	ship.Step(testDT)
	snap = ship.Snapshot()
	assert.False(t, snap.Boosting)
	assert.InDelta(t, 99.8, snap.Fuel, 1e-3)
}

func TestStepAppliesThrustAndTorque(t *testing.T) {
	ship, body := newTestShip(t, TierScout, Hooks{})
	ship.SetInput(InputSample{Forward: 1, Yaw: 1})
	ship.Step(testDT)

	assert.Equal(t, 1, body.integrations)
	assert.InDelta(t, 15*testDT, body.vel.Z(), 1e-5)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, body.lastTorque)
}

func TestSetInputWithCustomSource(t *testing.T) {
	src := &scriptedInput{in: InputSample{Forward: 1}}
	body := newFakeBody()
	ship, err := NewShipSimulation("scripted", TierScout, DefaultShipConfig(), Options{
		NewBody: func(StatProfile) Physics { return body },
		Input:   src,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)

	assert.False(t, ship.SetInput(InputSample{Forward: -1}))
	ship.Step(testDT)
	assert.Greater(t, body.vel.Z(), float32(0))
}

func TestRecordAndRestore(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})
	ship.OnExperienceAwarded(3500)
	ship.OnTokenPickupConsumed(7)
	ship.DrainEvents()

	rec := ship.Record()
	assert.Equal(t, PilotRecord{ShipID: "test", Tier: TierScout, Experience: 3500, Tokens: 7}, rec)

	fresh, _ := newTestShip(t, TierScout, Hooks{})
	require.NoError(t, fresh.Restore(rec))
	snap := fresh.Snapshot()
	assert.Equal(t, 4, snap.Level)
	assert.Equal(t, 7, snap.Tokens)

	other, _ := newTestShip(t, TierFighter, Hooks{})
	assert.True(t, IsConfigurationError(other.Restore(rec)))
}

func TestRecordMint(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})
	assert.ErrorIs(t, ship.RecordMint("addr"), ErrMintNotEligible)

	ship.OnExperienceAwarded(9000)
	ship.DrainEvents()
	require.NoError(t, ship.RecordMint("addr"))

	rec := ship.Record()
	assert.True(t, rec.IsMinted)
	assert.Equal(t, "addr", rec.MintAddress)
	assert.False(t, ship.CanMintNFT())
}

func TestApplyConfigKeepsProgress(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})
	ship.OnExperienceAwarded(2500)
	ship.DrainEvents()
	require.NoError(t, ship.InstallUpgrade(CategoryFuel, 0, tankMk1, 1))

	cfg := DefaultShipConfig()
	cfg.Resources.MaxFuel = 60
	require.NoError(t, ship.ApplyConfig(cfg))

	snap := ship.Snapshot()
	assert.Equal(t, 3, snap.Level)
	assert.Equal(t, float32(80), snap.MaxFuel)
	assert.Equal(t, float32(80), snap.Fuel)

	cfg.Flight.RotationSpeed = 0
	assert.True(t, IsConfigurationError(ship.ApplyConfig(cfg)))
}

func TestApplyConfigRetunesDrag(t *testing.T) {
	ship, body := newTestShip(t, TierScout, Hooks{})

	cfg := DefaultShipConfig()
	cfg.Physics.LinearDrag = 1.25
	cfg.Physics.AngularDrag = 4
	require.NoError(t, ship.ApplyConfig(cfg))
	assert.Equal(t, [2]float32{1.25, 4}, body.drag)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{Tokens: 3, Fuel: 99.44, Shield: 70, Level: 2}
	assert.Equal(t, "Tokens: 3, Fuel: 99.4, Shield: 70.0, Level: 2", s.String())
}

func TestHugeAwardsSurviveRecordAndRestore(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})
	ship.OnExperienceAwarded(math.MaxInt)
	ship.OnExperienceAwarded(1)
	ship.OnTokenPickupConsumed(math.MaxInt)
	ship.OnTokenPickupConsumed(1)
	ship.DrainEvents()

	rec := ship.Record()
	assert.Equal(t, math.MaxInt, rec.Experience)
	assert.Equal(t, math.MaxInt, rec.Tokens)

	fresh, _ := newTestShip(t, TierScout, Hooks{})
	require.NoError(t, fresh.Restore(rec))
	snap := fresh.Snapshot()
	assert.Equal(t, MaxLevel, snap.Level)
	assert.Equal(t, math.MaxInt, snap.Tokens)
}

func TestBoostOnEmptyTankRegenerates(t *testing.T) {
	ship, _ := newTestShip(t, TierScout, Hooks{})
	ship.SetInput(InputSample{Forward: 1, Boost: true})

	// 100 fuel at 30/s drains in 3.34s; the tick that crosses zero clamps to 0.
	ticks := 0
	for ship.Snapshot().Fuel > 0 {
		ship.Step(testDT)
		ticks++
		require.Less(t, ticks, 1000)
	}
	snap := ship.Snapshot()
	assert.True(t, snap.Boosting, "the tick that empties the tank still boosts")
	assert.Equal(t, float32(0), snap.Fuel)

	// Boost is still held, but the tick starts at zero fuel: no boost, regen instead.
	ship.Step(testDT)
	snap = ship.Snapshot()
	assert.False(t, snap.Boosting)
	assert.InDelta(t, 20*testDT, snap.Fuel, 1e-5)

	// With fuel back above zero the next tick boosts again and drains.
	ship.Step(testDT)
	snap = ship.Snapshot()
	assert.True(t, snap.Boosting)
	assert.Equal(t, float32(0), snap.Fuel)
}
