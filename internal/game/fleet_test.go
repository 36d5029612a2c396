package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFleet(hooks Hooks) *Fleet {
	return NewFleet(DefaultShipConfig(), Options{
		NewBody: func(StatProfile) Physics { return newFakeBody() },
		Logger:  quietLogger(),
		Hooks:   hooks,
	})
}

func TestFleetSpawnGetRemove(t *testing.T) {
	f := newTestFleet(Hooks{})

	ship, err := f.Spawn(TierFighter)
	require.NoError(t, err)
	assert.NotEmpty(t, ship.ID())
	assert.Equal(t, 1, f.Len())

	got, err := f.Get(ship.ID())
	require.NoError(t, err)
	assert.Same(t, ship, got)

	removed, err := f.Remove(ship.ID())
	require.NoError(t, err)
	assert.Same(t, ship, removed)
	assert.Equal(t, 0, f.Len())

	_, err = f.Get(ship.ID())
	assert.ErrorIs(t, err, ErrShipNotFound)
	_, err = f.Remove(ship.ID())
	assert.ErrorIs(t, err, ErrShipNotFound)
}

func TestFleetRejectsDuplicateID(t *testing.T) {
	f := newTestFleet(Hooks{})
	_, err := f.SpawnWithID("alpha", TierScout)
	require.NoError(t, err)

	_, err = f.SpawnWithID("alpha", TierDestroyer)
	assert.ErrorIs(t, err, ErrShipExists)
	assert.Equal(t, 1, f.Len())
}

func TestFleetSpawnUnknownTier(t *testing.T) {
	f := newTestFleet(Hooks{})
	_, err := f.Spawn(Tier(9))
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, 0, f.Len())
}

func TestFleetShipsSortedByID(t *testing.T) {
	f := newTestFleet(Hooks{})
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		_, err := f.SpawnWithID(id, TierScout)
		require.NoError(t, err)
	}

	var ids []string
	for _, s := range f.Ships() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, ids)

	snaps := f.Snapshots()
	require.Len(t, snaps, 3)
	assert.Equal(t, "alpha", snaps[0].ID)
}

func TestFleetRestore(t *testing.T) {
	f := newTestFleet(Hooks{})
	rec := PilotRecord{ShipID: "veteran", Tier: TierDestroyer, Experience: 9500, Tokens: 12}

	ship, err := f.Restore(rec)
	require.NoError(t, err)
	snap := ship.Snapshot()
	assert.Equal(t, MaxLevel, snap.Level)
	assert.True(t, snap.CanMint)
	assert.Equal(t, 12, snap.Tokens)

	assert.Equal(t, []PilotRecord{rec}, f.Records())

	_, err = f.Restore(rec)
	assert.ErrorIs(t, err, ErrShipExists)
}

func TestFleetStepAllFansOutHooks(t *testing.T) {
	var destroyed []string
	f := newTestFleet(Hooks{
		OnDestroyed: func(ev DestructionEvent) { destroyed = append(destroyed, ev.ShipID) },
	})
	a, err := f.SpawnWithID("a", TierScout)
	require.NoError(t, err)
	b, err := f.SpawnWithID("b", TierDestroyer)
	require.NoError(t, err)

	a.OnDamageApplied(150)
	b.OnDamageApplied(150)
	f.StepAll(testDT)

	assert.Equal(t, []string{"a"}, destroyed)
	assert.Equal(t, float32(100), b.Snapshot().Shield)
}

func TestFleetReconfigure(t *testing.T) {
	f := newTestFleet(Hooks{})
	ship, err := f.SpawnWithID("live", TierScout)
	require.NoError(t, err)

	cfg := DefaultShipConfig()
	cfg.Resources.MaxFuel = 50
	profiles := DefaultProfiles()
	scout := profiles[TierScout]
	scout.MaxShield = 300
	profiles[TierScout] = scout

	require.NoError(t, f.Reconfigure(cfg, profiles))
	assert.Equal(t, float32(50), f.Config().Resources.MaxFuel)
	assert.Equal(t, float32(300), f.Profiles()[TierScout].MaxShield)

	// Live ships take the tuning but keep their tier profile.
	snap := ship.Snapshot()
	assert.Equal(t, float32(50), snap.MaxFuel)
	assert.Equal(t, float32(100), snap.MaxShield)

	fresh, err := f.Spawn(TierScout)
	require.NoError(t, err)
	assert.Equal(t, float32(300), fresh.Snapshot().MaxShield)
}

func TestFleetReconfigureRejectsInvalid(t *testing.T) {
	f := newTestFleet(Hooks{})

	bad := DefaultShipConfig()
	bad.Flight.BoostMultiplier = 0
	assert.True(t, IsConfigurationError(f.Reconfigure(bad, nil)))

	profiles := DefaultProfiles()
	delete(profiles, TierFighter)
	assert.True(t, IsConfigurationError(f.Reconfigure(DefaultShipConfig(), profiles)))

	assert.Equal(t, DefaultShipConfig(), f.Config())
	assert.Equal(t, DefaultProfiles(), f.Profiles())
}

func TestSchedulerStep(t *testing.T) {
	f := newTestFleet(Hooks{})
	ship, err := f.SpawnWithID("s", TierScout)
	require.NoError(t, err)

	sched := NewScheduler(f, 0)
	assert.Equal(t, float32(1)/50, sched.DT())

	var ticks []uint64
	sched.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	sched.Step()
	sched.Step()

	assert.Equal(t, []uint64{1, 2}, ticks)
	assert.Equal(t, uint64(2), ship.Snapshot().Tick)
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	f := newTestFleet(Hooks{})
	sched := NewScheduler(f, 200)

	var ticks atomic.Uint64
	sched.OnTick = func(tick uint64) { ticks.Store(tick) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
