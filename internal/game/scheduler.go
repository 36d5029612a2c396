/*
Package game
File: scheduler.go
Description:
    The fixed-step heartbeat. Every tick advances the whole fleet by the same dt.
*/

package game

import (
	"context"
	"time"
)

// DefaultTickRateHz is the fixed physics rate.
const DefaultTickRateHz = 50

// Scheduler drives a fleet at a fixed step. Every tick uses the same dt,
// independent of wall-clock jitter between ticker fires.
type Scheduler struct {
	fleet  *Fleet
	tickHz int
	tick   uint64

	// OnTick runs on the scheduler goroutine after every fleet step.
	OnTick func(tick uint64)
}

func NewScheduler(fleet *Fleet, tickHz int) *Scheduler {
	if tickHz <= 0 {
		tickHz = DefaultTickRateHz
	}
	return &Scheduler{fleet: fleet, tickHz: tickHz}
}

// DT is the fixed step in seconds.
func (s *Scheduler) DT() float32 {
	return 1 / float32(s.tickHz)
}

// Step runs exactly one tick. Run calls it from the ticker; tests call it directly.
func (s *Scheduler) Step() {
	s.fleet.StepAll(s.DT())
	s.tick++
	if s.OnTick != nil {
		s.OnTick(s.tick)
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}
