// The tick driver. One tick is one simulated second; hourly and daily
// cadences hang off the same counter. The loop targets a bounded wall-clock
// rate and supports pause and speed multipliers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	TicksPerSimHour = 3600
	TicksPerSimDay  = 24 * TicksPerSimHour
	TicksPerSimYear = 365 * TicksPerSimDay
)

// Ticker drives the scheduler at a fixed rate on a single goroutine.
type Ticker struct {
	sched *Scheduler

	// Ticks advanced per wall-clock interval. Stored as ×1000 so the
	// atomic can carry fractional speeds.
	speedMilli atomic.Int64
	interval   time.Duration

	OnHour func()
	OnDay  func()
}

// NewTicker wires a ticker to the scheduler. speed is simulated seconds per
// wall second.
func NewTicker(sched *Scheduler, speed float64, interval time.Duration) *Ticker {
	t := &Ticker{sched: sched, interval: interval}
	t.SetSpeed(speed)
	return t
}

// SetSpeed changes the simulation rate; 0 pauses. Safe from any goroutine.
func (t *Ticker) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	t.speedMilli.Store(int64(speed * 1000))
}

// Speed reports the current rate.
func (t *Ticker) Speed() float64 {
	return float64(t.speedMilli.Load()) / 1000
}

// Run blocks until ctx is canceled, advancing the simulation in batches per
// wall-clock interval.
func (t *Ticker) Run(ctx context.Context) {
	slog.Info("simulation loop started",
		"tick", t.sched.CurrentTick(), "speed", t.Speed(), "interval", t.interval)

	wall := time.NewTicker(t.interval)
	defer wall.Stop()

	var carry float64
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped", "tick", t.sched.CurrentTick())
			return
		case <-wall.C:
			carry += t.Speed() * t.interval.Seconds()
			steps := int(carry)
			carry -= float64(steps)
			for i := 0; i < steps; i++ {
				t.Step()
			}
		}
	}
}

// Step advances exactly one tick and fires cadence callbacks.
func (t *Ticker) Step() {
	t.sched.Tick()
	tick := t.sched.CurrentTick()

	if tick%TicksPerSimHour == 0 {
		t.sched.TickHour()
		if t.OnHour != nil {
			t.OnHour()
		}
	}
	if tick%TicksPerSimDay == 0 {
		t.sched.TickDay()
		if t.OnDay != nil {
			t.OnDay()
		}
	}
}

// SimTime renders a tick as a human-readable simulation timestamp.
func SimTime(tick uint64) string {
	secs := tick % 60
	mins := (tick / 60) % 60
	hours := (tick / 3600) % 24
	days := (tick/TicksPerSimDay)%365 + 1
	years := tick/TicksPerSimYear + 1
	return fmt.Sprintf("Year %d, Day %d, %02d:%02d:%02d", years, days, hours, mins, secs)
}
