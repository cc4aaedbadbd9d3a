package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogRingBound(t *testing.T) {
	l := NewEventLog()
	for i := 0; i < maxEvents+100; i++ {
		l.Append(Event{Tick: uint64(i), Description: fmt.Sprintf("e%d", i), Category: "agent"})
	}
	recent := l.Recent(maxEvents * 2)
	assert.Len(t, recent, maxEvents)
	assert.Equal(t, uint64(100), recent[0].Tick, "oldest retained event")
	assert.Equal(t, uint64(maxEvents+99), recent[len(recent)-1].Tick)
}

func TestSubscribeReceivesAndCancels(t *testing.T) {
	l := NewEventLog()
	ch, cancel := l.Subscribe(4)

	l.Append(Event{Tick: 1, Description: "born", Category: "birth"})
	e := <-ch
	assert.Equal(t, "birth", e.Category)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	l := NewEventLog()
	ch, cancel := l.Subscribe(1)
	defer cancel()

	// Fill the buffer, then keep appending; Append must not block.
	for i := 0; i < 10; i++ {
		l.Append(Event{Tick: uint64(i), Category: "agent"})
	}
	e := <-ch
	assert.Equal(t, uint64(0), e.Tick, "only the first event fit the buffer")
}

func TestDrainUnsavedNeverRepeats(t *testing.T) {
	l := NewEventLog()
	l.Append(Event{Tick: 1, Category: "agent"})
	l.Append(Event{Tick: 2, Category: "agent"})

	first := l.DrainUnsaved()
	require.Len(t, first, 2)
	assert.Empty(t, l.DrainUnsaved(), "second drain with nothing new")

	l.Append(Event{Tick: 3, Category: "agent"})
	second := l.DrainUnsaved()
	require.Len(t, second, 1)
	assert.Equal(t, uint64(3), second[0].Tick)

	// Recent is unaffected by draining.
	assert.Len(t, l.Recent(10), 3)
}

func TestCountByCategory(t *testing.T) {
	l := NewEventLog()
	l.Append(Event{Category: "death"})
	l.Append(Event{Category: "death"})
	l.Append(Event{Category: "birth"})

	counts := l.CountByCategory()
	assert.Equal(t, 2, counts["death"])
	assert.Equal(t, 1, counts["birth"])
}

func TestSimTimeRendering(t *testing.T) {
	assert.Equal(t, "Year 1, Day 1, 00:00:00", SimTime(0))
	assert.Equal(t, "Year 1, Day 1, 01:00:30", SimTime(3630))
	assert.Equal(t, "Year 1, Day 2, 00:00:00", SimTime(TicksPerSimDay))
	assert.Equal(t, "Year 2, Day 1, 00:00:00", SimTime(TicksPerSimYear))
}

func TestTickerCadence(t *testing.T) {
	s := newTestSim(1)
	s.Seed(2)
	tk := NewTicker(s, 1, 0)

	hours, days := 0, 0
	tk.OnHour = func() { hours++ }
	tk.OnDay = func() { days++ }

	for i := 0; i < TicksPerSimHour*2; i++ {
		tk.Step()
	}
	assert.Equal(t, 2, hours)
	assert.Equal(t, 0, days)
	assert.Equal(t, uint64(TicksPerSimHour*2), s.CurrentTick())
}

func TestTickerSpeedClampsNegative(t *testing.T) {
	s := newTestSim(1)
	tk := NewTicker(s, -5, 0)
	assert.Equal(t, 0.0, tk.Speed())
	tk.SetSpeed(2.5)
	assert.Equal(t, 2.5, tk.Speed())
	require.NotNil(t, tk)
}
