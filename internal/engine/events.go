// Event log: a bounded ring of notable occurrences plus fan-out to stream
// subscribers. The simulation goroutine appends; subscribers receive copies.
package engine

import (
	"sync"
)

const maxEvents = 1000

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "birth", "death", "crime", "social", "crisis", "agent"
}

// EventLog keeps the most recent events and fans new ones out to subscribers.
type EventLog struct {
	mu      sync.Mutex
	events  []Event
	subs    map[chan Event]struct{}
	drained uint64 // total events handed out via DrainUnsaved
	total   uint64 // total events ever appended
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{subs: make(map[chan Event]struct{})}
}

// Append records an event and notifies subscribers. Slow subscribers drop
// events rather than stall the simulation.
func (l *EventLog) Append(e Event) {
	l.mu.Lock()
	l.total++
	l.events = append(l.events, e)
	if len(l.events) > maxEvents {
		l.events = l.events[len(l.events)-maxEvents:]
	}
	for ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
	l.mu.Unlock()
}

// Recent returns up to n of the newest events, oldest first.
func (l *EventLog) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.events) {
		n = len(l.events)
	}
	out := make([]Event, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

// Subscribe registers a stream consumer. The returned cancel func must be
// called to release the channel.
func (l *EventLog) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	return ch, func() {
		l.mu.Lock()
		delete(l.subs, ch)
		l.mu.Unlock()
		close(ch)
	}
}

// DrainUnsaved returns the events appended since the previous drain, oldest
// first, so periodic persistence never writes the same event twice. Events
// that rotated out of the ring before a drain are lost to storage, same as
// they are to readers.
func (l *EventLog) DrainUnsaved() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	unsaved := l.total - l.drained
	if unsaved == 0 {
		return nil
	}
	if unsaved > uint64(len(l.events)) {
		unsaved = uint64(len(l.events))
	}
	out := make([]Event, unsaved)
	copy(out, l.events[uint64(len(l.events))-unsaved:])
	l.drained = l.total
	return out
}

// CountByCategory tallies the retained events per category.
func (l *EventLog) CountByCategory() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int)
	for _, e := range l.events {
		out[e.Category]++
	}
	return out
}
