// Snapshot publishing. The simulation goroutine builds an immutable snapshot
// at each tick boundary and swaps it in atomically; the read path only ever
// sees complete ticks.
package engine

import (
	"sync/atomic"

	"github.com/talgya/genesis/internal/agents"
)

// WorldSnapshot is the immutable view of the population at a tick boundary.
// Nothing in it aliases live simulation state.
type WorldSnapshot struct {
	Tick    uint64                 `json:"tick"`
	SimTime string                 `json:"sim_time"`
	Agents  []agents.AgentSnapshot `json:"agents"`
	Deaths  []DeathRecord          `json:"deaths,omitempty"`
	Stats   SimStats               `json:"stats"`
	Crisis  CrisisSummary          `json:"crisis"`
}

// CrisisSummary is the population-level crisis picture.
type CrisisSummary struct {
	Severity float64 `json:"severity"`
	Kind     string  `json:"kind,omitempty"`
	InCrisis bool    `json:"in_crisis"`
}

// Agent looks up an agent snapshot by id.
func (s *WorldSnapshot) Agent(id agents.AgentID) (agents.AgentSnapshot, bool) {
	for i := range s.Agents {
		if s.Agents[i].ID == id {
			return s.Agents[i], true
		}
	}
	return agents.AgentSnapshot{}, false
}

// Deceased looks up a death record by id.
func (s *WorldSnapshot) Deceased(id agents.AgentID) (DeathRecord, bool) {
	for i := range s.Deaths {
		if s.Deaths[i].ID == id {
			return s.Deaths[i], true
		}
	}
	return DeathRecord{}, false
}

// Publisher hands immutable snapshots from the simulation goroutine to
// readers without locking.
type Publisher struct {
	cur atomic.Pointer[WorldSnapshot]
}

// NewPublisher starts with an empty snapshot so readers never see nil.
func NewPublisher() *Publisher {
	p := &Publisher{}
	p.cur.Store(&WorldSnapshot{})
	return p
}

// Publish swaps in a new snapshot. The caller must not mutate it afterwards.
func (p *Publisher) Publish(s *WorldSnapshot) {
	p.cur.Store(s)
}

// Latest returns the most recently published snapshot.
func (p *Publisher) Latest() *WorldSnapshot {
	return p.cur.Load()
}
