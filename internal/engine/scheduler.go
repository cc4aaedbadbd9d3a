// The population scheduler owns the agent collection. Every tick it runs the
// fixed phase pipeline over each agent in insertion order: needs, emotions,
// crisis, relationships, life cycle, action selection. Cross-agent references
// are ids resolved through the scheduler; the read path only ever sees the
// snapshot published at the tick boundary.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/genesis/internal/agents"
	"github.com/talgya/genesis/internal/entropy"
	"github.com/talgya/genesis/internal/world"
)

const (
	// One tick is one simulated second.
	dtHoursPerTick = 1.0 / 3600

	encounterRadiusKm = 50.0
	maxEncounters     = 8

	defaultCourtshipCooldown = 24 * 3600 // 24 sim-hours in ticks
	defaultCrimeCooldown     = 12 * 3600
)

// DeathRecord is emitted once per death and retained for id resolution after
// the agent leaves the live collection.
type DeathRecord struct {
	ID        agents.AgentID   `json:"id"`
	Name      string           `json:"name"`
	Cause     agents.DeathCause `json:"cause"`
	AgeYears  float64          `json:"age_years"`
	Tick      uint64           `json:"tick"`
	Longitude float64          `json:"longitude"`
	Latitude  float64          `json:"latitude"`
	Inventory agents.Inventory `json:"inventory,omitempty"`
	MateID    agents.AgentID   `json:"mate_id,omitempty"`
	ChildIDs  []agents.AgentID `json:"child_ids,omitempty"`
}

// BirthRecord is emitted once per birth.
type BirthRecord struct {
	ID       agents.AgentID `json:"id"`
	Name     string         `json:"name"`
	MotherID agents.AgentID `json:"mother_id"`
	FatherID agents.AgentID `json:"father_id,omitempty"`
	Tick     uint64         `json:"tick"`
}

// Intent is a mutation requested from outside the simulation goroutine. The
// scheduler applies queued intents at the next tick boundary.
type Intent func(s *Scheduler)

// Scheduler owns and advances the population.
type Scheduler struct {
	world   *world.World
	spawner *agents.Spawner
	src     *entropy.Source
	events  *EventLog
	pub     *Publisher

	agents map[agents.AgentID]*agents.Agent
	order  []agents.AgentID

	graveyard map[agents.AgentID]*DeathRecord
	births    []BirthRecord
	deaths    []DeathRecord

	tick  uint64
	stats SimStats

	courtshipCooldown uint64

	intentMu sync.Mutex
	intents  []Intent

	totalBirths int
	totalDeaths int
}

// NewScheduler wires the scheduler to the world and entropy root.
func NewScheduler(w *world.World, src *entropy.Source, events *EventLog, pub *Publisher) *Scheduler {
	return &Scheduler{
		world:             w,
		spawner:           agents.NewSpawner(w, src, defaultCrimeCooldown),
		src:               src.Fork("scheduler"),
		events:            events,
		pub:               pub,
		agents:            make(map[agents.AgentID]*agents.Agent),
		graveyard:         make(map[agents.AgentID]*DeathRecord),
		courtshipCooldown: defaultCourtshipCooldown,
	}
}

// Seed populates the world with founders.
func (s *Scheduler) Seed(n int) {
	for _, a := range s.spawner.Founders(n, s.tick) {
		s.add(a)
	}
	s.refreshAggregates()
	s.stats = computeStats(s.population(), 0, 0)
	s.publish()
	slog.Info("population seeded", "count", n, "tick", s.tick)
}

func (s *Scheduler) add(a *agents.Agent) {
	s.agents[a.ID] = a
	s.order = append(s.order, a.ID)
}

// Enqueue queues an intent for the next tick boundary. Safe from any
// goroutine.
func (s *Scheduler) Enqueue(in Intent) {
	s.intentMu.Lock()
	s.intents = append(s.intents, in)
	s.intentMu.Unlock()
}

// Agent resolves an id against the live population. Dead agents resolve to
// their death record through Deceased.
func (s *Scheduler) Agent(id agents.AgentID) (*agents.Agent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

// Deceased resolves an id against the graveyard. Only for use from the
// simulation goroutine; the read path resolves through the snapshot.
func (s *Scheduler) Deceased(id agents.AgentID) (*DeathRecord, bool) {
	r, ok := s.graveyard[id]
	return r, ok
}

// CurrentTick returns the most recently processed tick.
func (s *Scheduler) CurrentTick() uint64 { return s.tick }

// Stats returns the aggregate picture from the last tick boundary.
func (s *Scheduler) Stats() SimStats { return s.stats }

// Tick advances the simulation by one tick. Phases run in a fixed order and
// agents are visited in insertion order, so a replay with the same seed
// reproduces the same world.
func (s *Scheduler) Tick() {
	s.tick++
	s.drainIntents()
	s.refreshAggregates()
	agg := s.world.AggregatesFor(len(s.agents))

	var dead []*agents.Agent
	for _, id := range s.order {
		a, ok := s.agents[id]
		if !ok || !a.Alive {
			continue
		}
		s.updateAgent(a, agg)
		if !a.Alive {
			dead = append(dead, a)
		}
	}

	s.deliverBirths()
	s.bury(dead)

	s.stats = computeStats(s.population(), s.totalBirths, s.totalDeaths)
	s.publish()
}

// TickHour runs on the hourly cadence: spoilage, gene drift, conception, and
// conflict cooling.
func (s *Scheduler) TickHour() {
	for _, id := range s.order {
		a, ok := s.agents[id]
		if !ok || !a.Alive {
			continue
		}
		a.Inventory.Decay(1)
		a.Genes.Drift(s.world.GetClimateAt(a.Longitude, a.Latitude), 1)
		s.tryConception(a)
	}
	if c := s.conflicts(); c > 0 {
		s.world.SetActiveConflicts(c - 1)
	}
}

// TickDay logs the daily report.
func (s *Scheduler) TickDay() {
	counts := s.events.CountByCategory()
	slog.Info("daily report",
		"tick", s.tick,
		"time", SimTime(s.tick),
		"alive", s.stats.Population,
		"births", s.stats.Births,
		"deaths", s.stats.Deaths,
		"mated_pairs", s.stats.MatedPairs,
		"pregnancies", s.stats.Pregnancies,
		"avg_mood", fmt.Sprintf("%.3f", s.stats.AvgMood),
		"avg_health", fmt.Sprintf("%.3f", s.stats.AvgHealth),
		"events_crime", counts["crime"],
		"events_death", counts["death"],
		"events_birth", counts["birth"],
	)
}

// updateAgent runs the per-agent phase pipeline. A panic in one agent's
// update is logged and contained; the rest of the tick proceeds.
func (s *Scheduler) updateAgent(a *agents.Agent, agg world.Aggregates) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent update panicked", "agent", a.ID, "name", a.Name, "panic", r)
		}
	}()

	// Phase 1: needs.
	a.Needs.Advance(a.NeedsFlags(), dtHoursPerTick)

	// Phase 2: emotions.
	a.Emotions.Decay(dtHoursPerTick)
	if a.Emotions.ConsideringSelfHarm() && a.Rng().Chance(0.001) {
		a.Memory.Add(s.tick, "dark thoughts about whether any of it matters", 0.8, nil,
			agents.Impact{Emotional: -0.7, Philosophical: 0.5})
	}
	if a.Emotions.TerminalDespair(a.Protective()) {
		if a.Kill(agents.DeathDespair, s.tick) {
			return
		}
	}

	// Phase 3: crisis.
	a.Crisis.Update(agg)
	if a.Crisis.InCrisis {
		a.Social.HardenUnderCrisis(dtHoursPerTick)
	}

	// Phase 4: relationships.
	nearby := s.nearby(a)
	self := a.View()
	for _, id := range nearby {
		other := s.agents[id]
		a.Relationships.Update(self, other.View(), s.tick, dtHoursPerTick)
	}

	// Phase 5: life cycle.
	a.AdvanceAge(dtHoursPerTick)
	if p := a.Pregnancy; p != nil {
		if p.Advance(s.tick, a.Needs.Hunger, a.Health, dtHoursPerTick) {
			s.queueBirth(a)
		}
	}
	if cause, died := agents.ShouldDie(a.Mortality(), a.Rng()); died {
		a.Kill(cause, s.tick)
		return
	}

	// Phase 6: action.
	act := Decide(a, nearby, s.tick)
	s.Apply(a, act)
}

// nearby returns up to maxEncounters living agents within the encounter
// radius, in insertion order for determinism.
func (s *Scheduler) nearby(a *agents.Agent) []agents.AgentID {
	var out []agents.AgentID
	for _, id := range s.order {
		if id == a.ID {
			continue
		}
		o, ok := s.agents[id]
		if !ok || !o.Alive {
			continue
		}
		if world.Distance(a.Longitude, a.Latitude, o.Longitude, o.Latitude) <= encounterRadiusKm {
			out = append(out, id)
			if len(out) == maxEncounters {
				break
			}
		}
	}
	return out
}

// tryConception checks a mated pair on the hourly cadence. Only the female
// side initiates so a pair is evaluated once.
func (s *Scheduler) tryConception(a *agents.Agent) {
	if a.Gender != agents.GenderFemale || a.MateID == "" || a.Pregnancy != nil {
		return
	}
	mate, ok := s.agents[a.MateID]
	if !ok || !mate.Alive {
		return
	}
	if a.Needs.ReproductionUrge < 0.7 {
		return
	}
	if !agents.CanReproduce(a.Reproduction(s.tick)) || !agents.CanReproduce(mate.Reproduction(s.tick)) {
		return
	}
	if !a.Rng().Chance(agents.ConceptionChance(a.Health, mate.Health)) {
		return
	}
	a.Pregnancy = agents.NewPregnancy(s.tick, mate.ID)
	a.Needs.Relieve(agents.NeedReproductionUrge)
	mate.Needs.Relieve(agents.NeedReproductionUrge)
	a.Memory.Add(s.tick, "carrying a child", 0.9, nil, agents.Impact{Emotional: 0.6})
}

// queueBirth marks a gestation complete; the child joins the population at
// the end of the current tick so mid-tick phases never see a half-added agent.
func (s *Scheduler) queueBirth(mother *agents.Agent) {
	s.births = append(s.births, BirthRecord{MotherID: mother.ID, FatherID: mother.Pregnancy.FatherID, Tick: s.tick})
}

func (s *Scheduler) deliverBirths() {
	if len(s.births) == 0 {
		return
	}
	pending := s.births
	s.births = nil

	for i := range pending {
		rec := &pending[i]
		mother, ok := s.agents[rec.MotherID]
		if !ok || !mother.Alive || mother.Pregnancy == nil {
			continue
		}

		var fatherGenes *agents.GeneProfile
		if father, ok := s.agents[rec.FatherID]; ok {
			fatherGenes = &father.Genes
		}

		child := s.spawner.Child(s.tick, mother, fatherGenes, rec.FatherID)
		mother.Pregnancy = nil
		s.add(child)

		rec.ID = child.ID
		rec.Name = child.Name
		s.totalBirths++

		mother.Emotions.ProcessExperience(fmt.Sprintf("gave birth to %s", child.Name),
			mother.EmotionContext(), mother.Rng())
		mother.Memory.Add(s.tick, fmt.Sprintf("%s was born", child.Name), 1, nil,
			agents.Impact{Emotional: 0.9})
		if father, ok := s.agents[rec.FatherID]; ok && father.Alive {
			father.ChildIDs = append(father.ChildIDs, child.ID)
			father.Relationships.MarkFamily(child.ID, s.tick)
			father.Emotions.ProcessExperience(fmt.Sprintf("birth of my child %s", child.Name),
				father.EmotionContext(), father.Rng())
		}

		s.events.Append(Event{Tick: s.tick, Category: "birth",
			Description: fmt.Sprintf("%s was born to %s", child.Name, mother.Name)})
		slog.Info("birth", "child", child.Name, "mother", mother.Name, "tick", s.tick)
	}
}

// bury finalizes this tick's deaths: one record per agent, family notified
// through their own emotion engines, then removal from the live collection.
func (s *Scheduler) bury(dead []*agents.Agent) {
	for _, a := range dead {
		if _, already := s.graveyard[a.ID]; already {
			continue
		}
		rec := &DeathRecord{
			ID:        a.ID,
			Name:      a.Name,
			Cause:     a.CauseOfDeath,
			AgeYears:  a.AgeYears,
			Tick:      a.DiedTick,
			Longitude: a.Longitude,
			Latitude:  a.Latitude,
			Inventory: a.Inventory.Clone(),
			MateID:    a.MateID,
			ChildIDs:  append([]agents.AgentID(nil), a.ChildIDs...),
		}
		s.graveyard[a.ID] = rec
		s.deaths = append(s.deaths, *rec)
		s.totalDeaths++

		s.notifyBereaved(a)
		delete(s.agents, a.ID)

		s.events.Append(Event{Tick: s.tick, Category: "death",
			Description: fmt.Sprintf("%s died of %s at age %.1f", a.Name, a.CauseOfDeath, a.AgeYears)})
		slog.Info("death", "agent", a.Name, "cause", a.CauseOfDeath,
			"age", fmt.Sprintf("%.1f", a.AgeYears), "tick", s.tick)
	}

	if len(dead) > 0 {
		s.compactOrder()
	}
}

// notifyBereaved routes the loss through survivors' emotion engines and
// clears dangling references.
func (s *Scheduler) notifyBereaved(deceased *agents.Agent) {
	event := fmt.Sprintf("death of %s", deceased.Name)

	if mate, ok := s.agents[deceased.MateID]; ok && mate.Alive {
		mate.Emotions.ProcessExperience("death of my mate "+deceased.Name,
			mate.EmotionContext(), mate.Rng())
		mate.Memory.Add(s.tick, "lost my mate "+deceased.Name, 1, nil,
			agents.Impact{Emotional: -0.9})
		mate.MateID = ""
	}
	for _, id := range deceased.ChildIDs {
		if child, ok := s.agents[id]; ok && child.Alive {
			child.Emotions.ProcessExperience("death of my parent "+deceased.Name,
				child.EmotionContext(), child.Rng())
			child.Memory.Add(s.tick, event, 0.9, nil, agents.Impact{Emotional: -0.8})
		}
	}
	for _, id := range deceased.ParentIDs {
		if parent, ok := s.agents[id]; ok && parent.Alive {
			parent.Emotions.ProcessExperience("death of my child "+deceased.Name,
				parent.EmotionContext(), parent.Rng())
			parent.Memory.Add(s.tick, event, 1, nil, agents.Impact{Emotional: -0.9})
		}
	}
	for _, other := range s.agents {
		other.Social.Forget(deceased.ID)
	}
}

func (s *Scheduler) compactOrder() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.agents[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

func (s *Scheduler) drainIntents() {
	s.intentMu.Lock()
	pending := s.intents
	s.intents = nil
	s.intentMu.Unlock()
	for _, in := range pending {
		in(s)
	}
}

// refreshAggregates recomputes world-level resource totals from the live
// population's inventories plus a per-capita environmental baseline.
func (s *Scheduler) refreshAggregates() {
	var total float64
	for _, a := range s.agents {
		total += a.Inventory.Total()
	}
	// The land itself offers a baseline that population pressure dilutes.
	total += s.world.Size * 10
	s.world.SetGlobalResources(total)
}

func (s *Scheduler) conflicts() int {
	return s.world.AggregatesFor(len(s.agents)).ActiveConflicts
}

func (s *Scheduler) population() []*agents.Agent {
	out := make([]*agents.Agent, 0, len(s.order))
	for _, id := range s.order {
		if a, ok := s.agents[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (s *Scheduler) publish() {
	snap := &WorldSnapshot{
		Tick:    s.tick,
		SimTime: SimTime(s.tick),
		Stats:   s.stats,
	}
	for _, a := range s.population() {
		snap.Agents = append(snap.Agents, a.Snapshot())
	}
	// Death records are immutable once buried; the copy keeps the snapshot
	// from aliasing the live slice.
	snap.Deaths = append([]DeathRecord(nil), s.deaths...)
	sev, kind, in := agents.EvaluateCrisis(agents.InputsFrom(s.world.AggregatesFor(len(s.agents))))
	snap.Crisis = CrisisSummary{Severity: sev, Kind: string(kind), InCrisis: in}
	s.pub.Publish(snap)
}

// LiveAgents returns the live population in insertion order. Only for use
// from the simulation goroutine or while the loop is stopped.
func (s *Scheduler) LiveAgents() []*agents.Agent {
	return s.population()
}

// Events exposes the event log.
func (s *Scheduler) Events() *EventLog { return s.events }

// Restore replaces the population with a persisted one and resumes the tick
// counter. Entropy streams are re-forked per agent; call before the loop
// starts, never mid-run.
func (s *Scheduler) Restore(pop []*agents.Agent, tick uint64) {
	s.agents = make(map[agents.AgentID]*agents.Agent, len(pop))
	s.order = s.order[:0]
	names := make([]string, 0, len(pop))
	for _, a := range pop {
		a.AttachRng(s.src)
		s.add(a)
		names = append(names, a.Name)
	}
	s.spawner.ResumeFrom(names)
	s.tick = tick
	s.refreshAggregates()
	s.stats = computeStats(s.population(), 0, 0)
	s.publish()
	slog.Info("population restored", "agents", len(pop), "tick", tick)
}

// DeathRecords returns every death so far, oldest first. Only for use from
// the simulation goroutine; the read path gets deaths from the snapshot.
func (s *Scheduler) DeathRecords() []DeathRecord {
	out := make([]DeathRecord, len(s.deaths))
	copy(out, s.deaths)
	return out
}
