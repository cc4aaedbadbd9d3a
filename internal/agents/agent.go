package agents

import (
	"github.com/google/uuid"

	"github.com/talgya/genesis/internal/entropy"
)

// AgentID identifies an agent. All cross-agent references are ids resolved
// through the scheduler, never pointers.
type AgentID string

// NewAgentID mints a fresh id. The uuid stream is independent of the
// simulation's entropy source, so ids never perturb replay.
func NewAgentID() AgentID {
	return AgentID(uuid.NewString())
}

// Gender of an agent.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Agent is the full mutable state of one inhabitant. Only the scheduler's
// simulation goroutine touches a live Agent; everyone else reads snapshots.
type Agent struct {
	ID       AgentID `json:"id"`
	Name     string  `json:"name"`
	Gender   Gender  `json:"gender"`
	BornTick uint64  `json:"born_tick"`
	AgeYears float64 `json:"age_years"`

	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	Health   float32 `json:"health"` // 0–1
	Lifespan float64 `json:"lifespan"`
	Stage    LifeStage `json:"stage"`

	Genes         GeneProfile       `json:"genes"`
	Needs         NeedsVector       `json:"needs"`
	Emotions      EmotionState      `json:"emotions"`
	Memory        MemoryLog         `json:"memory"`
	Relationships RelationshipGraph `json:"relationships"`
	Social        SocialState       `json:"social"`
	Crisis        CrisisState       `json:"crisis"`
	Inventory     Inventory         `json:"inventory"`

	// Per-concept comprehension built up by philosophical reflection.
	Understanding map[string]float32 `json:"understanding,omitempty"`

	TribeID      string  `json:"tribe_id,omitempty"`
	SettlementID string  `json:"settlement_id,omitempty"`
	MateID       AgentID `json:"mate_id,omitempty"`

	ParentIDs []AgentID  `json:"parent_ids,omitempty"`
	ChildIDs  []AgentID  `json:"child_ids,omitempty"`
	Pregnancy *Pregnancy `json:"pregnancy,omitempty"`

	Alive        bool       `json:"alive"`
	CauseOfDeath DeathCause `json:"cause_of_death,omitempty"`
	DiedTick     uint64     `json:"died_tick,omitempty"`

	LastAction             string `json:"last_action,omitempty"`
	CourtshipCooldownUntil uint64 `json:"courtship_cooldown_until,omitempty"`

	rng *entropy.Source
}

// NewAgent creates an adult founder at the given position. The agent's own
// entropy stream is forked from the parent source by name (unique per
// spawner), so per-agent rolls replay deterministically regardless of
// population size or id assignment.
func NewAgent(name string, gender Gender, tick uint64, lon, lat float64, crimeCooldown uint64, src *entropy.Source) *Agent {
	id := NewAgentID()
	a := &Agent{
		ID:        id,
		Name:      name,
		Gender:    gender,
		BornTick:  tick,
		AgeYears:  20,
		Longitude: lon,
		Latitude:  lat,
		Health:    1,
		Stage:     StageAdult,
		Alive:     true,

		Needs:         NewNeedsVector(),
		Emotions:      NewEmotionState(),
		Memory:        NewMemoryLog(),
		Relationships: NewRelationshipGraph(),
		Crisis:        NewCrisisState(crimeCooldown),
		Inventory:     NewInventory(),
		Understanding: make(map[string]float32),
	}
	a.rng = src.Fork("agent:" + name)
	a.Genes = NewGeneProfile(a.rng)
	a.Lifespan = RollLifespan(a.Genes.Longevity, a.rng)
	a.Social = NewSocialState(&a.Genes)
	return a
}

// NewChildAgent creates a newborn from its parents' genes.
func NewChildAgent(name string, gender Gender, tick uint64, mother *Agent, fatherGenes *GeneProfile, fatherID AgentID, src *entropy.Source) *Agent {
	id := NewAgentID()
	a := &Agent{
		ID:        id,
		Name:      name,
		Gender:    gender,
		BornTick:  tick,
		Longitude: mother.Longitude,
		Latitude:  mother.Latitude,
		Health:    1,
		Stage:     StageInfant,
		Alive:     true,

		Needs:         NewNeedsVector(),
		Emotions:      NewEmotionState(),
		Memory:        NewMemoryLog(),
		Relationships: NewRelationshipGraph(),
		Crisis:        NewCrisisState(mother.Crisis.CrimeCooldown),
		Inventory:     make(Inventory),
		Understanding: make(map[string]float32),

		ParentIDs: []AgentID{mother.ID},
	}
	if fatherID != "" {
		a.ParentIDs = append(a.ParentIDs, fatherID)
	}
	a.rng = src.Fork("agent:" + name)
	a.Genes = InheritGenes(&mother.Genes, fatherGenes, a.rng)
	a.Lifespan = RollLifespan(a.Genes.Longevity, a.rng)
	a.Social = NewSocialState(&a.Genes)
	// A hard gestation leaves its mark on the newborn.
	if p := mother.Pregnancy; p != nil && p.Health < 0.5 {
		a.Health = clampNeed(p.Health + 0.3)
	}
	return a
}

// Rng returns the agent's private entropy stream.
func (a *Agent) Rng() *entropy.Source { return a.rng }

// AttachRng re-forks the agent's entropy stream after a restore.
func (a *Agent) AttachRng(src *entropy.Source) {
	a.rng = src.Fork("agent:" + a.Name)
}

// AdvanceAge moves age forward by dt hours and applies the monotonic stage
// transition.
func (a *Agent) AdvanceAge(dtHours float64) {
	a.AgeYears += dtHours / (24 * 365)
	next := StageForAge(a.AgeYears)
	if stageRank(next) > stageRank(a.Stage) {
		a.Stage = next
	}
}

func stageRank(s LifeStage) int {
	switch s {
	case StageInfant:
		return 0
	case StageChild:
		return 1
	case StageAdolescent:
		return 2
	case StageAdult:
		return 3
	default:
		return 4
	}
}

// NeedsFlags builds the context the needs decay reads from agent state.
func (a *Agent) NeedsFlags() AdvanceFlags {
	return AdvanceFlags{
		HasTribe:          a.TribeID != "",
		HasMate:           a.MateID != "",
		IsAdult:           a.Stage == StageAdult,
		UnderThreat:       a.Crisis.InCrisis,
		CreativityGene:    a.Genes.Creativity,
		PhilosophicalGene: a.Genes.PhilosophicalTendency,
		EmotionalGene:     a.Genes.EmotionalDepth,
		Metabolism:        a.Genes.Metabolism,
	}
}

// EmotionContext builds the slice of state the intensity formula reads.
func (a *Agent) EmotionContext() EmotionContext {
	return EmotionContext{
		EmotionalDepth:   a.Genes.EmotionalDepth,
		AvgUnderstanding: a.AvgUnderstanding(),
	}
}

// AvgUnderstanding averages comprehension over every concept studied so far.
func (a *Agent) AvgUnderstanding() float32 {
	if len(a.Understanding) == 0 {
		return 0
	}
	var sum float32
	for _, v := range a.Understanding {
		sum += v
	}
	return sum / float32(len(a.Understanding))
}

// Protective reports the anchors holding this agent back from terminal
// despair.
func (a *Agent) Protective() ProtectiveFactors {
	return ProtectiveFactors{
		HasMate:              a.MateID != "",
		HasChildren:          len(a.ChildIDs) > 0,
		HasTribe:             a.TribeID != "",
		RecentPositiveMemory: a.Memory.RecentPositive(10, 0.7),
	}
}

// View builds the read-only projection other agents score against.
func (a *Agent) View() PeerView {
	return PeerView{
		ID:            a.ID,
		Genes:         &a.Genes,
		Stage:         a.Stage,
		TribeID:       a.TribeID,
		Concepts:      a.Memory.Concepts,
		FeltConcepts:  a.Emotions.FeltConcepts,
		Understanding: a.AvgUnderstanding(),
	}
}

// Mortality builds the death-evaluation view of this agent.
func (a *Agent) Mortality() MortalityCheck {
	return MortalityCheck{
		AgeYears: a.AgeYears,
		Lifespan: a.Lifespan,
		Health:   a.Health,
		Hunger:   a.Needs.Hunger,
		Thirst:   a.Needs.Thirst,
	}
}

// Reproduction builds the conception-gate view of this agent.
func (a *Agent) Reproduction(tick uint64) ReproductionCheck {
	return ReproductionCheck{
		Stage:      a.Stage,
		Health:     a.Health,
		Hunger:     a.Needs.Hunger,
		Thirst:     a.Needs.Thirst,
		Pregnant:   a.Pregnancy != nil,
		OnCooldown: tick < a.CourtshipCooldownUntil,
	}
}

// Kill marks the agent dead. Idempotent: only the first call reports a fresh
// death; later calls change nothing.
func (a *Agent) Kill(cause DeathCause, tick uint64) bool {
	if !a.Alive {
		return false
	}
	a.Alive = false
	a.Health = 0
	a.CauseOfDeath = cause
	a.DiedTick = tick
	a.Pregnancy = nil
	return true
}

// AgentSnapshot is the flat, deep-copied projection published to the read
// path at tick boundaries.
type AgentSnapshot struct {
	ID        AgentID   `json:"id"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender"`
	AgeYears  float64   `json:"age_years"`
	Stage     LifeStage `json:"stage"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`

	Health float32 `json:"health"`
	Alive  bool    `json:"alive"`

	Needs           NeedsVector `json:"needs"`
	DominantEmotion EmotionType `json:"dominant_emotion,omitempty"`
	Mood            float32     `json:"mood"`
	Stability       float32     `json:"stability"`
	CrisisSeverity  float64     `json:"crisis_severity"`
	MoralCompromise float64     `json:"moral_compromise"`

	TribeID    string    `json:"tribe_id,omitempty"`
	MateID     AgentID   `json:"mate_id,omitempty"`
	ChildIDs   []AgentID `json:"child_ids,omitempty"`
	Pregnant   bool      `json:"pregnant"`
	Inventory  Inventory `json:"inventory"`
	LastAction string    `json:"last_action,omitempty"`
}

// Snapshot deep-copies the externally interesting slice of the agent. The
// result shares no mutable state with the live agent.
func (a *Agent) Snapshot() AgentSnapshot {
	children := make([]AgentID, len(a.ChildIDs))
	copy(children, a.ChildIDs)
	return AgentSnapshot{
		ID:        a.ID,
		Name:      a.Name,
		Gender:    a.Gender,
		AgeYears:  a.AgeYears,
		Stage:     a.Stage,
		Longitude: a.Longitude,
		Latitude:  a.Latitude,

		Health: a.Health,
		Alive:  a.Alive,

		Needs:           a.Needs,
		DominantEmotion: a.Emotions.Dominant(),
		Mood:            a.Emotions.Mood(),
		Stability:       a.Emotions.Stability,
		CrisisSeverity:  a.Crisis.Severity,
		MoralCompromise: a.Crisis.MoralCompromise,

		TribeID:    a.TribeID,
		MateID:     a.MateID,
		ChildIDs:   children,
		Pregnant:   a.Pregnancy != nil,
		Inventory:  a.Inventory.Clone(),
		LastAction: a.LastAction,
	}
}
