// Crisis monitoring — per-agent view of world-level pressure. Severity is a
// pure function of the world aggregates, so every agent under the same sky
// computes the same crisis; what differs per agent is the accumulated
// survival instinct, paranoia, and moral compromise.
package agents

import (
	"github.com/talgya/genesis/internal/world"
)

// CrisisKind classifies which pressure dominates.
type CrisisKind string

const (
	CrisisNone           CrisisKind = ""
	CrisisFamine         CrisisKind = "famine"
	CrisisWar            CrisisKind = "war"
	CrisisOverpopulation CrisisKind = "overpopulation"
	CrisisGeneral        CrisisKind = "general"
)

const (
	crisisThreshold   = 70.0 // severity above this is a crisis
	dominantInput     = 0.8  // an input above this names the crisis type
	crimeInstinctGate = 70.0 // survival instinct needed to unlock crime branches
)

// CrimeKind names a compromised act.
type CrimeKind string

const (
	CrimeTheft          CrimeKind = "theft"
	CrimeAttackForFood  CrimeKind = "attack_for_food"
	CrimeAttackSafety   CrimeKind = "attack_for_safety"
	CrimeDomination     CrimeKind = "domination"
	CrimeRandomViolence CrimeKind = "random_violence"
)

// moralCost is the compromise each crime adds, capped at 100.
var moralCost = map[CrimeKind]float64{
	CrimeTheft:          5,
	CrimeAttackForFood:  10,
	CrimeAttackSafety:   5,
	CrimeDomination:     15,
	CrimeRandomViolence: 20,
}

// CrimeRecord is one committed crime.
type CrimeRecord struct {
	Kind   CrimeKind `json:"kind"`
	Target AgentID   `json:"target,omitempty"`
	Tick   uint64    `json:"tick"`
}

// CrisisState is derived each tick from the world aggregates plus the agent's
// own accumulators. It is never persisted apart from the tick that made it,
// except for the slow accumulators and crime history.
type CrisisState struct {
	Severity float64    `json:"severity"` // 0–100
	InCrisis bool       `json:"in_crisis"`
	Kind     CrisisKind `json:"kind,omitempty"`

	SurvivalInstinct float64 `json:"survival_instinct"` // 0–100
	Paranoia         float64 `json:"paranoia"`          // 0–100
	MoralCompromise  float64 `json:"moral_compromise"`  // 0–100

	Crimes        []CrimeRecord `json:"crimes,omitempty"`
	LastCrimeTick uint64        `json:"last_crime_tick,omitempty"`
	CrimeCooldown uint64        `json:"crime_cooldown"` // ticks
}

// NewCrisisState returns a calm state with the default crime cooldown.
func NewCrisisState(cooldownTicks uint64) CrisisState {
	return CrisisState{CrimeCooldown: cooldownTicks}
}

// CrisisInputs are the three normalized pressures severity derives from.
type CrisisInputs struct {
	ResourceScarcity  float64
	PopulationDensity float64
	ConflictLevel     float64
}

// InputsFrom derives the pressure inputs from raw world aggregates.
func InputsFrom(agg world.Aggregates) CrisisInputs {
	if agg.AgentCount <= 0 || agg.WorldSize <= 0 {
		return CrisisInputs{}
	}
	scarcity := 1 - agg.GlobalResources/(float64(agg.AgentCount)*100)
	if scarcity < 0 {
		scarcity = 0
	}
	return CrisisInputs{
		ResourceScarcity:  scarcity,
		PopulationDensity: float64(agg.AgentCount) / agg.WorldSize,
		ConflictLevel:     float64(agg.ActiveConflicts) / float64(agg.AgentCount),
	}
}

// EvaluateCrisis computes severity and kind from the inputs. Pure: the same
// inputs always yield the same answer regardless of seed.
func EvaluateCrisis(in CrisisInputs) (severity float64, kind CrisisKind, inCrisis bool) {
	severity = max3(in.ResourceScarcity, in.PopulationDensity, in.ConflictLevel) * 100
	if severity > 100 {
		severity = 100
	}
	inCrisis = severity > crisisThreshold
	if !inCrisis {
		return severity, CrisisNone, false
	}
	switch {
	case in.ResourceScarcity > dominantInput:
		kind = CrisisFamine
	case in.ConflictLevel > dominantInput:
		kind = CrisisWar
	case in.PopulationDensity > dominantInput:
		kind = CrisisOverpopulation
	default:
		kind = CrisisGeneral
	}
	return severity, kind, true
}

// Update recomputes the derived fields and, while in crisis, ratchets
// survival instinct and paranoia up by the fixed per-tick rate.
func (c *CrisisState) Update(agg world.Aggregates) {
	c.Severity, c.Kind, c.InCrisis = EvaluateCrisis(InputsFrom(agg))
	if c.InCrisis {
		c.SurvivalInstinct = cap100(c.SurvivalInstinct + 0.1)
		c.Paranoia = cap100(c.Paranoia + 0.1)
	}
}

// MayCommitCrime reports whether the crime branches of the action selector
// are open: instinct past the gate and the cooldown elapsed.
func (c *CrisisState) MayCommitCrime(tick uint64) bool {
	if c.SurvivalInstinct <= crimeInstinctGate {
		return false
	}
	if c.LastCrimeTick == 0 {
		return true
	}
	return tick-c.LastCrimeTick > c.CrimeCooldown
}

// RecordCrime logs a committed crime and accumulates moral compromise.
func (c *CrisisState) RecordCrime(kind CrimeKind, target AgentID, tick uint64) {
	c.Crimes = append(c.Crimes, CrimeRecord{Kind: kind, Target: target, Tick: tick})
	c.LastCrimeTick = tick
	c.MoralCompromise = cap100(c.MoralCompromise + moralCost[kind])
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func cap100(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
