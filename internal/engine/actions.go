// Action selection: a strict priority tree evaluated once per agent per tick.
// Decide is free of side effects; the scheduler applies the chosen branch
// afterwards, so a discarded branch never leaves partial mutation behind.
package engine

import (
	"fmt"

	"github.com/talgya/genesis/internal/agents"
	"github.com/talgya/genesis/internal/world"
)

// ActionKind names a behavior an agent can commit to for one tick.
type ActionKind string

const (
	ActionBathroom  ActionKind = "bathroom"
	ActionSeekFood  ActionKind = "seek_food"
	ActionSeekWater ActionKind = "seek_water"
	ActionRest      ActionKind = "rest"
	ActionClean     ActionKind = "clean"
	ActionSocialize ActionKind = "socialize"
	ActionCreate    ActionKind = "create"
	ActionReflect   ActionKind = "reflect"
	ActionExpress   ActionKind = "express_emotions"

	// consider_action branches.
	ActionTheft           ActionKind = "theft"
	ActionAttackForFood   ActionKind = "attack_for_food"
	ActionAttackForSafety ActionKind = "attack_for_safety"
	ActionDominate        ActionKind = "dominate"
	ActionViolence        ActionKind = "random_violence"
	ActionEstablishLaws   ActionKind = "establish_laws"
	ActionCourtship       ActionKind = "courtship"
	ActionWander          ActionKind = "wander"
)

// Action is one committed decision, possibly aimed at another agent.
type Action struct {
	Kind   ActionKind
	Target agents.AgentID
}

const needFloor = 0.3

// Decide walks the priority tree and returns exactly one action. It reads
// agent state and the candidate list but mutates nothing; random draws are
// deferred to Apply so a decision alone never advances the agent's stream.
func Decide(a *agents.Agent, nearby []agents.AgentID, tick uint64) Action {
	n := &a.Needs

	switch {
	case n.Bladder > 0.8 || n.Bowel > 0.8:
		return Action{Kind: ActionBathroom}
	case n.Hunger < needFloor:
		return Action{Kind: ActionSeekFood}
	case n.Thirst < needFloor:
		return Action{Kind: ActionSeekWater}
	case n.Rest < needFloor:
		return Action{Kind: ActionRest}
	case n.Hygiene < needFloor:
		return Action{Kind: ActionClean}
	case n.Social < needFloor:
		return Action{Kind: ActionSocialize, Target: bestCompanion(a, nearby)}
	case n.CreativeExpression < needFloor:
		return Action{Kind: ActionCreate}
	case n.PhilosophicalExpression < needFloor:
		return Action{Kind: ActionReflect}
	case n.EmotionalExpression < needFloor:
		return Action{Kind: ActionExpress}
	}

	return considerAction(a, nearby, tick)
}

// considerAction is the default branch: crisis-gated crime, politics, and
// courtship, falling back to wandering.
func considerAction(a *agents.Agent, nearby []agents.AgentID, tick uint64) Action {
	if a.Crisis.MayCommitCrime(tick) && len(nearby) > 0 {
		target := nearby[0]
		switch {
		case a.Social.ViolenceTolerance > 80:
			return Action{Kind: ActionViolence, Target: target}
		case a.Social.PowerSeeking > 70:
			return Action{Kind: ActionDominate, Target: target}
		case a.Needs.Hunger < 0.5:
			return Action{Kind: ActionAttackForFood, Target: target}
		case a.Needs.Safety < 0.5:
			return Action{Kind: ActionAttackForSafety, Target: target}
		default:
			return Action{Kind: ActionTheft, Target: target}
		}
	}

	if a.Social.WantsLaws() {
		return Action{Kind: ActionEstablishLaws}
	}

	if suitor := courtshipTarget(a, nearby, tick); suitor != "" {
		return Action{Kind: ActionCourtship, Target: suitor}
	}

	return Action{Kind: ActionWander}
}

// bestCompanion picks the nearby agent this one likes most.
func bestCompanion(a *agents.Agent, nearby []agents.AgentID) agents.AgentID {
	var best agents.AgentID
	var bestAff float32 = -1
	for _, id := range nearby {
		rel := a.Relationships.Get(id)
		if rel == nil {
			continue
		}
		if rel.Affection > bestAff {
			best, bestAff = id, rel.Affection
		}
	}
	if best == "" && len(nearby) > 0 {
		best = nearby[0]
	}
	return best
}

// courtshipTarget returns a nearby agent this one would court, or "".
func courtshipTarget(a *agents.Agent, nearby []agents.AgentID, tick uint64) agents.AgentID {
	if a.Stage != agents.StageAdult || a.MateID != "" || tick < a.CourtshipCooldownUntil {
		return ""
	}
	for _, id := range nearby {
		rel := a.Relationships.Get(id)
		if rel != nil && rel.RomanticMatch() && rel.Kind != agents.RelationMate {
			return id
		}
	}
	return ""
}

// Apply commits the chosen action: this is the only place an action mutates
// state, and every random success roll happens here.
func (s *Scheduler) Apply(a *agents.Agent, act Action) {
	a.LastAction = string(act.Kind)
	rng := a.Rng()

	switch act.Kind {
	case ActionBathroom:
		// Nature's fallback: relief happens with or without facilities,
		// at a hygiene cost when it is the latter.
		a.Needs.Relieve(agents.NeedBladder)
		a.Needs.Relieve(agents.NeedBowel)
		a.Needs.Satisfy(agents.NeedHygiene, -0.05)

	case ActionSeekFood:
		if got := a.Inventory.Consume(agents.ResourceFood, 1); got > 0 {
			a.Needs.Satisfy(agents.NeedHunger, float32(got)*0.4)
		} else {
			s.forage(a)
		}

	case ActionSeekWater:
		if got := a.Inventory.Consume(agents.ResourceWater, 1); got > 0 {
			a.Needs.Satisfy(agents.NeedThirst, float32(got)*0.5)
		} else {
			a.Inventory.Gather(agents.ResourceWater, 2)
		}

	case ActionRest:
		a.Needs.Satisfy(agents.NeedRest, 0.3)

	case ActionClean:
		a.Needs.Satisfy(agents.NeedHygiene, 0.5)

	case ActionSocialize:
		s.applySocialize(a, act.Target)

	case ActionCreate:
		a.Needs.Satisfy(agents.NeedCreativeExpression, 0.5)
		a.Memory.Add(s.tick, "made something new from what was at hand", 0.4, nil,
			agents.Impact{Emotional: 0.3})

	case ActionReflect:
		s.applyReflection(a)

	case ActionExpress:
		s.applyExpression(a)

	case ActionTheft:
		s.applyTheft(a, act.Target)

	case ActionAttackForFood:
		s.applyAttackForFood(a, act.Target)

	case ActionAttackForSafety:
		s.applyAttackForSafety(a, act.Target)

	case ActionDominate:
		s.applyDomination(a, act.Target)

	case ActionViolence:
		// Even at full tolerance the act stays rare.
		if rng.Chance(0.1) {
			s.applyViolence(a, act.Target)
		} else {
			a.LastAction = string(ActionWander)
			s.wander(a)
		}

	case ActionEstablishLaws:
		a.Social.HasEstablishedLaws = true
		a.Social.AdjustReputation(5)
		a.Social.AdjustInfluence(10)
		a.Memory.Add(s.tick, "laid down laws for the community", 0.8, nil,
			agents.Impact{Cognitive: 0.6})
		s.events.Append(Event{Tick: s.tick, Category: "social",
			Description: fmt.Sprintf("%s established laws", a.Name)})

	case ActionCourtship:
		s.applyCourtship(a, act.Target)

	case ActionWander:
		s.wander(a)
	}

	a.Needs.Clamp()
}

// forage gathers food from the surrounding terrain; yield depends on terrain
// richness and hunting skill.
func (s *Scheduler) forage(a *agents.Agent) {
	yield := 0.5 + float64(a.Genes.HuntingSkill)
	switch s.world.GetTerrainAt(a.Longitude, a.Latitude) {
	case world.TerrainForest:
		yield *= 1.5
	case world.TerrainDesert:
		yield *= 0.4
	case world.TerrainTundra:
		yield *= 0.6
	}
	a.Inventory.Gather(agents.ResourceFood, yield)
}

func (s *Scheduler) applySocialize(a *agents.Agent, target agents.AgentID) {
	a.Needs.Satisfy(agents.NeedSocial, 0.4)
	other, ok := s.agents[target]
	if !ok || !other.Alive {
		return
	}
	a.Relationships.RecordInteraction(target, "shared a conversation", 0.02, 0.03)
	other.Relationships.RecordInteraction(a.ID, "shared a conversation", 0.02, 0.03)
	other.Needs.Satisfy(agents.NeedSocial, 0.2)
}

// applyReflection is philosophical expression: understanding of a known
// concept deepens, and heavy reflection can tip into existential thoughts.
func (s *Scheduler) applyReflection(a *agents.Agent) {
	a.Needs.Satisfy(agents.NeedPhilosophicalExpression, 0.5)

	recent := a.Memory.Recent(5)
	if len(recent) > 0 && len(recent[0].Concepts) > 0 {
		c := recent[0].Concepts[0]
		a.Understanding[c] = clamp01f(a.Understanding[c] + 0.1*a.Genes.CognitiveComplexity)
	}

	if a.Genes.ExistentialAwareness > 0.7 && a.AgeYears > 20 && a.Rng().Chance(0.05) {
		a.Emotions.ProcessExperience("pondered death and what it all means",
			a.EmotionContext(), a.Rng())
		a.Memory.Add(s.tick, "stared into the question of mortality", 0.6, nil,
			agents.Impact{Philosophical: 0.8})
	}
}

// applyExpression channels the dominant emotion into an artistic or written
// outlet, recording a high-impact memory of the work.
func (s *Scheduler) applyExpression(a *agents.Agent) {
	a.Needs.Satisfy(agents.NeedEmotionalExpression, 0.5)

	dominant := a.Emotions.Dominant()
	if dominant == "" {
		a.Memory.Add(s.tick, "sat with a quiet mind and made peace with the day", 0.3, nil,
			agents.Impact{Emotional: 0.2})
		return
	}
	a.Memory.Add(s.tick, fmt.Sprintf("poured %s into a work of expression", dominant), 0.6,
		map[string]string{"emotion": string(dominant)},
		agents.Impact{Emotional: 0.5, Philosophical: 0.2})
}

func (s *Scheduler) applyTheft(a *agents.Agent, target agents.AgentID) {
	victim, ok := s.agents[target]
	if !ok || !victim.Alive {
		return
	}
	chance := 0.4*float64(a.Genes.Stealth) + 0.3*float64(a.Genes.Strength) + 0.3*a.Rng().Float()
	if chance <= 0.5 {
		victim.Relationships.RecordInteraction(a.ID, "caught trying to steal", -0.3, -0.2)
		a.Social.AdjustReputation(-5)
		return
	}
	taken := victim.Inventory.Consume(agents.ResourceFood, 1)
	a.Inventory.Gather(agents.ResourceFood, taken)
	a.Crisis.RecordCrime(agents.CrimeTheft, target, s.tick)
	a.Memory.Add(s.tick, "stole food to survive", 0.7, nil, agents.Impact{Emotional: -0.3})
	s.events.Append(Event{Tick: s.tick, Category: "crime",
		Description: fmt.Sprintf("%s stole from %s", a.Name, victim.Name)})
}

func (s *Scheduler) applyAttackForFood(a *agents.Agent, target agents.AgentID) {
	victim, ok := s.agents[target]
	if !ok || !victim.Alive {
		return
	}
	chance := 0.4*float64(a.Genes.Strength) + 0.3*float64(a.Genes.HuntingSkill) + 0.3*a.Rng().Float()
	if chance <= 0.5 {
		a.Health = clamp01f(a.Health - 0.05)
		return
	}
	taken := victim.Inventory.Consume(agents.ResourceFood, victim.Inventory[agents.ResourceFood])
	a.Inventory.Gather(agents.ResourceFood, taken)
	victim.Health = clamp01f(victim.Health - 0.1)
	victim.Needs.Satisfy(agents.NeedSafety, -0.3)
	victim.Emotions.ProcessExperience(fmt.Sprintf("attacked by %s over food", a.Name),
		victim.EmotionContext(), victim.Rng())
	victim.Social.AddEnemy(a.ID)
	a.Crisis.RecordCrime(agents.CrimeAttackForFood, target, s.tick)
	s.world.SetActiveConflicts(s.conflicts() + 1)
	s.events.Append(Event{Tick: s.tick, Category: "crime",
		Description: fmt.Sprintf("%s attacked %s for food", a.Name, victim.Name)})
}

// applyAttackForSafety is a paranoid preemptive strike: drive the perceived
// threat off rather than rob it.
func (s *Scheduler) applyAttackForSafety(a *agents.Agent, target agents.AgentID) {
	victim, ok := s.agents[target]
	if !ok || !victim.Alive {
		return
	}
	chance := 0.4*float64(a.Genes.Strength) + 0.3*a.Crisis.Paranoia/100 + 0.3*a.Rng().Float()
	if chance <= 0.5 {
		a.Health = clamp01f(a.Health - 0.05)
		return
	}
	a.Needs.Satisfy(agents.NeedSafety, 0.4)
	victim.Health = clamp01f(victim.Health - 0.1)
	victim.Needs.Satisfy(agents.NeedSafety, -0.3)
	victim.Emotions.ProcessExperience(fmt.Sprintf("driven off by %s", a.Name),
		victim.EmotionContext(), victim.Rng())
	victim.Social.AddEnemy(a.ID)
	a.Crisis.RecordCrime(agents.CrimeAttackSafety, target, s.tick)
	s.world.SetActiveConflicts(s.conflicts() + 1)
	s.events.Append(Event{Tick: s.tick, Category: "crime",
		Description: fmt.Sprintf("%s drove off %s", a.Name, victim.Name)})
}

func (s *Scheduler) applyDomination(a *agents.Agent, target agents.AgentID) {
	victim, ok := s.agents[target]
	if !ok || !victim.Alive {
		return
	}
	chance := 0.3*float64(a.Genes.Strength) + 0.3*float64(a.Genes.SocialDrive) +
		0.2*a.Social.PowerSeeking/100 + 0.2*a.Rng().Float()
	if chance <= 0.6 {
		a.Social.AdjustReputation(-3)
		return
	}
	a.Social.AdjustInfluence(8)
	victim.Social.AdjustInfluence(-5)
	victim.Emotions.ProcessExperience(fmt.Sprintf("dominated by %s", a.Name),
		victim.EmotionContext(), victim.Rng())
	a.Crisis.RecordCrime(agents.CrimeDomination, target, s.tick)
	s.events.Append(Event{Tick: s.tick, Category: "crime",
		Description: fmt.Sprintf("%s forced %s into submission", a.Name, victim.Name)})
}

func (s *Scheduler) applyViolence(a *agents.Agent, target agents.AgentID) {
	victim, ok := s.agents[target]
	if !ok || !victim.Alive {
		return
	}
	victim.Health = clamp01f(victim.Health - 0.2)
	victim.Needs.Satisfy(agents.NeedSafety, -0.4)
	victim.Emotions.ProcessExperience(fmt.Sprintf("attacked without cause by %s", a.Name),
		victim.EmotionContext(), victim.Rng())
	victim.Social.AddEnemy(a.ID)
	a.Crisis.RecordCrime(agents.CrimeRandomViolence, target, s.tick)
	s.world.SetActiveConflicts(s.conflicts() + 1)
	s.events.Append(Event{Tick: s.tick, Category: "crime",
		Description: fmt.Sprintf("%s lashed out at %s", a.Name, victim.Name)})
}

// applyCourtship rolls acceptance and, on mutual interest, commits the mate
// bond to both sides within this same tick.
func (s *Scheduler) applyCourtship(a *agents.Agent, target agents.AgentID) {
	other, ok := s.agents[target]
	if !ok || !other.Alive || other.MateID != "" || a.MateID != "" {
		return
	}
	mine := a.Relationships.Get(target)
	theirs := other.Relationships.Get(a.ID)
	if mine == nil || theirs == nil || !mine.RomanticMatch() || !theirs.RomanticMatch() {
		a.CourtshipCooldownUntil = s.tick + s.courtshipCooldown
		return
	}

	chance := agents.AcceptanceChance(theirs.Attraction, theirs.Compatibility)
	if !a.Rng().Chance(chance) {
		a.CourtshipCooldownUntil = s.tick + s.courtshipCooldown
		a.Memory.Add(s.tick, fmt.Sprintf("%s turned down my advances", other.Name), 0.5, nil,
			agents.Impact{Emotional: -0.4})
		return
	}

	s.commitMateBond(a, other)
}

// commitMateBond applies both sides of a new bond atomically from the
// scheduler's perspective: no tick boundary can observe half a bond.
func (s *Scheduler) commitMateBond(a, b *agents.Agent) {
	a.MateID = b.ID
	b.MateID = a.ID
	a.Relationships.MarkMate(b.ID, s.tick)
	b.Relationships.MarkMate(a.ID, s.tick)

	ctx := a.EmotionContext()
	a.Emotions.ProcessExperience(fmt.Sprintf("became mates with %s", b.Name), ctx, a.Rng())
	b.Emotions.ProcessExperience(fmt.Sprintf("became mates with %s", a.Name), b.EmotionContext(), b.Rng())
	a.Memory.Add(s.tick, fmt.Sprintf("bonded with %s", b.Name), 0.9, nil, agents.Impact{Emotional: 0.8})
	b.Memory.Add(s.tick, fmt.Sprintf("bonded with %s", a.Name), 0.9, nil, agents.Impact{Emotional: 0.8})

	s.events.Append(Event{Tick: s.tick, Category: "social",
		Description: fmt.Sprintf("%s and %s became mates", a.Name, b.Name)})
}

// wander drifts the agent a short way; movement keeps positions plausible
// without a pathfinding system.
func (s *Scheduler) wander(a *agents.Agent) {
	a.Longitude += a.Rng().Range(-0.05, 0.05)
	a.Latitude += a.Rng().Range(-0.05, 0.05)
	if a.Latitude > 85 {
		a.Latitude = 85
	}
	if a.Latitude < -85 {
		a.Latitude = -85
	}
	if a.Longitude > 180 {
		a.Longitude -= 360
	}
	if a.Longitude < -180 {
		a.Longitude += 360
	}
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
