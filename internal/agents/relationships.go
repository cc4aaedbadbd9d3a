// Pairwise relationships. Each agent keeps its own view of everyone it has
// encountered; the scheduler is responsible for committing mate bonds to both
// sides in the same tick.
package agents

import (
	"sort"
)

// RelationshipKind classifies a pair bond.
type RelationshipKind string

const (
	RelationNeutral RelationshipKind = "neutral"
	RelationFriend  RelationshipKind = "friend"
	RelationEnemy   RelationshipKind = "enemy"
	RelationFamily  RelationshipKind = "family"
	RelationMate    RelationshipKind = "mate"
)

const (
	maxRelationships = 64 // entries per agent before pruning
	maxInteractions  = 20 // interaction history per entry

	// Both sides need attraction and compatibility past this before
	// courtship can escalate to a mate bond.
	RomanticThreshold = 0.7
)

// Relationship is one agent's view of another.
type Relationship struct {
	Compatibility   float32          `json:"compatibility"`
	Attraction      float32          `json:"attraction"`
	Trust           float32          `json:"trust"`
	Affection       float32          `json:"affection"`
	SharedInterests float32          `json:"shared_interests"`
	Kind            RelationshipKind `json:"kind"`
	History         []string         `json:"history,omitempty"`
	LastTick        uint64           `json:"last_tick"`
}

// PeerView is the read-only slice of another agent that relationship scoring
// needs. The scheduler builds these from live agents; cross-agent writes never
// happen through a view.
type PeerView struct {
	ID            AgentID
	Genes         *GeneProfile
	Stage         LifeStage
	TribeID       string
	Role          string
	Concepts      map[string]struct{}
	FeltConcepts  map[string]struct{}
	Understanding float32
}

// compatibilityWeights is the fixed trait-weight table for personality
// similarity. Weights sum below 1; shared-context bonuses fill the rest.
var compatibilityWeights = []struct {
	weight float32
	pick   func(g *GeneProfile) float32
}{
	{0.20, func(g *GeneProfile) float32 { return g.Intelligence }},
	{0.15, func(g *GeneProfile) float32 { return g.SocialDrive }},
	{0.15, func(g *GeneProfile) float32 { return g.EmotionalDepth }},
	{0.10, func(g *GeneProfile) float32 { return g.Creativity }},
	{0.10, func(g *GeneProfile) float32 { return g.PhilosophicalTendency }},
	{0.10, func(g *GeneProfile) float32 { return g.CulturalSensitivity }},
}

// Compatibility scores how alike two agents are: weighted trait similarity
// (1 − |a − b| per trait) plus shared-context bonuses, normalized by the total
// weight used.
func Compatibility(self, other PeerView) float32 {
	var score, total float32
	for _, w := range compatibilityWeights {
		sim := 1 - abs32(w.pick(self.Genes)-w.pick(other.Genes))
		score += w.weight * sim
		total += w.weight
	}
	if self.TribeID != "" && self.TribeID == other.TribeID {
		score += 0.08
		total += 0.08
	}
	if self.Stage == other.Stage {
		score += 0.06
		total += 0.06
	}
	if self.Role != "" && self.Role == other.Role {
		score += 0.06
		total += 0.06
	}
	return clampNeed(score / total)
}

// physicalWeights is the symmetric preference table over appearance traits.
var physicalWeights = []struct {
	weight float32
	pick   func(g *GeneProfile) float32
}{
	{0.20, func(g *GeneProfile) float32 { return g.FacialSymmetry }},
	{0.15, func(g *GeneProfile) float32 { return g.BodyProportion }},
	{0.12, func(g *GeneProfile) float32 { return g.SkinQuality }},
	{0.10, func(g *GeneProfile) float32 { return g.HairQuality }},
	{0.12, func(g *GeneProfile) float32 { return g.Height }},
	{0.12, func(g *GeneProfile) float32 { return g.MuscleTone }},
	{0.09, func(g *GeneProfile) float32 { return g.VoiceQuality }},
	{0.05, func(g *GeneProfile) float32 { return g.EyeColor }},
	{0.05, func(g *GeneProfile) float32 { return g.HairColor }},
}

var personalityWeights = []struct {
	weight float32
	pick   func(g *GeneProfile) float32
}{
	{0.30, func(g *GeneProfile) float32 { return g.Intelligence }},
	{0.25, func(g *GeneProfile) float32 { return g.SocialDrive }},
	{0.25, func(g *GeneProfile) float32 { return g.EmotionalDepth }},
	{0.20, func(g *GeneProfile) float32 { return g.Creativity }},
}

// Attraction scores how appealing other looks to self: 0.6 physical plus 0.4
// personality, both weighted averages of other's traits.
func Attraction(self, other PeerView) float32 {
	var phys, pw float32
	for _, w := range physicalWeights {
		phys += w.weight * w.pick(other.Genes)
		pw += w.weight
	}
	var pers, sw float32
	for _, w := range personalityWeights {
		pers += w.weight * w.pick(other.Genes)
		sw += w.weight
	}
	return clampNeed(0.6*(phys/pw) + 0.4*(pers/sw))
}

// SharedInterests measures overlap between two agents' inner lives: discovered
// concepts, understanding similarity, philosophical leanings, and felt
// emotions, weighted 0.3/0.3/0.2/0.2 and renormalized by whichever components
// are actually present.
func SharedInterests(self, other PeerView) float32 {
	var score, total float32

	if len(self.Concepts) > 0 && len(other.Concepts) > 0 {
		score += 0.3 * overlap(self.Concepts, other.Concepts)
		total += 0.3
	}

	score += 0.3 * (1 - abs32(self.Understanding-other.Understanding))
	total += 0.3

	score += 0.2 * (1 - abs32(self.Genes.PhilosophicalTendency-other.Genes.PhilosophicalTendency))
	total += 0.2

	if len(self.FeltConcepts) > 0 && len(other.FeltConcepts) > 0 {
		score += 0.2 * overlap(self.FeltConcepts, other.FeltConcepts)
		total += 0.2
	}

	return clampNeed(score / total)
}

// overlap is |a ∩ b| / min(|a|, |b|).
func overlap(a, b map[string]struct{}) float32 {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	if len(small) == 0 {
		return 0
	}
	n := 0
	for k := range small {
		if _, ok := big[k]; ok {
			n++
		}
	}
	return float32(n) / float32(len(small))
}

// AcceptanceChance is the probability a courtship advance is accepted.
func AcceptanceChance(attraction, compatibility float32) float64 {
	return float64(0.6*attraction + 0.4*compatibility)
}

// RelationshipGraph is one agent's set of relationship entries keyed by the
// other agent's id.
type RelationshipGraph struct {
	Entries map[AgentID]*Relationship `json:"entries"`
}

// NewRelationshipGraph returns an empty graph.
func NewRelationshipGraph() RelationshipGraph {
	return RelationshipGraph{Entries: make(map[AgentID]*Relationship)}
}

// Get returns the entry for other, or nil if never met.
func (r *RelationshipGraph) Get(other AgentID) *Relationship {
	return r.Entries[other]
}

// Update recomputes the derived scores for the pair and drifts trust and
// affection toward them. Creates the entry on first encounter.
func (r *RelationshipGraph) Update(self, other PeerView, tick uint64, dtHours float64) *Relationship {
	if r.Entries == nil {
		r.Entries = make(map[AgentID]*Relationship)
	}
	rel, ok := r.Entries[other.ID]
	if !ok {
		rel = &Relationship{Kind: RelationNeutral, Trust: 0.3}
		r.Entries[other.ID] = rel
		if len(r.Entries) > maxRelationships {
			r.prune()
		}
	}

	rel.Compatibility = Compatibility(self, other)
	rel.Attraction = Attraction(self, other)
	rel.SharedInterests = SharedInterests(self, other)
	rel.LastTick = tick

	// Affection drifts toward the blend of compatibility and shared
	// interests; trust follows affection more slowly.
	target := 0.6*rel.Compatibility + 0.4*rel.SharedInterests
	rate := float32(0.05 * dtHours)
	if rate > 1 {
		rate = 1
	}
	rel.Affection += (target - rel.Affection) * rate
	rel.Trust += (rel.Affection - rel.Trust) * rate * 0.5

	if rel.Kind == RelationNeutral && rel.Affection > 0.6 && rel.Trust > 0.5 {
		rel.Kind = RelationFriend
	}
	return rel
}

// RecordInteraction appends to the bounded per-entry history and applies the
// trust/affection delta of the interaction.
func (r *RelationshipGraph) RecordInteraction(other AgentID, event string, trustDelta, affectionDelta float32) {
	rel, ok := r.Entries[other]
	if !ok {
		return
	}
	rel.History = append(rel.History, event)
	if len(rel.History) > maxInteractions {
		rel.History = rel.History[len(rel.History)-maxInteractions:]
	}
	rel.Trust = clampNeed(rel.Trust + trustDelta)
	rel.Affection = clampNeed(rel.Affection + affectionDelta)
	if rel.Trust < 0.15 && rel.Kind != RelationMate && rel.Kind != RelationFamily {
		rel.Kind = RelationEnemy
	}
}

// MarkMate promotes the entry to a mate bond, creating it if needed. The
// scheduler calls this on both sides within the same tick.
func (r *RelationshipGraph) MarkMate(other AgentID, tick uint64) {
	if r.Entries == nil {
		r.Entries = make(map[AgentID]*Relationship)
	}
	rel, ok := r.Entries[other]
	if !ok {
		rel = &Relationship{}
		r.Entries[other] = rel
	}
	rel.Kind = RelationMate
	rel.LastTick = tick
	if rel.Affection < 0.7 {
		rel.Affection = 0.7
	}
	if rel.Trust < 0.6 {
		rel.Trust = 0.6
	}
}

// MarkFamily records a parent/child/sibling tie.
func (r *RelationshipGraph) MarkFamily(other AgentID, tick uint64) {
	if r.Entries == nil {
		r.Entries = make(map[AgentID]*Relationship)
	}
	rel, ok := r.Entries[other]
	if !ok {
		rel = &Relationship{Trust: 0.7, Affection: 0.8}
		r.Entries[other] = rel
	}
	rel.Kind = RelationFamily
	rel.LastTick = tick
}

// RomanticMatch reports whether this side of the pair is past the courtship
// bar. Both sides must pass before a bond can form.
func (rel *Relationship) RomanticMatch() bool {
	return rel != nil &&
		rel.Attraction > RomanticThreshold &&
		rel.Compatibility > RomanticThreshold &&
		rel.Kind != RelationFamily
}

// prune drops the least significant neutral entries to get back under the
// cap. Mates and family are never pruned.
func (r *RelationshipGraph) prune() {
	type scored struct {
		id    AgentID
		score float32
	}
	var candidates []scored
	for id, rel := range r.Entries {
		if rel.Kind == RelationMate || rel.Kind == RelationFamily {
			continue
		}
		candidates = append(candidates, scored{id, rel.Trust + rel.Affection})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	for _, c := range candidates {
		if len(r.Entries) <= maxRelationships {
			break
		}
		delete(r.Entries, c.id)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
