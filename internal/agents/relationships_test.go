package agents

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewWith(id AgentID, g *GeneProfile) PeerView {
	return PeerView{ID: id, Genes: g, Stage: StageAdult, Understanding: 0.5}
}

func TestCompatibilityOfTwins(t *testing.T) {
	g := GeneProfile{Intelligence: 0.6, SocialDrive: 0.5, EmotionalDepth: 0.7,
		Creativity: 0.4, PhilosophicalTendency: 0.5, CulturalSensitivity: 0.5}
	a := viewWith("a", &g)
	b := viewWith("b", &g)

	// Identical traits, shared stage bonus: compatibility is maximal.
	assert.InDelta(t, 1.0, float64(Compatibility(a, b)), 1e-5)
}

func TestCompatibilityFallsWithDistance(t *testing.T) {
	ga := GeneProfile{Intelligence: 0.9, SocialDrive: 0.9, EmotionalDepth: 0.9}
	gb := GeneProfile{Intelligence: 0.1, SocialDrive: 0.1, EmotionalDepth: 0.1}
	gc := GeneProfile{Intelligence: 0.8, SocialDrive: 0.8, EmotionalDepth: 0.8}

	a := viewWith("a", &ga)
	far := viewWith("b", &gb)
	near := viewWith("c", &gc)

	assert.Greater(t, Compatibility(a, near), Compatibility(a, far))
}

func TestSharedTribeRaisesCompatibility(t *testing.T) {
	ga := GeneProfile{Intelligence: 0.9}
	gb := GeneProfile{Intelligence: 0.2}
	a := viewWith("a", &ga)
	b := viewWith("b", &gb)

	base := Compatibility(a, b)
	a.TribeID, b.TribeID = "river", "river"
	assert.Greater(t, Compatibility(a, b), base)
}

func TestAttractionWeighsPhysicalOverPersonality(t *testing.T) {
	handsome := GeneProfile{FacialSymmetry: 1, BodyProportion: 1, SkinQuality: 1,
		HairQuality: 1, Height: 1, MuscleTone: 1, VoiceQuality: 1, EyeColor: 1, HairColor: 1}
	brilliant := GeneProfile{Intelligence: 1, SocialDrive: 1, EmotionalDepth: 1, Creativity: 1}

	self := viewWith("self", &GeneProfile{})
	assert.InDelta(t, 0.6, float64(Attraction(self, viewWith("h", &handsome))), 1e-5)
	assert.InDelta(t, 0.4, float64(Attraction(self, viewWith("b", &brilliant))), 1e-5)
}

func TestSharedInterestsRenormalizes(t *testing.T) {
	ga := GeneProfile{PhilosophicalTendency: 0.5}
	gb := GeneProfile{PhilosophicalTendency: 0.5}
	a := viewWith("a", &ga)
	b := viewWith("b", &gb)

	// No concept sets yet: only understanding and philosophy components
	// count, both perfectly matched.
	assert.InDelta(t, 1.0, float64(SharedInterests(a, b)), 1e-5)

	a.Concepts = map[string]struct{}{"fire": {}, "river": {}}
	b.Concepts = map[string]struct{}{"fire": {}, "stone": {}}
	s := SharedInterests(a, b)
	assert.Less(t, s, float32(1))
	assert.Greater(t, s, float32(0.5))
}

func TestAcceptanceChanceBlend(t *testing.T) {
	assert.InDelta(t, 0.8, AcceptanceChance(0.8, 0.8), 1e-9)
	assert.InDelta(t, 0.6*0.9+0.4*0.5, AcceptanceChance(0.9, 0.5), 1e-6)
}

func TestUpdateCreatesAndDrifts(t *testing.T) {
	g := GeneProfile{Intelligence: 0.6, SocialDrive: 0.6, EmotionalDepth: 0.6,
		PhilosophicalTendency: 0.5}
	graph := NewRelationshipGraph()
	self := viewWith("self", &g)
	other := viewWith("other", &g)

	rel := graph.Update(self, other, 1, 1)
	require.NotNil(t, rel)
	assert.Equal(t, RelationNeutral, rel.Kind)

	// Repeated contact with a highly compatible peer becomes friendship.
	for i := 0; i < 200; i++ {
		rel = graph.Update(self, other, uint64(i+2), 1)
	}
	assert.Equal(t, RelationFriend, rel.Kind)
	assert.Greater(t, rel.Affection, float32(0.6))
}

func TestRecordInteractionHistoryBounded(t *testing.T) {
	g := GeneProfile{}
	graph := NewRelationshipGraph()
	graph.Update(viewWith("self", &g), viewWith("other", &g), 1, 1)

	for i := 0; i < maxInteractions*2; i++ {
		graph.RecordInteraction("other", fmt.Sprintf("talked %d", i), 0.01, 0.01)
	}
	rel := graph.Get("other")
	require.NotNil(t, rel)
	assert.Len(t, rel.History, maxInteractions)
	assert.Equal(t, fmt.Sprintf("talked %d", maxInteractions*2-1), rel.History[len(rel.History)-1])
}

func TestBetrayalTurnsEnemy(t *testing.T) {
	g := GeneProfile{}
	graph := NewRelationshipGraph()
	graph.Update(viewWith("self", &g), viewWith("other", &g), 1, 1)

	graph.RecordInteraction("other", "stole my food", -0.5, -0.5)
	assert.Equal(t, RelationEnemy, graph.Get("other").Kind)
}

func TestMarkMateSymmetricCommit(t *testing.T) {
	ga := NewRelationshipGraph()
	gb := NewRelationshipGraph()

	// The scheduler applies both sides in the same tick.
	ga.MarkMate("b", 100)
	gb.MarkMate("a", 100)

	assert.Equal(t, RelationMate, ga.Get("b").Kind)
	assert.Equal(t, RelationMate, gb.Get("a").Kind)
	assert.GreaterOrEqual(t, ga.Get("b").Affection, float32(0.7))
}

func TestRomanticMatchThreshold(t *testing.T) {
	rel := &Relationship{Attraction: 0.8, Compatibility: 0.8}
	assert.True(t, rel.RomanticMatch())

	rel.Compatibility = 0.7 // not strictly greater
	assert.False(t, rel.RomanticMatch())

	rel.Compatibility = 0.9
	rel.Kind = RelationFamily
	assert.False(t, rel.RomanticMatch())
}

func TestPruneKeepsMatesAndFamily(t *testing.T) {
	g := GeneProfile{}
	graph := NewRelationshipGraph()
	self := viewWith("self", &g)

	graph.MarkMate("mate", 1)
	graph.MarkFamily("child", 1)
	for i := 0; i < maxRelationships+10; i++ {
		graph.Update(self, viewWith(AgentID(fmt.Sprintf("peer-%03d", i)), &g), 1, 0.1)
	}

	assert.LessOrEqual(t, len(graph.Entries), maxRelationships)
	assert.NotNil(t, graph.Get("mate"))
	assert.NotNil(t, graph.Get("child"))
	assert.Equal(t, RelationMate, graph.Get("mate").Kind)
}
