package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultFlags() AdvanceFlags {
	return AdvanceFlags{Metabolism: 1.0}
}

func TestAdvanceStaysInBounds(t *testing.T) {
	n := NewNeedsVector()
	flags := AdvanceFlags{
		HasTribe: false, HasMate: false, IsAdult: true,
		CreativityGene: 0.9, PhilosophicalGene: 0.9, Metabolism: 1.5,
	}

	// Many successive advances with varying dt never leave [0,1].
	for i := 0; i < 500; i++ {
		n.Advance(flags, float64(i%7))
		for kind := NeedHunger; kind <= NeedUnderstanding; kind++ {
			v := *n.field(kind)
			assert.GreaterOrEqual(t, v, float32(0), "kind %d", kind)
			assert.LessOrEqual(t, v, float32(1), "kind %d", kind)
		}
	}
}

func TestHungerDecayClampsAtZero(t *testing.T) {
	// hunger 0.9, dt = 10h, metabolism 1.0 → 0.9 - 1.0 clamps to 0, never negative.
	n := NewNeedsVector()
	n.Hunger = 0.9
	n.Advance(defaultFlags(), 10)
	assert.Equal(t, float32(0), n.Hunger)
}

func TestUrgencyNeedsOnlyClimb(t *testing.T) {
	n := NewNeedsVector()
	prevBladder, prevBowel, prevUrge := n.Bladder, n.Bowel, n.ReproductionUrge

	for i := 0; i < 100; i++ {
		n.Advance(defaultFlags(), 1)
		assert.GreaterOrEqual(t, n.Bladder, prevBladder)
		assert.GreaterOrEqual(t, n.Bowel, prevBowel)
		assert.GreaterOrEqual(t, n.ReproductionUrge, prevUrge)
		prevBladder, prevBowel, prevUrge = n.Bladder, n.Bowel, n.ReproductionUrge
	}
}

func TestSocialDecayGatedOnIsolation(t *testing.T) {
	lonely := NewNeedsVector()
	bonded := NewNeedsVector()

	lonely.Advance(AdvanceFlags{Metabolism: 1}, 2)
	bonded.Advance(AdvanceFlags{HasMate: true, Metabolism: 1}, 2)

	assert.Less(t, lonely.Social, float32(1))
	assert.Equal(t, float32(1), bonded.Social)
}

func TestExpressionDecayGatedOnGene(t *testing.T) {
	n := NewNeedsVector()
	n.Advance(AdvanceFlags{CreativityGene: 0.5, Metabolism: 1}, 5)
	assert.Equal(t, float32(1), n.CreativeExpression)

	n.Advance(AdvanceFlags{CreativityGene: 0.8, Metabolism: 1}, 5)
	assert.Less(t, n.CreativeExpression, float32(1))
}

func TestSafetyDecaysOnlyUnderThreat(t *testing.T) {
	calm := NewNeedsVector()
	threatened := NewNeedsVector()

	calm.Advance(AdvanceFlags{Metabolism: 1}, 2)
	threatened.Advance(AdvanceFlags{UnderThreat: true, Metabolism: 1}, 2)

	assert.Equal(t, float32(1), calm.Safety)
	assert.Less(t, threatened.Safety, float32(1))

	// Threat lifted: safety creeps back up.
	before := threatened.Safety
	threatened.Advance(AdvanceFlags{Metabolism: 1}, 2)
	assert.Greater(t, threatened.Safety, before)
}

func TestCriticalSet(t *testing.T) {
	n := NewNeedsVector()
	n.Hunger = 0.2
	n.Bladder = 0.85
	n.Hygiene = 0.31 // just above threshold

	crit := n.Critical()
	assert.Contains(t, crit, NeedHunger)
	assert.Contains(t, crit, NeedBladder)
	assert.NotContains(t, crit, NeedHygiene)
	assert.NotContains(t, crit, NeedThirst)
}

func TestSatisfyClampsAtOne(t *testing.T) {
	n := NewNeedsVector()
	n.Hunger = 0.9
	n.Satisfy(NeedHunger, 0.5)
	assert.Equal(t, float32(1), n.Hunger)

	n.Bladder = 0.9
	n.Relieve(NeedBladder)
	assert.Equal(t, float32(0), n.Bladder)
}
