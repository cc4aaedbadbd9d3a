package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/genesis/internal/entropy"
	"github.com/talgya/genesis/internal/world"
)

func TestNewGeneProfileRange(t *testing.T) {
	src := entropy.New(42)
	g := NewGeneProfile(src)
	for _, tr := range g.traits() {
		assert.GreaterOrEqual(t, *tr, float32(0.3))
		assert.Less(t, *tr, float32(0.7))
	}
}

func TestInheritGenesMidpointWithMutation(t *testing.T) {
	mother := GeneProfile{}
	father := GeneProfile{}
	for _, tr := range mother.traits() {
		*tr = 0.2
	}
	for _, tr := range father.traits() {
		*tr = 0.8
	}

	src := entropy.New(7)
	child := InheritGenes(&mother, &father, src)
	for _, tr := range child.traits() {
		// Midpoint 0.5 ± 0.1 mutation.
		assert.InDelta(t, 0.5, *tr, 0.1+1e-6)
	}
}

func TestInheritGenesMotherOnly(t *testing.T) {
	mother := GeneProfile{}
	for _, tr := range mother.traits() {
		*tr = 0.6
	}
	child := InheritGenes(&mother, nil, entropy.New(3))
	for _, tr := range child.traits() {
		assert.InDelta(t, 0.6, *tr, 0.1+1e-6)
	}
}

func TestInheritGenesClamped(t *testing.T) {
	mother := GeneProfile{}
	for _, tr := range mother.traits() {
		*tr = 0.02
	}
	// Many seeds; mutation can push below zero, clamp must hold.
	for seed := int64(0); seed < 20; seed++ {
		child := InheritGenes(&mother, &mother, entropy.New(seed))
		for _, tr := range child.traits() {
			assert.GreaterOrEqual(t, *tr, float32(0))
			assert.LessOrEqual(t, *tr, float32(1))
		}
	}
}

func TestMutateStaysClamped(t *testing.T) {
	src := entropy.New(11)
	g := NewGeneProfile(src)
	for i := 0; i < 100; i++ {
		g.Mutate(0.5, src)
		for _, tr := range g.traits() {
			assert.GreaterOrEqual(t, *tr, float32(0))
			assert.LessOrEqual(t, *tr, float32(1))
		}
	}
}

func TestDriftStaysClamped(t *testing.T) {
	g := NewGeneProfile(entropy.New(5))
	g.Metabolism = 0.001
	hot := world.Climate{Temperature: 35, UVLevel: 0.9}
	for i := 0; i < 1000; i++ {
		g.Drift(hot, 24)
	}
	assert.GreaterOrEqual(t, g.Metabolism, float32(0))
	assert.LessOrEqual(t, g.DiseaseResistance, float32(1))
}
