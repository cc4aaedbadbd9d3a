package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/genesis/internal/world"
)

func TestEvaluateCrisisCalm(t *testing.T) {
	sev, kind, in := EvaluateCrisis(CrisisInputs{
		ResourceScarcity:  0.2,
		PopulationDensity: 0.1,
		ConflictLevel:     0.05,
	})
	assert.False(t, in)
	assert.Equal(t, CrisisNone, kind)
	assert.InDelta(t, 20.0, sev, 1e-9)
}

func TestEvaluateCrisisFamine(t *testing.T) {
	sev, kind, in := EvaluateCrisis(CrisisInputs{
		ResourceScarcity:  0.9,
		PopulationDensity: 0.3,
		ConflictLevel:     0.1,
	})
	require.True(t, in)
	assert.Equal(t, CrisisFamine, kind)
	assert.InDelta(t, 90.0, sev, 1e-9)
}

func TestEvaluateCrisisWarAndGeneral(t *testing.T) {
	_, kind, in := EvaluateCrisis(CrisisInputs{ConflictLevel: 0.85})
	require.True(t, in)
	assert.Equal(t, CrisisWar, kind)

	// Above the crisis threshold but no single input dominant.
	_, kind, in = EvaluateCrisis(CrisisInputs{
		ResourceScarcity:  0.75,
		PopulationDensity: 0.72,
		ConflictLevel:     0.71,
	})
	require.True(t, in)
	assert.Equal(t, CrisisGeneral, kind)
}

func TestEvaluateCrisisIsPure(t *testing.T) {
	in := CrisisInputs{ResourceScarcity: 0.83, PopulationDensity: 0.4, ConflictLevel: 0.2}
	s1, k1, c1 := EvaluateCrisis(in)
	for i := 0; i < 5; i++ {
		s2, k2, c2 := EvaluateCrisis(in)
		assert.Equal(t, s1, s2)
		assert.Equal(t, k1, k2)
		assert.Equal(t, c1, c2)
	}
}

func TestInputsFromAggregates(t *testing.T) {
	in := InputsFrom(world.Aggregates{
		AgentCount:      100,
		GlobalResources: 2000, // 100 agents want 10000 units
		ActiveConflicts: 5,
		WorldSize:       1000,
	})
	assert.InDelta(t, 0.8, in.ResourceScarcity, 1e-9)
	assert.InDelta(t, 0.1, in.PopulationDensity, 1e-9)
	assert.InDelta(t, 0.05, in.ConflictLevel, 1e-9)

	// Empty world is never in crisis.
	assert.Equal(t, CrisisInputs{}, InputsFrom(world.Aggregates{}))
}

func TestFamineHardensAgents(t *testing.T) {
	c := NewCrisisState(100)
	famine := world.Aggregates{
		AgentCount:      50,
		GlobalResources: 100, // near-total scarcity
		WorldSize:       1000,
	}

	for i := 0; i < 200; i++ {
		c.Update(famine)
	}

	assert.True(t, c.InCrisis)
	assert.Equal(t, CrisisFamine, c.Kind)
	assert.InDelta(t, 20.0, c.SurvivalInstinct, 1e-6)
	assert.InDelta(t, 20.0, c.Paranoia, 1e-6)
}

func TestInstinctCapsAtHundred(t *testing.T) {
	c := NewCrisisState(100)
	c.SurvivalInstinct = 99.95
	c.Paranoia = 99.95
	c.Update(world.Aggregates{AgentCount: 50, GlobalResources: 0, WorldSize: 1000})
	c.Update(world.Aggregates{AgentCount: 50, GlobalResources: 0, WorldSize: 1000})
	assert.Equal(t, 100.0, c.SurvivalInstinct)
	assert.Equal(t, 100.0, c.Paranoia)
}

func TestMayCommitCrimeGate(t *testing.T) {
	c := NewCrisisState(100)
	assert.False(t, c.MayCommitCrime(500), "calm agents never steal")

	c.SurvivalInstinct = 80
	assert.True(t, c.MayCommitCrime(500))

	c.RecordCrime(CrimeTheft, "", 500)
	assert.False(t, c.MayCommitCrime(550), "cooldown holds")
	assert.False(t, c.MayCommitCrime(600), "boundary tick still on cooldown")
	assert.True(t, c.MayCommitCrime(601))
}

func TestMoralCompromiseAccumulates(t *testing.T) {
	c := NewCrisisState(0)
	c.SurvivalInstinct = 90

	c.RecordCrime(CrimeTheft, "", 1)
	assert.Equal(t, 5.0, c.MoralCompromise)
	c.RecordCrime(CrimeAttackForFood, "victim-1", 2)
	assert.Equal(t, 15.0, c.MoralCompromise)
	c.RecordCrime(CrimeDomination, "victim-2", 3)
	assert.Equal(t, 30.0, c.MoralCompromise)
	c.RecordCrime(CrimeRandomViolence, "", 4)
	assert.Equal(t, 50.0, c.MoralCompromise)

	for i := 0; i < 10; i++ {
		c.RecordCrime(CrimeRandomViolence, "", uint64(5+i))
	}
	assert.Equal(t, 100.0, c.MoralCompromise)
	assert.Len(t, c.Crimes, 14)
}
