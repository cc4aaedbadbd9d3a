package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSocialStateDerivesFromGenes(t *testing.T) {
	g := &GeneProfile{
		SocialDrive:         1,
		Strength:            1,
		Intelligence:        1,
		CulturalSensitivity: 1,
		VoiceQuality:        1,
	}
	s := NewSocialState(g)

	assert.Equal(t, 50.0, s.Reputation)
	assert.Equal(t, 40.0, s.PowerSeeking)
	assert.Equal(t, 30.0, s.ViolenceTolerance)
	assert.Equal(t, 50.0, s.LawPreference)
	assert.Equal(t, 50.0, s.Leadership)
}

func TestEnmitySeversFriendshipAndAlliance(t *testing.T) {
	s := NewSocialState(&GeneProfile{})
	s.AddFriend("a")
	s.AddAlly("a")
	s.AddEnemy("a")

	assert.Contains(t, s.Enemies, AgentID("a"))
	assert.NotContains(t, s.Friends, AgentID("a"))
	assert.NotContains(t, s.Allies, AgentID("a"))

	// And friendship clears enmity again.
	s.AddFriend("a")
	assert.NotContains(t, s.Enemies, AgentID("a"))
}

func TestForgetDropsAllReferences(t *testing.T) {
	s := NewSocialState(&GeneProfile{})
	s.AddFriend("dead")
	s.AddAlly("dead")
	s.Forget("dead")

	assert.Empty(t, s.Friends)
	assert.Empty(t, s.Allies)
}

func TestAdjustmentsClamp(t *testing.T) {
	s := NewSocialState(&GeneProfile{})
	s.AdjustReputation(200)
	assert.Equal(t, 100.0, s.Reputation)
	s.AdjustReputation(-500)
	assert.Equal(t, 0.0, s.Reputation)
	s.AdjustInfluence(150)
	assert.Equal(t, 100.0, s.Influence)
}

func TestHardenUnderCrisisShiftsTowardForce(t *testing.T) {
	s := NewSocialState(&GeneProfile{Strength: 0.5})
	before := s.ViolenceTolerance
	for i := 0; i < 48; i++ {
		s.HardenUnderCrisis(1)
	}
	assert.Greater(t, s.ViolenceTolerance, before)
	assert.LessOrEqual(t, s.ViolenceTolerance, 100.0)
}

func TestWantsLawsOnlyOnce(t *testing.T) {
	s := NewSocialState(&GeneProfile{})
	s.LawPreference = 80
	assert.True(t, s.WantsLaws())
	s.HasEstablishedLaws = true
	assert.False(t, s.WantsLaws())
}
