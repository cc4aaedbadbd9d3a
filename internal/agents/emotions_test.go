package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/genesis/internal/entropy"
)

func TestProcessExperienceTriggers(t *testing.T) {
	e := NewEmotionState()
	src := entropy.New(42)

	created := e.ProcessExperience("witnessed a death in the valley", EmotionContext{EmotionalDepth: 0.5}, src)
	require.NotEmpty(t, created)

	assert.Contains(t, e.Active, EmotionSadness)
	assert.Contains(t, e.Active, EmotionExistentialDread)
	assert.Greater(t, e.ExistentialCrisis, float32(0))
}

func TestDecayIsMonotonic(t *testing.T) {
	e := NewEmotionState()
	src := entropy.New(1)
	e.ProcessExperience("a birth in the tribe", EmotionContext{}, src)
	require.Contains(t, e.Active, EmotionJoy)

	prev := e.Active[EmotionJoy].Intensity
	prevDur := e.Active[EmotionJoy].Duration
	for i := 0; i < 50; i++ {
		e.Decay(0.1)
		em, ok := e.Active[EmotionJoy]
		if !ok {
			return // removed once intensity or duration ran out
		}
		assert.LessOrEqual(t, em.Intensity, prev)
		assert.Less(t, em.Duration, prevDur)
		prev, prevDur = em.Intensity, em.Duration
	}
}

func TestEmotionRemovedAtFloor(t *testing.T) {
	e := NewEmotionState()
	e.addEmotion(Emotion{Type: EmotionFear, Intensity: 0.15, Duration: 10})
	e.Decay(1) // intensity drops by 0.1 → 0.05 < floor
	assert.NotContains(t, e.Active, EmotionFear)
}

func TestStabilityFallsUnderNegativeLoad(t *testing.T) {
	e := NewEmotionState()
	e.addEmotion(Emotion{Type: EmotionSadness, Intensity: 0.9, Duration: 100})
	e.addEmotion(Emotion{Type: EmotionFear, Intensity: 0.9, Duration: 100})
	e.addEmotion(Emotion{Type: EmotionDespair, Intensity: 0.9, Duration: 100})

	before := e.Stability
	e.Decay(1)
	assert.Less(t, e.Stability, before)

	// Recovery once the load clears.
	e.Active = map[EmotionType]*Emotion{}
	low := e.Stability
	e.Decay(1)
	assert.Greater(t, e.Stability, low)
	assert.LessOrEqual(t, e.Stability, float32(1))
}

func TestSuicidalTendencyTracksDread(t *testing.T) {
	e := NewEmotionState()
	e.addEmotion(Emotion{Type: EmotionExistentialDread, Intensity: 0.9, Duration: 100})

	before := e.SuicidalTendency
	e.Decay(1)
	assert.Greater(t, e.SuicidalTendency, before)

	e.Active = map[EmotionType]*Emotion{}
	high := e.SuicidalTendency
	e.Decay(1)
	assert.Less(t, e.SuicidalTendency, high)
}

func TestUpliftReducesDespair(t *testing.T) {
	e := NewEmotionState()
	e.SuicidalTendency = 0.9
	e.ExistentialCrisis = 0.9

	e.ProcessExperience("found new hope in the harvest", EmotionContext{}, entropy.New(3))
	assert.InDelta(t, 0.7, e.SuicidalTendency, 1e-5)
	assert.InDelta(t, 0.8, e.ExistentialCrisis, 1e-5)
}

func TestTerminalDespairRequiresNoAnchor(t *testing.T) {
	e := NewEmotionState()
	e.SuicidalTendency = 0.9
	e.ExistentialCrisis = 0.9

	// No protective factor: fires.
	assert.True(t, e.TerminalDespair(ProtectiveFactors{}))

	// A mate is enough to hold it back.
	assert.False(t, e.TerminalDespair(ProtectiveFactors{HasMate: true}))
	assert.False(t, e.TerminalDespair(ProtectiveFactors{RecentPositiveMemory: true}))

	// Below threshold on either axis: never fires.
	e.SuicidalTendency = 0.75
	assert.False(t, e.TerminalDespair(ProtectiveFactors{}))
}

func TestTerminalDespairDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		e := NewEmotionState()
		e.SuicidalTendency = 0.85
		e.ExistentialCrisis = 0.85
		assert.True(t, e.TerminalDespair(ProtectiveFactors{}))
	}
}

func TestIntensityScalesWithDepthAndRecency(t *testing.T) {
	shallow := NewEmotionState()
	deep := NewEmotionState()

	// Same seed → same base roll; depth must push intensity higher.
	shallow.ProcessExperience("a child was born", EmotionContext{EmotionalDepth: 0}, entropy.New(9))
	deep.ProcessExperience("a child was born", EmotionContext{EmotionalDepth: 1}, entropy.New(9))

	require.Contains(t, shallow.Active, EmotionJoy)
	require.Contains(t, deep.Active, EmotionJoy)
	assert.Greater(t, deep.Active[EmotionJoy].Intensity, shallow.Active[EmotionJoy].Intensity)
}

func TestMoodBalance(t *testing.T) {
	e := NewEmotionState()
	assert.Equal(t, float32(0), e.Mood())

	e.addEmotion(Emotion{Type: EmotionJoy, Intensity: 0.8, Duration: 5})
	assert.Greater(t, e.Mood(), float32(0))

	e.addEmotion(Emotion{Type: EmotionDespair, Intensity: 0.9, Duration: 5})
	e.addEmotion(Emotion{Type: EmotionSadness, Intensity: 0.9, Duration: 5})
	assert.Less(t, e.Mood(), float32(0))
}
