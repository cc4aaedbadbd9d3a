// The emotion engine converts experiences into active emotions with intensity
// decay, and tracks the derived scalars (stability, existential crisis,
// suicidal tendency) that gate the most consequential transitions in the
// simulation.
package agents

import (
	"math"
	"strings"

	"github.com/talgya/genesis/internal/entropy"
)

// EmotionType names an emotion an agent can feel.
type EmotionType string

const (
	// Basic.
	EmotionJoy      EmotionType = "joy"
	EmotionSadness  EmotionType = "sadness"
	EmotionAnger    EmotionType = "anger"
	EmotionFear     EmotionType = "fear"
	EmotionSurprise EmotionType = "surprise"
	EmotionDisgust  EmotionType = "disgust"

	// Social.
	EmotionLove     EmotionType = "love"
	EmotionHate     EmotionType = "hate"
	EmotionJealousy EmotionType = "jealousy"
	EmotionPride    EmotionType = "pride"
	EmotionShame    EmotionType = "shame"
	EmotionGuilt    EmotionType = "guilt"

	// Complex.
	EmotionNostalgia  EmotionType = "nostalgia"
	EmotionHope       EmotionType = "hope"
	EmotionDespair    EmotionType = "despair"
	EmotionWonder     EmotionType = "wonder"
	EmotionAwe        EmotionType = "awe"
	EmotionLoneliness EmotionType = "loneliness"

	// Philosophical.
	EmotionExistentialDread EmotionType = "existential_dread"
	EmotionTranscendence    EmotionType = "transcendence"
	EmotionMeaning          EmotionType = "meaning"
	EmotionPurpose          EmotionType = "purpose"
	EmotionConnection       EmotionType = "connection"
	EmotionSuicidal         EmotionType = "suicidal"
)

// negativeEmotions drags stability down when more than two are active.
var negativeEmotions = map[EmotionType]bool{
	EmotionSadness: true, EmotionAnger: true, EmotionFear: true,
	EmotionDisgust: true, EmotionHate: true, EmotionJealousy: true,
	EmotionShame: true, EmotionGuilt: true, EmotionDespair: true,
	EmotionLoneliness: true, EmotionExistentialDread: true, EmotionSuicidal: true,
}

// Emotion is one active emotional episode.
type Emotion struct {
	Type      EmotionType `json:"type"`
	Intensity float32     `json:"intensity"` // 0.0–1.0
	Source    string      `json:"source"`    // Trigger that caused it.
	Duration  float32     `json:"duration"`  // Hours remaining.
	Target    string      `json:"target,omitempty"`
}

// EmotionContext is the slice of agent state the intensity formula reads.
type EmotionContext struct {
	EmotionalDepth   float32
	AvgUnderstanding float32
}

// ProtectiveFactors are the anchors that keep an agent from the terminal
// self-harm transition even at peak despair.
type ProtectiveFactors struct {
	HasMate              bool
	HasChildren          bool
	HasTribe             bool
	RecentPositiveMemory bool
}

// Any reports whether at least one protective factor is present.
func (p ProtectiveFactors) Any() bool {
	return p.HasMate || p.HasChildren || p.HasTribe || p.RecentPositiveMemory
}

// Canonical despair thresholds. The consideration gate records a memory;
// the terminal gate requires both accumulators at 0.8 and no anchor.
const (
	DespairConsiderThreshold = 0.7
	DespairTerminalThreshold = 0.8
)

const maxEmotionHistory = 1000

// EmotionState holds an agent's active emotions, a bounded history, and the
// derived scalars.
type EmotionState struct {
	Active  map[EmotionType]*Emotion `json:"active"`
	History []EmotionType            `json:"history,omitempty"`

	Stability         float32 `json:"stability"`  // 0.0–1.0
	Resilience        float32 `json:"resilience"` // 0.0–1.0
	ExistentialCrisis float32 `json:"existential_crisis"`
	SuicidalTendency  float32 `json:"suicidal_tendency"`

	// Concepts this agent has felt strongly about; read by shared-interest
	// scoring.
	FeltConcepts map[string]struct{} `json:"felt_concepts,omitempty"`
}

// NewEmotionState starts an agent emotionally stable and untroubled.
func NewEmotionState() EmotionState {
	return EmotionState{
		Active:       make(map[EmotionType]*Emotion),
		Stability:    0.7,
		Resilience:   0.5,
		FeltConcepts: make(map[string]struct{}),
	}
}

type emotionTrigger struct {
	source string
	kind   EmotionType
}

// analyzeTriggers maps event text onto candidate emotions. Keyword matching,
// not NLP — the event vocabulary is controlled by the simulation itself.
func analyzeTriggers(event string) []emotionTrigger {
	ev := strings.ToLower(event)
	var out []emotionTrigger
	has := func(w string) bool { return strings.Contains(ev, w) }

	switch {
	case has("death") || has("died"):
		out = append(out,
			emotionTrigger{"death", EmotionSadness},
			emotionTrigger{"mortality", EmotionExistentialDread})
	case has("birth") || has("born"):
		out = append(out,
			emotionTrigger{"birth", EmotionJoy},
			emotionTrigger{"new_life", EmotionWonder})
	case has("danger") || has("attack"):
		out = append(out, emotionTrigger{"danger", EmotionFear})
	case has("betray"):
		out = append(out,
			emotionTrigger{"betrayal", EmotionAnger},
			emotionTrigger{"betrayal", EmotionSadness})
	}

	switch {
	case has("mate") || has("romantic"):
		out = append(out, emotionTrigger{"mating", EmotionLove})
	case has("competition") || has("rival"):
		out = append(out, emotionTrigger{"competition", EmotionJealousy})
	case has("achievement") || has("accomplish"):
		out = append(out, emotionTrigger{"achievement", EmotionPride})
	}

	switch {
	case has("purpose"):
		out = append(out, emotionTrigger{"purpose", EmotionMeaning})
	case has("connection"):
		out = append(out, emotionTrigger{"connection", EmotionConnection})
	case has("transcend"):
		out = append(out, emotionTrigger{"transcendence", EmotionTranscendence})
	}

	return out
}

var existentialWords = []string{"death", "meaningless", "pointless", "suffer", "pain"}
var suicidalWords = []string{"end it", "no reason", "too much", "can't go on"}
var upliftWords = []string{"hope", "love", "joy", "meaning", "purpose"}

// ProcessExperience turns an event into new active emotions and moves the
// despair accumulators. Deterministic given the same inputs and source.
func (e *EmotionState) ProcessExperience(event string, ctx EmotionContext, src *entropy.Source) []Emotion {
	if e.Active == nil {
		e.Active = make(map[EmotionType]*Emotion)
	}
	ev := strings.ToLower(event)

	var created []Emotion
	for _, tr := range analyzeTriggers(event) {
		intensity := e.intensityFor(tr, ctx, src)
		if intensity <= 0.1 {
			continue
		}
		em := Emotion{
			Type:      tr.kind,
			Intensity: intensity,
			Source:    tr.source,
			Duration:  float32(src.Range(0.5, 2.0)),
		}
		e.addEmotion(em)
		created = append(created, em)
	}

	for _, w := range existentialWords {
		if strings.Contains(ev, w) {
			e.addEmotion(Emotion{Type: EmotionExistentialDread, Intensity: 0.3, Source: w, Duration: 2})
			e.ExistentialCrisis = clampNeed(e.ExistentialCrisis + 0.2)
			break
		}
	}
	for _, w := range suicidalWords {
		if strings.Contains(ev, w) {
			e.addEmotion(Emotion{Type: EmotionSuicidal, Intensity: 0.4, Source: w, Duration: 2})
			e.SuicidalTendency = clampNeed(e.SuicidalTendency + 0.3)
			break
		}
	}
	for _, w := range upliftWords {
		if strings.Contains(ev, w) {
			e.SuicidalTendency = clampNeed(e.SuicidalTendency - 0.2)
			e.ExistentialCrisis = clampNeed(e.ExistentialCrisis - 0.1)
			break
		}
	}

	return created
}

// intensityFor applies the base-roll formula: U(0.3, 0.7) scaled by emotional
// depth, boosted by recency of same-type emotions and, for meaning-class
// emotions, by the agent's average understanding.
func (e *EmotionState) intensityFor(tr emotionTrigger, ctx EmotionContext, src *entropy.Source) float32 {
	intensity := float32(src.Range(0.3, 0.7))
	intensity *= 1 + ctx.EmotionalDepth

	recent := 0
	start := len(e.History) - 10
	if start < 0 {
		start = 0
	}
	for _, h := range e.History[start:] {
		if h == tr.kind {
			recent++
		}
	}
	intensity *= 1 + float32(recent)*0.1

	switch tr.kind {
	case EmotionMeaning, EmotionPurpose, EmotionExistentialDread:
		intensity *= 1 + ctx.AvgUnderstanding
	}

	return clampNeed(intensity)
}

// addEmotion installs or reinforces an active emotion and records history.
func (e *EmotionState) addEmotion(em Emotion) {
	if cur, ok := e.Active[em.Type]; ok {
		cur.Intensity = clampNeed(cur.Intensity + em.Intensity)
		if em.Duration > cur.Duration {
			cur.Duration = em.Duration
		}
	} else {
		copied := em
		e.Active[em.Type] = &copied
	}

	e.History = append(e.History, em.Type)
	if len(e.History) > maxEmotionHistory {
		e.History = e.History[len(e.History)-maxEmotionHistory:]
	}
	if e.FeltConcepts == nil {
		e.FeltConcepts = make(map[string]struct{})
	}
	e.FeltConcepts[string(em.Type)] = struct{}{}
}

// Decay advances active emotions by dt hours. Intensity and duration only
// ever fall here; an emotion is dropped when duration runs out or intensity
// falls below the floor. Stability erodes while more than two negative
// emotions are active and recovers otherwise.
func (e *EmotionState) Decay(dtHours float64) {
	dt := float32(dtHours)

	for kind, em := range e.Active {
		em.Duration -= dt
		em.Intensity -= 0.1 * dt
		if em.Intensity < 0 {
			em.Intensity = 0
		}
		if em.Duration <= 0 || em.Intensity < 0.1 {
			delete(e.Active, kind)
		}
	}

	negatives := 0
	for kind := range e.Active {
		if negativeEmotions[kind] {
			negatives++
		}
	}
	if negatives > 2 {
		e.Stability *= float32(math.Pow(0.95, dtHours))
	} else {
		e.Stability = clampNeed(e.Stability * float32(math.Pow(1.05, dtHours)))
	}

	if dread, ok := e.Active[EmotionExistentialDread]; ok && dread.Intensity > 0.7 {
		e.SuicidalTendency = clampNeed(e.SuicidalTendency + 0.1*dt)
	} else {
		e.SuicidalTendency = clampNeed(e.SuicidalTendency - 0.05*dt)
	}
}

// Dominant returns the strongest active emotion, or "" when calm.
func (e *EmotionState) Dominant() EmotionType {
	var best EmotionType
	var bestI float32 = -1
	for kind, em := range e.Active {
		if em.Intensity > bestI || (em.Intensity == bestI && kind < best) {
			best, bestI = kind, em.Intensity
		}
	}
	return best
}

// Mood maps the active emotion balance onto [-1, 1].
func (e *EmotionState) Mood() float32 {
	var pos, neg float32
	for kind, em := range e.Active {
		if negativeEmotions[kind] {
			neg += em.Intensity
		} else {
			pos += em.Intensity
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return (pos - neg) / total
}

// ConsideringSelfHarm reports whether despair has crossed the consideration
// gate — the agent dwells on it (and records a memory) but does not act.
func (e *EmotionState) ConsideringSelfHarm() bool {
	return e.SuicidalTendency > DespairConsiderThreshold &&
		e.ExistentialCrisis > DespairConsiderThreshold
}

// TerminalDespair reports whether the terminal self-harm transition fires:
// both accumulators at or past 0.8 with no protective factor. Pure function
// of state — the same inputs always produce the same answer.
func (e *EmotionState) TerminalDespair(p ProtectiveFactors) bool {
	if e.SuicidalTendency < DespairTerminalThreshold || e.ExistentialCrisis < DespairTerminalThreshold {
		return false
	}
	return !p.Any()
}
