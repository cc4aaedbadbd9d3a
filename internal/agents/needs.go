// NeedsVector tracks physiological and psychological needs on a 0–1 scale.
// Satisfaction needs (hunger, thirst, rest, hygiene) decay toward 0 over time;
// urgency needs (bladder, bowel, reproduction urge) climb toward 1.
package agents

// NeedKind enumerates the needs the action selector can respond to.
type NeedKind uint8

const (
	NeedHunger NeedKind = iota
	NeedThirst
	NeedRest
	NeedHygiene
	NeedBladder
	NeedBowel
	NeedSocial
	NeedSafety
	NeedReproductionUrge
	NeedCreativeExpression
	NeedPhilosophicalExpression
	NeedEmotionalExpression
	NeedPurpose
	NeedUnderstanding
)

// NeedsVector holds every need. 1.0 means fully satisfied for satisfaction
// needs and fully urgent for bladder/bowel/reproduction urge.
type NeedsVector struct {
	Hunger  float32 `json:"hunger"`
	Thirst  float32 `json:"thirst"`
	Rest    float32 `json:"rest"`
	Hygiene float32 `json:"hygiene"`

	Bladder          float32 `json:"bladder"`
	Bowel            float32 `json:"bowel"`
	ReproductionUrge float32 `json:"reproduction_urge"`

	Social float32 `json:"social"`
	Safety float32 `json:"safety"`

	CreativeExpression      float32 `json:"creative_expression"`
	PhilosophicalExpression float32 `json:"philosophical_expression"`
	EmotionalExpression     float32 `json:"emotional_expression"`
	Purpose                 float32 `json:"purpose"`
	Understanding           float32 `json:"understanding"`
}

// NewNeedsVector starts an agent fully satisfied with empty bladder/bowel.
func NewNeedsVector() NeedsVector {
	return NeedsVector{
		Hunger: 1, Thirst: 1, Rest: 1, Hygiene: 1,
		Social: 1, Safety: 1,
		CreativeExpression: 1, PhilosophicalExpression: 1, EmotionalExpression: 1,
		Purpose: 1, Understanding: 1,
	}
}

// AdvanceFlags carries the agent context the decay rates depend on.
type AdvanceFlags struct {
	HasTribe    bool
	HasMate     bool
	IsAdult     bool
	UnderThreat bool

	CreativityGene    float32
	PhilosophicalGene float32
	EmotionalGene     float32
	Metabolism        float32
}

// Per-simulated-hour rates.
const (
	hungerRate       = 0.10
	thirstRate       = 0.20
	restRate         = 0.05
	hygieneRate      = 0.005
	bladderRate      = 0.02
	bowelRate        = 0.01
	reproUrgeRate    = 0.001
	socialRate       = 0.10
	safetyRate       = 0.15
	safetyRecovery   = 0.02
	expressionRate   = 0.05
	expressionGate   = 0.7
	criticalLevel    = 0.3
	urgentLevel      = 0.8
)

// Advance decays the vector by dt simulated hours. Hunger and thirst scale
// with metabolism. Social and expression needs only decay when the gating
// gene or isolation condition applies; safety erodes under threat and
// recovers otherwise. Everything clamps to [0, 1].
func (n *NeedsVector) Advance(flags AdvanceFlags, dtHours float64) {
	dt := float32(dtHours)
	meta := flags.Metabolism

	n.Hunger = clampNeed(n.Hunger - hungerRate*meta*dt)
	n.Thirst = clampNeed(n.Thirst - thirstRate*meta*dt)
	n.Rest = clampNeed(n.Rest - restRate*dt)
	n.Hygiene = clampNeed(n.Hygiene - hygieneRate*dt)

	n.Bladder = clampNeed(n.Bladder + bladderRate*dt)
	n.Bowel = clampNeed(n.Bowel + bowelRate*dt)
	n.ReproductionUrge = clampNeed(n.ReproductionUrge + reproUrgeRate*dt)

	if !flags.HasTribe && !flags.HasMate {
		n.Social = clampNeed(n.Social - socialRate*dt)
	}
	if flags.UnderThreat {
		n.Safety = clampNeed(n.Safety - safetyRate*dt)
	} else {
		n.Safety = clampNeed(n.Safety + safetyRecovery*dt)
	}
	if flags.CreativityGene > expressionGate {
		n.CreativeExpression = clampNeed(n.CreativeExpression - expressionRate*dt)
	}
	if flags.PhilosophicalGene > expressionGate {
		n.PhilosophicalExpression = clampNeed(n.PhilosophicalExpression - expressionRate*dt)
	}
	if flags.EmotionalGene > expressionGate {
		n.EmotionalExpression = clampNeed(n.EmotionalExpression - expressionRate*dt)
	}
	if flags.IsAdult && !flags.HasMate {
		n.ReproductionUrge = clampNeed(n.ReproductionUrge + expressionRate*dt)
	}
}

// Satisfy raises a need by amount, clamped to 1.
func (n *NeedsVector) Satisfy(kind NeedKind, amount float32) {
	p := n.field(kind)
	*p = clampNeed(*p + amount)
}

// Relieve zeroes an urgency need (bathroom use).
func (n *NeedsVector) Relieve(kind NeedKind) {
	*n.field(kind) = 0
}

// Critical returns the set of needs past their urgent threshold: satisfaction
// needs below 0.3, urgency needs above 0.8. The action selector consumes this
// directly instead of scraping log output.
func (n *NeedsVector) Critical() map[NeedKind]float32 {
	out := make(map[NeedKind]float32)
	low := func(k NeedKind, v float32) {
		if v < criticalLevel {
			out[k] = v
		}
	}
	low(NeedHunger, n.Hunger)
	low(NeedThirst, n.Thirst)
	low(NeedRest, n.Rest)
	low(NeedHygiene, n.Hygiene)
	low(NeedSocial, n.Social)
	low(NeedSafety, n.Safety)
	low(NeedCreativeExpression, n.CreativeExpression)
	low(NeedPhilosophicalExpression, n.PhilosophicalExpression)
	low(NeedEmotionalExpression, n.EmotionalExpression)

	if n.Bladder > urgentLevel {
		out[NeedBladder] = n.Bladder
	}
	if n.Bowel > urgentLevel {
		out[NeedBowel] = n.Bowel
	}
	return out
}

// Clamp forces every field back into [0, 1].
func (n *NeedsVector) Clamp() {
	for _, k := range []NeedKind{
		NeedHunger, NeedThirst, NeedRest, NeedHygiene, NeedBladder, NeedBowel,
		NeedSocial, NeedSafety, NeedReproductionUrge, NeedCreativeExpression,
		NeedPhilosophicalExpression, NeedEmotionalExpression, NeedPurpose,
		NeedUnderstanding,
	} {
		p := n.field(k)
		*p = clampNeed(*p)
	}
}

func (n *NeedsVector) field(kind NeedKind) *float32 {
	switch kind {
	case NeedHunger:
		return &n.Hunger
	case NeedThirst:
		return &n.Thirst
	case NeedRest:
		return &n.Rest
	case NeedHygiene:
		return &n.Hygiene
	case NeedBladder:
		return &n.Bladder
	case NeedBowel:
		return &n.Bowel
	case NeedSocial:
		return &n.Social
	case NeedSafety:
		return &n.Safety
	case NeedReproductionUrge:
		return &n.ReproductionUrge
	case NeedCreativeExpression:
		return &n.CreativeExpression
	case NeedPhilosophicalExpression:
		return &n.PhilosophicalExpression
	case NeedEmotionalExpression:
		return &n.EmotionalExpression
	case NeedPurpose:
		return &n.Purpose
	default:
		return &n.Understanding
	}
}

func clampNeed(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
