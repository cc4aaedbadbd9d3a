// Life cycle: age-driven stage transitions, the pregnancy state machine, and
// death determination. Stages only ever move forward; death is terminal.
package agents

import (
	"github.com/talgya/genesis/internal/entropy"
)

// LifeStage is a monotonic function of age.
type LifeStage string

const (
	StageInfant     LifeStage = "infant"
	StageChild      LifeStage = "child"
	StageAdolescent LifeStage = "adolescent"
	StageAdult      LifeStage = "adult"
	StageElder      LifeStage = "elder"
)

// Stage boundaries in years.
const (
	childAge      = 2
	adolescentAge = 12
	adultAge      = 18
	elderAge      = 50
)

// StageForAge maps age in years onto a life stage.
func StageForAge(ageYears float64) LifeStage {
	switch {
	case ageYears < childAge:
		return StageInfant
	case ageYears < adolescentAge:
		return StageChild
	case ageYears < adultAge:
		return StageAdolescent
	case ageYears < elderAge:
		return StageAdult
	default:
		return StageElder
	}
}

// PregnancyStage is the trimester sub-state machine.
type PregnancyStage string

const (
	FirstTrimester  PregnancyStage = "first_trimester"
	SecondTrimester PregnancyStage = "second_trimester"
	ThirdTrimester  PregnancyStage = "third_trimester"
	ReadyForBirth   PregnancyStage = "ready_for_birth"
)

// Trimester boundaries in gestation days.
const (
	secondTrimesterDay = 90
	thirdTrimesterDay  = 180
	gestationDays      = 270
)

// Pregnancy tracks an active gestation on the mother.
type Pregnancy struct {
	StartTick uint64         `json:"start_tick"`
	FatherID  AgentID        `json:"father_id,omitempty"`
	Stage     PregnancyStage `json:"stage"`
	Health    float32        `json:"health"`    // fetal health 0–1
	Nutrition float32        `json:"nutrition"` // mother's recent intake
	Stress    float32        `json:"stress"`
}

// NewPregnancy starts a gestation at conception.
func NewPregnancy(tick uint64, father AgentID) *Pregnancy {
	return &Pregnancy{
		StartTick: tick,
		FatherID:  father,
		Stage:     FirstTrimester,
		Health:    1,
		Nutrition: 0.7,
	}
}

// Advance moves the trimester machine forward and adjusts fetal health from
// the mother's condition. Returns true when gestation is complete.
func (p *Pregnancy) Advance(tick uint64, motherHunger, motherHealth float32, dtHours float64) (ready bool) {
	days := float64(tick-p.StartTick) / 86400
	switch {
	case days >= gestationDays:
		p.Stage = ReadyForBirth
	case days >= thirdTrimesterDay:
		p.Stage = ThirdTrimester
	case days >= secondTrimesterDay:
		p.Stage = SecondTrimester
	default:
		p.Stage = FirstTrimester
	}

	rate := float32(0.001 * dtHours)
	p.Nutrition = clampNeed(p.Nutrition + (motherHunger-p.Nutrition)*rate*10)
	if motherHunger < 0.3 || motherHealth < 0.5 {
		p.Health = clampNeed(p.Health - rate)
		p.Stress = clampNeed(p.Stress + rate)
	} else {
		p.Health = clampNeed(p.Health + rate*0.5)
		p.Stress = clampNeed(p.Stress - rate*0.5)
	}

	return p.Stage == ReadyForBirth
}

// DeathCause names what killed an agent.
type DeathCause string

const (
	DeathOldAge     DeathCause = "old_age"
	DeathStarvation DeathCause = "starvation"
	DeathThirst     DeathCause = "thirst"
	DeathIllness    DeathCause = "illness"
	DeathViolence   DeathCause = "violence"
	DeathDespair    DeathCause = "despair"
	DeathMisfortune DeathCause = "misfortune"
)

// MortalityCheck holds the slice of agent state death evaluation reads.
type MortalityCheck struct {
	AgeYears float64
	Lifespan float64
	Health   float32
	Hunger   float32
	Thirst   float32
}

// ShouldDie evaluates the per-tick death triggers in a fixed order and
// returns the cause, or false when the agent survives the tick. The
// stochastic draw consumes exactly one random number so replay stays aligned.
func ShouldDie(m MortalityCheck, src *entropy.Source) (DeathCause, bool) {
	roll := src.Float()

	switch {
	case m.AgeYears > m.Lifespan:
		return DeathOldAge, true
	case m.Health <= 0:
		return DeathIllness, true
	case m.Hunger <= 0:
		return DeathStarvation, true
	case m.Thirst <= 0:
		return DeathThirst, true
	}

	if m.Lifespan <= 0 {
		return "", false
	}
	if roll < float64(1-m.Health)*(m.AgeYears/m.Lifespan) {
		return DeathMisfortune, true
	}
	return "", false
}

// ReproductionCheck holds both partners' state for the conception gate.
type ReproductionCheck struct {
	Stage     LifeStage
	Health    float32
	Hunger    float32
	Thirst    float32
	Pregnant  bool
	OnCooldown bool
}

// CanReproduce applies the per-partner preconditions.
func CanReproduce(c ReproductionCheck) bool {
	return c.Stage == StageAdult &&
		c.Health >= 0.7 &&
		c.Hunger >= 0.7 &&
		c.Thirst >= 0.7 &&
		!c.Pregnant &&
		!c.OnCooldown
}

// ConceptionChance is the average of both partners' health.
func ConceptionChance(healthA, healthB float32) float64 {
	return float64(healthA+healthB) / 2
}

// RollLifespan draws a lifespan in years from the longevity gene: base 60
// plus up to 30 from longevity, with a small random spread.
func RollLifespan(longevity float32, src *entropy.Source) float64 {
	return 60 + 30*float64(longevity) + src.Range(-5, 5)
}
