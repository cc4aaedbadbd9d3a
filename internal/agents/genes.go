// Package agents provides the per-agent data model: genes, needs, emotions,
// memory, relationships, social and crisis state, and the life cycle.
package agents

import (
	"github.com/talgya/genesis/internal/entropy"
	"github.com/talgya/genesis/internal/world"
)

// GeneProfile is an agent's inheritable trait vector. Every trait lives in
// [0, 1] and stays there through inheritance, mutation, and environmental
// drift.
type GeneProfile struct {
	// Core traits.
	Curiosity    float32 `json:"curiosity"`
	Strength     float32 `json:"strength"`
	Intelligence float32 `json:"intelligence"`
	SocialDrive  float32 `json:"social_drive"`
	Creativity   float32 `json:"creativity"`
	Adaptability float32 `json:"adaptability"`
	Stealth      float32 `json:"stealth"`

	// Advanced traits.
	PhilosophicalTendency float32 `json:"philosophical_tendency"`
	EmotionalDepth        float32 `json:"emotional_depth"`
	ExistentialAwareness  float32 `json:"existential_awareness"`
	CognitiveComplexity   float32 `json:"cognitive_complexity"`
	CulturalSensitivity   float32 `json:"cultural_sensitivity"`

	// Physiology.
	Fertility         float32 `json:"fertility"`
	Longevity         float32 `json:"longevity"`
	DiseaseResistance float32 `json:"disease_resistance"`
	Metabolism        float32 `json:"metabolism"`

	// Skills.
	AnimalAffinity float32 `json:"animal_affinity"`
	HuntingSkill   float32 `json:"hunting_skill"`
	TamingSkill    float32 `json:"taming_skill"`

	// Physical appearance (read by the attraction formula).
	FacialSymmetry float32 `json:"facial_symmetry"`
	BodyProportion float32 `json:"body_proportion"`
	SkinQuality    float32 `json:"skin_quality"`
	HairQuality    float32 `json:"hair_quality"`
	Height         float32 `json:"height"`
	MuscleTone     float32 `json:"muscle_tone"`
	VoiceQuality   float32 `json:"voice_quality"`
	EyeColor       float32 `json:"eye_color"`
	HairColor      float32 `json:"hair_color"`
}

// traits returns pointers to every trait in a fixed order, so inheritance and
// mutation iterate without reflection.
func (g *GeneProfile) traits() []*float32 {
	return []*float32{
		&g.Curiosity, &g.Strength, &g.Intelligence, &g.SocialDrive,
		&g.Creativity, &g.Adaptability, &g.Stealth,
		&g.PhilosophicalTendency, &g.EmotionalDepth, &g.ExistentialAwareness,
		&g.CognitiveComplexity, &g.CulturalSensitivity,
		&g.Fertility, &g.Longevity, &g.DiseaseResistance, &g.Metabolism,
		&g.AnimalAffinity, &g.HuntingSkill, &g.TamingSkill,
		&g.FacialSymmetry, &g.BodyProportion, &g.SkinQuality, &g.HairQuality,
		&g.Height, &g.MuscleTone, &g.VoiceQuality, &g.EyeColor, &g.HairColor,
	}
}

// NewGeneProfile rolls a fresh profile with every trait in U(0.3, 0.7).
func NewGeneProfile(src *entropy.Source) GeneProfile {
	var g GeneProfile
	for _, t := range g.traits() {
		*t = float32(src.Range(0.3, 0.7))
	}
	return g
}

// InheritGenes builds child genes as the per-trait midpoint of both parents
// (mother only when father is nil) plus a U(-0.1, 0.1) mutation, clamped.
func InheritGenes(mother *GeneProfile, father *GeneProfile, src *entropy.Source) GeneProfile {
	var child GeneProfile
	ct := child.traits()
	mt := mother.traits()

	var ft []*float32
	if father != nil {
		ft = father.traits()
	}

	for i := range ct {
		base := *mt[i]
		if ft != nil {
			base = (*mt[i] + *ft[i]) / 2
		}
		*ct[i] = clampTrait(base + float32(src.Range(-0.1, 0.1)))
	}
	return child
}

// Mutate perturbs each trait with the given per-trait probability.
func (g *GeneProfile) Mutate(rate float64, src *entropy.Source) {
	for _, t := range g.traits() {
		if src.Chance(rate) {
			*t = clampTrait(*t + float32(src.Range(-0.3, 0.3)))
		}
	}
}

// Drift nudges physiology toward the climate at the agent's position.
// Hot climates favor lean metabolisms; cold ones favor strength and mass.
func (g *GeneProfile) Drift(c world.Climate, dtHours float64) {
	rate := float32(0.0001 * dtHours)
	switch {
	case c.Temperature > 30:
		g.Metabolism = clampTrait(g.Metabolism - rate)
		g.Adaptability = clampTrait(g.Adaptability + rate)
	case c.Temperature < -5:
		g.Strength = clampTrait(g.Strength + rate)
		g.Metabolism = clampTrait(g.Metabolism + rate)
	}
	if c.UVLevel > 0.8 {
		g.DiseaseResistance = clampTrait(g.DiseaseResistance + rate)
	}
}

// Clamp forces every trait back into [0, 1].
func (g *GeneProfile) Clamp() {
	for _, t := range g.traits() {
		*t = clampTrait(*t)
	}
}

func clampTrait(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
