// Social standing and disposition. Everything here references other agents by
// id only; the scheduler resolves ids against the live population.
package agents

// SocialState tracks an agent's standing and political disposition.
type SocialState struct {
	Reputation float64 `json:"reputation"` // 0–100
	Influence  float64 `json:"influence"`  // 0–100

	// Dispositions read by the action selector's crisis branches.
	PowerSeeking      float64 `json:"power_seeking"`      // 0–100
	ViolenceTolerance float64 `json:"violence_tolerance"` // 0–100
	LawPreference     float64 `json:"law_preference"`     // 0–100

	Leadership float64 `json:"leadership"`
	Diplomacy  float64 `json:"diplomacy"`
	Charisma   float64 `json:"charisma"`

	HasEstablishedLaws bool `json:"has_established_laws"`

	Friends map[AgentID]struct{} `json:"friends,omitempty"`
	Enemies map[AgentID]struct{} `json:"enemies,omitempty"`
	Allies  map[AgentID]struct{} `json:"allies,omitempty"`
}

// NewSocialState derives starting disposition from genes. Reputation begins
// neutral; political appetite follows the relevant traits.
func NewSocialState(g *GeneProfile) SocialState {
	return SocialState{
		Reputation:        50,
		PowerSeeking:      float64(g.SocialDrive) * 40,
		ViolenceTolerance: float64(g.Strength) * 30,
		LawPreference:     float64(g.Intelligence) * 50,
		Leadership:        float64(g.SocialDrive+g.Intelligence) * 25,
		Diplomacy:         float64(g.SocialDrive+g.CulturalSensitivity) * 25,
		Charisma:          float64(g.SocialDrive+g.VoiceQuality) * 25,
		Friends:           make(map[AgentID]struct{}),
		Enemies:           make(map[AgentID]struct{}),
		Allies:            make(map[AgentID]struct{}),
	}
}

// AddFriend records a friendship and clears any enmity.
func (s *SocialState) AddFriend(id AgentID) {
	if s.Friends == nil {
		s.Friends = make(map[AgentID]struct{})
	}
	s.Friends[id] = struct{}{}
	delete(s.Enemies, id)
}

// AddEnemy records an enemy and severs friendship and alliance.
func (s *SocialState) AddEnemy(id AgentID) {
	if s.Enemies == nil {
		s.Enemies = make(map[AgentID]struct{})
	}
	s.Enemies[id] = struct{}{}
	delete(s.Friends, id)
	delete(s.Allies, id)
}

// AddAlly records an alliance.
func (s *SocialState) AddAlly(id AgentID) {
	if s.Allies == nil {
		s.Allies = make(map[AgentID]struct{})
	}
	s.Allies[id] = struct{}{}
}

// Forget drops every reference to a dead agent.
func (s *SocialState) Forget(id AgentID) {
	delete(s.Friends, id)
	delete(s.Enemies, id)
	delete(s.Allies, id)
}

// AdjustReputation moves reputation by delta, clamped to [0, 100].
func (s *SocialState) AdjustReputation(delta float64) {
	s.Reputation = cap100(s.Reputation + delta)
}

// AdjustInfluence moves influence by delta, clamped to [0, 100].
func (s *SocialState) AdjustInfluence(delta float64) {
	s.Influence = cap100(s.Influence + delta)
}

// HardenUnderCrisis shifts disposition toward force while a crisis persists.
func (s *SocialState) HardenUnderCrisis(dtHours float64) {
	s.ViolenceTolerance = cap100(s.ViolenceTolerance + 0.05*dtHours)
	s.PowerSeeking = cap100(s.PowerSeeking + 0.02*dtHours)
}

// WantsLaws reports whether this agent would try to establish laws.
func (s *SocialState) WantsLaws() bool {
	return s.LawPreference > 70 && !s.HasEstablishedLaws
}
