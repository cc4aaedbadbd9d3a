// Aggregate population statistics, recomputed at tick boundaries and logged
// on the daily cadence.
package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/genesis/internal/agents"
)

// SimStats is the population-level picture published with each snapshot.
type SimStats struct {
	Population int `json:"population"`
	Births     int `json:"births"`
	Deaths     int `json:"deaths"`

	AvgAge       float64 `json:"avg_age"`
	AvgHealth    float64 `json:"avg_health"`
	AvgMood      float64 `json:"avg_mood"`
	AvgStability float64 `json:"avg_stability"`
	MoodStdDev   float64 `json:"mood_std_dev"`

	MatedPairs  int `json:"mated_pairs"`
	Pregnancies int `json:"pregnancies"`
	CrimesTotal int `json:"crimes_total"`

	StageCounts map[agents.LifeStage]int `json:"stage_counts"`
}

// computeStats rebuilds the aggregate picture from the live population.
func computeStats(pop []*agents.Agent, births, deaths int) SimStats {
	st := SimStats{
		Births:      births,
		Deaths:      deaths,
		StageCounts: make(map[agents.LifeStage]int),
	}

	var ages, healths, moods, stabilities []float64
	for _, a := range pop {
		if !a.Alive {
			continue
		}
		st.Population++
		st.StageCounts[a.Stage]++
		ages = append(ages, a.AgeYears)
		healths = append(healths, float64(a.Health))
		moods = append(moods, float64(a.Emotions.Mood()))
		stabilities = append(stabilities, float64(a.Emotions.Stability))

		if a.MateID != "" {
			st.MatedPairs++
		}
		if a.Pregnancy != nil {
			st.Pregnancies++
		}
		st.CrimesTotal += len(a.Crisis.Crimes)
	}
	st.MatedPairs /= 2 // each bond counted from both sides

	if st.Population > 0 {
		st.AvgAge = stat.Mean(ages, nil)
		st.AvgHealth = stat.Mean(healths, nil)
		st.AvgMood = stat.Mean(moods, nil)
		st.AvgStability = stat.Mean(stabilities, nil)
	}
	if len(moods) > 1 {
		st.MoodStdDev = stat.StdDev(moods, nil)
	}
	return st
}
