// Founder generation. The spawner places the initial adult population on
// habitable land and names newborns after their lineage.
package agents

import (
	"fmt"
	"strings"

	"github.com/talgya/genesis/internal/entropy"
	"github.com/talgya/genesis/internal/world"
)

var founderNames = []string{
	"Asha", "Bren", "Cale", "Dara", "Eron", "Fela", "Goran", "Hale",
	"Isra", "Joren", "Kara", "Lior", "Mira", "Nolan", "Ondra", "Petra",
	"Quill", "Rena", "Soren", "Tala", "Ulric", "Vela", "Wren", "Xara",
	"Yoren", "Zara",
}

// Spawner creates agents and places them in the world.
type Spawner struct {
	world         *world.World
	src           *entropy.Source
	crimeCooldown uint64
	born          int
}

// NewSpawner wires a spawner to the world and the population entropy stream.
func NewSpawner(w *world.World, src *entropy.Source, crimeCooldown uint64) *Spawner {
	return &Spawner{world: w, src: src.Fork("spawner"), crimeCooldown: crimeCooldown}
}

// Founders generates the initial adult population on habitable land.
// Alternates gender so the founding generation can pair off.
func (s *Spawner) Founders(n int, tick uint64) []*Agent {
	out := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		lon, lat := s.habitableSpot()
		gender := GenderFemale
		if i%2 == 1 {
			gender = GenderMale
		}
		a := NewAgent(s.nextName(), gender, tick, lon, lat, s.crimeCooldown, s.src)
		a.Memory.Add(tick, "awoke in an unfamiliar land", 0.8, nil, Impact{Emotional: 0.3, Cognitive: 0.5})
		out = append(out, a)
	}
	return out
}

// Child creates a newborn at the mother's position and links both directions
// of the family tree on the mother's side. The scheduler links the father.
func (s *Spawner) Child(tick uint64, mother *Agent, fatherGenes *GeneProfile, fatherID AgentID) *Agent {
	gender := GenderFemale
	if s.src.Chance(0.5) {
		gender = GenderMale
	}
	child := NewChildAgent(s.nextName(), gender, tick, mother, fatherGenes, fatherID, s.src)

	mother.ChildIDs = append(mother.ChildIDs, child.ID)
	mother.Relationships.MarkFamily(child.ID, tick)
	child.Relationships.MarkFamily(mother.ID, tick)
	if fatherID != "" {
		child.Relationships.MarkFamily(fatherID, tick)
	}
	return child
}

// habitableSpot rejection-samples a land position that is not ocean or
// high mountain. Bounded attempts so a water-heavy seed cannot spin forever.
func (s *Spawner) habitableSpot() (lon, lat float64) {
	for i := 0; i < 64; i++ {
		lon = s.src.Range(-180, 180)
		lat = s.src.Range(-60, 60)
		t := s.world.GetTerrainAt(lon, lat)
		if t != world.TerrainOcean && t != world.TerrainMountains {
			return lon, lat
		}
	}
	return lon, lat
}

// ResumeFrom advances the name counter past every name already in use, so a
// restored population keeps minting fresh names. Per-agent entropy streams
// are forked by name, so a duplicate would hand two living agents the same
// stream.
func (s *Spawner) ResumeFrom(names []string) {
	for _, name := range names {
		base, gen := name, 0
		if i := strings.IndexByte(name, ' '); i >= 0 {
			base = name[:i]
			gen = romanValue(name[i+1:]) - 1
		}
		for j, f := range founderNames {
			if f == base {
				if n := gen*len(founderNames) + j + 1; n > s.born {
					s.born = n
				}
				break
			}
		}
	}
}

func (s *Spawner) nextName() string {
	name := founderNames[s.born%len(founderNames)]
	gen := s.born / len(founderNames)
	s.born++
	if gen == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, roman(gen+1))
}

var romanVals = []struct {
	v int
	s string
}{{50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"}}

// roman renders small generation counters; lineage depth never gets large
// enough to need more.
func roman(n int) string {
	out := ""
	for _, p := range romanVals {
		for n >= p.v {
			out += p.s
			n -= p.v
		}
	}
	return out
}

// romanValue inverts roman for the numerals it emits.
func romanValue(s string) int {
	n := 0
	for len(s) > 0 {
		matched := false
		for _, p := range romanVals {
			if strings.HasPrefix(s, p.s) {
				n += p.v
				s = s[len(p.s):]
				matched = true
				break
			}
		}
		if !matched {
			return n
		}
	}
	return n
}
