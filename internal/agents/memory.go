// Agent memory — a bounded, importance-ranked log of notable experiences.
// Every subsystem appends here; eviction keeps the top entries by importance
// with recency breaking ties.
package agents

import (
	"encoding/json"
	"sort"
	"strings"
)

// MaxMemories caps the per-agent memory log.
const MaxMemories = 1000

// Impact quantifies how an experience landed on the agent.
type Impact struct {
	Emotional     float32 `json:"emotional,omitempty"`
	Philosophical float32 `json:"philosophical,omitempty"`
	Cognitive     float32 `json:"cognitive,omitempty"`
}

// Memory records a single notable experience.
type Memory struct {
	Seq        uint64            `json:"seq"` // Monotonic insertion counter.
	Tick       uint64            `json:"tick"`
	Event      string            `json:"event"`
	Importance float32           `json:"importance"` // 0.0–1.0
	Context    map[string]string `json:"context,omitempty"`
	Concepts   []string          `json:"concepts,omitempty"`
	Impact     Impact            `json:"impact"`
}

// MemoryLog holds an agent's memories and the concepts extracted from them.
// The concept set only ever grows.
type MemoryLog struct {
	Memories []Memory            `json:"memories"`
	Concepts map[string]struct{} `json:"concepts"`

	nextSeq uint64
}

// NewMemoryLog creates an empty log.
func NewMemoryLog() MemoryLog {
	return MemoryLog{Concepts: make(map[string]struct{})}
}

// UnmarshalJSON restores the log and rebases the sequence counter past the
// highest persisted entry so later adds keep eviction tie-breaking correct.
func (m *MemoryLog) UnmarshalJSON(data []byte) error {
	type alias MemoryLog
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = MemoryLog(aux)
	for _, mem := range m.Memories {
		if mem.Seq >= m.nextSeq {
			m.nextSeq = mem.Seq + 1
		}
	}
	if m.Concepts == nil {
		m.Concepts = make(map[string]struct{})
	}
	return nil
}

// Add appends a memory, extracts concepts from its event text, and evicts the
// least important entries if the cap is exceeded.
func (m *MemoryLog) Add(tick uint64, event string, importance float32, ctx map[string]string, impact Impact) {
	mem := Memory{
		Seq:        m.nextSeq,
		Tick:       tick,
		Event:      event,
		Importance: clampNeed(importance),
		Context:    ctx,
		Impact:     impact,
	}
	m.nextSeq++

	mem.Concepts = m.extractConcepts(event)
	m.Memories = append(m.Memories, mem)

	if len(m.Memories) > MaxMemories {
		m.evict()
	}
}

// extractConcepts pulls words longer than three characters into the agent's
// concept set. Purely additive — concepts are never forgotten even when the
// memory that introduced them is evicted.
func (m *MemoryLog) extractConcepts(event string) []string {
	if m.Concepts == nil {
		m.Concepts = make(map[string]struct{})
	}
	var found []string
	for _, word := range strings.Fields(strings.ToLower(event)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if len(word) > 3 {
			m.Concepts[word] = struct{}{}
			found = append(found, word)
		}
	}
	return found
}

// evict keeps the top MaxMemories by importance, newest winning ties, then
// restores insertion order for the survivors.
func (m *MemoryLog) evict() {
	sort.SliceStable(m.Memories, func(i, j int) bool {
		if m.Memories[i].Importance != m.Memories[j].Importance {
			return m.Memories[i].Importance > m.Memories[j].Importance
		}
		return m.Memories[i].Seq > m.Memories[j].Seq
	})
	m.Memories = m.Memories[:MaxMemories]
	sort.Slice(m.Memories, func(i, j int) bool {
		return m.Memories[i].Seq < m.Memories[j].Seq
	})
}

// Recent returns the newest n memories, newest first.
func (m *MemoryLog) Recent(n int) []Memory {
	if len(m.Memories) == 0 {
		return nil
	}
	out := make([]Memory, len(m.Memories))
	copy(out, m.Memories)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// Important returns the top n memories by importance.
func (m *MemoryLog) Important(n int) []Memory {
	if len(m.Memories) == 0 {
		return nil
	}
	out := make([]Memory, len(m.Memories))
	copy(out, m.Memories)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Seq > out[j].Seq
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// ByConcept returns every memory tagged with the concept.
func (m *MemoryLog) ByConcept(tag string) []Memory {
	var out []Memory
	for _, mem := range m.Memories {
		for _, c := range mem.Concepts {
			if c == tag {
				out = append(out, mem)
				break
			}
		}
	}
	return out
}

// HasConcept reports whether the agent has discovered the concept.
func (m *MemoryLog) HasConcept(tag string) bool {
	_, ok := m.Concepts[tag]
	return ok
}

// RecentPositive reports whether any of the last n memories carries
// importance above the threshold. Used as a protective factor against
// terminal despair.
func (m *MemoryLog) RecentPositive(n int, threshold float32) bool {
	for _, mem := range m.Recent(n) {
		if mem.Importance > threshold && mem.Impact.Emotional >= 0 {
			return true
		}
	}
	return false
}
