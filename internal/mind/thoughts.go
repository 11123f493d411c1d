// Thought generation — a priority cascade picks what a villager thinks
// about; personality-indexed templates narrate it.
package mind

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberhollow/villagesim/internal/entropy"
	"github.com/emberhollow/villagesim/internal/villager"
)

// ThoughtKind enumerates thought categories, in cascade priority order.
type ThoughtKind string

const (
	ThoughtMemory      ThoughtKind = "memory"      // About a recent interaction
	ThoughtObservation ThoughtKind = "observation" // About a nearby villager
	ThoughtDesire      ThoughtKind = "desire"      // About an unmet need
	ThoughtPlan        ThoughtKind = "plan"        // About the current activity
	ThoughtReflection  ThoughtKind = "reflection"  // Default musing
)

// Thought is an immutable narrated internal monologue entry.
type Thought struct {
	ID         string      `json:"id"`
	VillagerID string      `json:"villager_id"`
	Content    string      `json:"content"`
	Kind       ThoughtKind `json:"kind"`
	Importance int         `json:"importance"` // 1–10
	RelatedID  string      `json:"related_id,omitempty"`
	Tick       uint64      `json:"tick"`
	CreatedAt  time.Time   `json:"created_at"`
}

// GeneratorConfig holds thought throttling knobs.
type GeneratorConfig struct {
	Probability       float64 // Per-villager chance per generation pass
	CooldownTicks     uint64  // Minimum gap between a villager's thoughts
	BypassProbability float64 // Chance to think anyway while on cooldown
	RecentWindow      uint64  // How far back an interaction still feels recent
	ObserveRadius     int     // Manhattan range for noticing neighbors
}

// DefaultGeneratorConfig returns the tuned thought constants.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Probability:       0.05,
		CooldownTicks:     120,
		BypassProbability: 0.02,
		RecentWindow:      60,
		ObserveRadius:     5,
	}
}

// Generator produces at most one thought per villager per pass.
type Generator struct {
	cfg GeneratorConfig
	mem *Memory
	rng *entropy.Source

	mu      sync.Mutex
	pending []Thought

	// OnThought, when set, is called synchronously for each thought.
	OnThought func(Thought)
}

// NewGenerator creates a Generator over the given memory system.
func NewGenerator(cfg GeneratorConfig, mem *Memory, rng *entropy.Source) *Generator {
	return &Generator{cfg: cfg, mem: mem, rng: rng}
}

// Generate runs one thought pass over the population. byID resolves
// referenced villagers for placeholder substitution.
func (g *Generator) Generate(tick uint64, villagers []*villager.Villager, byID map[string]*villager.Villager) []Thought {
	var produced []Thought
	for _, v := range villagers {
		if v.Activity == villager.ActivitySleeping {
			continue
		}
		if !g.rng.Chance(g.cfg.Probability) {
			continue
		}

		// Cooldown throttles frequency but is bypassable at low odds so
		// long-quiet villagers don't go permanently silent.
		if last, ok := g.mem.lastThought[v.ID]; ok && tick-last < g.cfg.CooldownTicks {
			if !g.rng.Chance(g.cfg.BypassProbability) {
				continue
			}
		}

		th := g.thinkFor(tick, v, villagers, byID)
		g.mem.lastThought[v.ID] = tick
		produced = append(produced, th)

		g.mu.Lock()
		g.pending = append(g.pending, th)
		cb := g.OnThought
		g.mu.Unlock()
		if cb != nil {
			cb(th)
		}
	}
	return produced
}

// thinkFor runs the priority cascade for one villager.
func (g *Generator) thinkFor(tick uint64, v *villager.Villager, all []*villager.Villager, byID map[string]*villager.Villager) Thought {
	th := Thought{
		ID:         uuid.NewString(),
		VillagerID: v.ID,
		Tick:       tick,
		CreatedAt:  time.Now(),
	}

	// 1. Recent interaction memory.
	if rec, ok := g.mem.RecentInteraction(v.ID, tick, g.cfg.RecentWindow); ok {
		other := rec.Target
		if other == v.ID {
			other = rec.Initiator
		}
		th.Kind = ThoughtMemory
		th.RelatedID = other
		th.Importance = 5 + g.rng.Intn(3)
		th.Content = g.render(memoryTemplates, v, nameOf(byID, other), "")
		return th
	}

	// 2. Nearby villager observation.
	for _, o := range all {
		if o.ID == v.ID || o.Activity == villager.ActivitySleeping {
			continue
		}
		if v.Pos.ManhattanTo(o.Pos) <= g.cfg.ObserveRadius {
			th.Kind = ThoughtObservation
			th.RelatedID = o.ID
			th.Importance = 3 + g.rng.Intn(3)
			th.Content = g.render(observationTemplates, v, o.Name, "")
			return th
		}
	}

	// 3. Unmet need desire.
	if subject := urgentNeed(v); subject != "" {
		th.Kind = ThoughtDesire
		th.Importance = 6 + g.rng.Intn(3)
		th.Content = g.render(desireTemplates, v, "", subject)
		return th
	}

	// 4. Busy-activity plan.
	switch v.Activity {
	case villager.ActivityWorking, villager.ActivityShopping, villager.ActivityPraying, villager.ActivityTraveling:
		th.Kind = ThoughtPlan
		th.Importance = 4 + g.rng.Intn(3)
		th.Content = g.render(planTemplates, v, "", v.Activity.Name())
		return th
	}

	// 5. Default reflection.
	th.Kind = ThoughtReflection
	th.Importance = 1 + g.rng.Intn(3)
	subject := g.mem.FavoriteLocation(v.ID)
	if subject == "" {
		subject = dreamSubjects[g.rng.Intn(len(dreamSubjects))]
	}
	th.Content = g.render(reflectionTemplates, v, "", subject)
	return th
}

// urgentNeed names the most pressing unmet need, or "".
func urgentNeed(v *villager.Villager) string {
	switch {
	case v.Needs.Hunger > 70:
		return "a hot meal"
	case v.Needs.Energy < 25:
		return "a long rest"
	case v.Needs.Social < 30:
		return "good company"
	case v.Needs.Mood < 30:
		return "better days"
	}
	return ""
}

// Drain atomically removes and returns all queued thoughts.
func (g *Generator) Drain() []Thought {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.pending
	g.pending = nil
	return out
}

func nameOf(byID map[string]*villager.Villager, id string) string {
	if v, ok := byID[id]; ok {
		return v.Name
	}
	return "someone"
}
