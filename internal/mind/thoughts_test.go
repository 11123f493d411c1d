package mind

import (
	"strings"
	"testing"

	"github.com/emberhollow/villagesim/internal/entropy"
	"github.com/emberhollow/villagesim/internal/social"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

func alwaysThink() GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.Probability = 1.0
	return cfg
}

func thinker(id, name string, x, y int) *villager.Villager {
	return &villager.Villager{
		ID:       id,
		Name:     name,
		Pos:      world.Point{X: x, Y: y},
		Activity: villager.ActivityIdle,
		Needs:    villager.Needs{Mood: 60, Energy: 70, Hunger: 30, Social: 50},
	}
}

func byID(vs ...*villager.Villager) map[string]*villager.Villager {
	m := make(map[string]*villager.Villager, len(vs))
	for _, v := range vs {
		m[v.ID] = v
	}
	return m
}

func TestGenerateSkipsSleepers(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))
	v := thinker("a", "Alda", 5, 5)
	v.Activity = villager.ActivitySleeping

	if got := g.Generate(1, []*villager.Villager{v}, byID(v)); len(got) != 0 {
		t.Fatalf("sleeping villager produced %d thoughts", len(got))
	}
}

func TestGenerateCooldown(t *testing.T) {
	cfg := alwaysThink()
	cfg.BypassProbability = 0 // Make the cooldown absolute
	mem := NewMemory()
	g := NewGenerator(cfg, mem, entropy.NewSource(1))
	v := thinker("a", "Alda", 5, 5)
	vs := []*villager.Villager{v}

	if got := g.Generate(10, vs, byID(v)); len(got) != 1 {
		t.Fatalf("first pass = %d thoughts, want 1", len(got))
	}
	if got := g.Generate(50, vs, byID(v)); len(got) != 0 {
		t.Fatalf("pass inside cooldown = %d thoughts, want 0", len(got))
	}
	if got := g.Generate(10+cfg.CooldownTicks, vs, byID(v)); len(got) != 1 {
		t.Fatalf("pass after cooldown = %d thoughts, want 1", len(got))
	}
}

func TestThoughtAboutRecentInteraction(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))

	a := thinker("a", "Alda", 5, 5)
	b := thinker("b", "Bram", 30, 30) // Out of observation range
	a.Relationships = map[string]float64{"b": 10}
	b.Relationships = map[string]float64{"a": 8}

	mem.ObserveInteraction(social.Record{
		Initiator: "a", Target: "b",
		Kind: social.KindConversation, Sentiment: 0.4, Tick: 95,
	}, a, b)

	thoughts := g.Generate(100, []*villager.Villager{a}, byID(a, b))
	if len(thoughts) != 1 {
		t.Fatalf("thoughts = %d, want 1", len(thoughts))
	}
	th := thoughts[0]
	if th.Kind != ThoughtMemory {
		t.Fatalf("kind = %s, want memory", th.Kind)
	}
	if th.RelatedID != "b" {
		t.Fatalf("related = %s, want b", th.RelatedID)
	}
	if !strings.Contains(th.Content, "Bram") {
		t.Fatalf("content %q does not name the counterparty", th.Content)
	}
	if th.Importance < 5 || th.Importance > 7 {
		t.Fatalf("importance = %d, want 5-7", th.Importance)
	}
}

func TestThoughtObservesNeighbor(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))

	a := thinker("a", "Alda", 5, 5)
	b := thinker("b", "Bram", 7, 5) // Within observe radius 5

	thoughts := g.Generate(1, []*villager.Villager{a, b}, byID(a, b))
	if len(thoughts) == 0 {
		t.Fatal("no thoughts produced")
	}
	if thoughts[0].Kind != ThoughtObservation {
		t.Fatalf("kind = %s, want observation", thoughts[0].Kind)
	}
	if thoughts[0].RelatedID != "b" {
		t.Fatalf("related = %s, want b", thoughts[0].RelatedID)
	}
}

func TestThoughtDesireFromUrgentNeed(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))

	a := thinker("a", "Alda", 5, 5)
	a.Needs.Hunger = 90 // No neighbors, no history → desire wins

	thoughts := g.Generate(1, []*villager.Villager{a}, byID(a))
	if len(thoughts) != 1 || thoughts[0].Kind != ThoughtDesire {
		t.Fatalf("thoughts = %v", thoughts)
	}
	if !strings.Contains(thoughts[0].Content, "meal") {
		t.Fatalf("content %q does not mention the need", thoughts[0].Content)
	}
}

func TestThoughtPlanWhileWorking(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))

	a := thinker("a", "Alda", 5, 5)
	a.Activity = villager.ActivityWorking

	thoughts := g.Generate(1, []*villager.Villager{a}, byID(a))
	if len(thoughts) != 1 || thoughts[0].Kind != ThoughtPlan {
		t.Fatalf("thoughts = %v", thoughts)
	}
}

func TestThoughtFallsBackToReflection(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))

	a := thinker("a", "Alda", 5, 5)
	thoughts := g.Generate(1, []*villager.Villager{a}, byID(a))
	if len(thoughts) != 1 || thoughts[0].Kind != ThoughtReflection {
		t.Fatalf("thoughts = %v", thoughts)
	}
	if thoughts[0].Content == "" {
		t.Fatal("reflection has no content")
	}
	if thoughts[0].Importance < 1 || thoughts[0].Importance > 3 {
		t.Fatalf("reflection importance = %d, want 1-3", thoughts[0].Importance)
	}
}

func TestUrgentNeedPriority(t *testing.T) {
	v := thinker("a", "Alda", 0, 0)
	if got := urgentNeed(v); got != "" {
		t.Fatalf("contented villager wants %q", got)
	}

	v.Needs.Hunger = 80
	v.Needs.Energy = 10
	// Hunger outranks exhaustion.
	if got := urgentNeed(v); got != "a hot meal" {
		t.Fatalf("urgent need = %q, want a hot meal", got)
	}
}

func TestDrainThoughts(t *testing.T) {
	mem := NewMemory()
	g := NewGenerator(alwaysThink(), mem, entropy.NewSource(1))
	a := thinker("a", "Alda", 5, 5)
	g.Generate(1, []*villager.Villager{a}, byID(a))

	if got := len(g.Drain()); got != 1 {
		t.Fatalf("drained = %d, want 1", got)
	}
	if got := len(g.Drain()); got != 0 {
		t.Fatalf("second drain = %d, want 0", got)
	}
}
