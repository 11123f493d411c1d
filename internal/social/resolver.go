// Package social resolves pairwise villager interactions: who talks to
// whom each tick, what kind of exchange it is, and how it moves the
// relationship.
package social

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberhollow/villagesim/internal/economy"
	"github.com/emberhollow/villagesim/internal/entropy"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

// Kind enumerates interaction types.
type Kind string

const (
	KindGreeting     Kind = "greeting"
	KindConversation Kind = "conversation"
	KindTrade        Kind = "trade"
	KindHelp         Kind = "help"
	KindGossip       Kind = "gossip"
	KindArgument     Kind = "argument"
)

// Record is an immutable fact describing one resolved interaction.
// Initiator is the villager whose roll started it.
type Record struct {
	ID        string      `json:"id"`
	Initiator string      `json:"initiator"`
	Target    string      `json:"target"`
	Kind      Kind        `json:"kind"`
	Dialogue  string      `json:"dialogue"`
	Location  world.Point `json:"location"`
	Sentiment float64     `json:"sentiment"` // -1..1
	Tick      uint64      `json:"tick"`
	CreatedAt time.Time   `json:"created_at"`
}

// pairKey is an order-independent villager pair key.
type pairKey struct{ a, b string }

func keyFor(id1, id2 string) pairKey {
	if id1 < id2 {
		return pairKey{a: id1, b: id2}
	}
	return pairKey{a: id2, b: id1}
}

// Config holds the resolver's tunable knobs.
type Config struct {
	Radius        int    // Manhattan interaction radius
	CooldownTicks uint64 // Minimum tick gap per pair
	PruneAge      uint64 // Cooldown entries older than this are dropped
	MaxPerTick    int    // Hard cap on interactions resolved per tick
	// ForceProbability, when > 0, replaces the computed initiation
	// probability. Used by tests to make rolls deterministic.
	ForceProbability float64
}

// DefaultConfig returns the tuned resolver constants.
func DefaultConfig() Config {
	return Config{
		Radius:        3,
		CooldownTicks: 30,
		PruneAge:      600,
		MaxPerTick:    40,
	}
}

// Resolver computes at most one interaction per unordered villager pair
// per tick.
type Resolver struct {
	cfg    Config
	rng    *entropy.Source
	ledger *economy.Ledger

	cooldowns map[pairKey]uint64 // pair → tick of last interaction

	mu      sync.Mutex
	pending []Record

	// OnRecord, when set, is called synchronously for each resolved record.
	OnRecord func(Record)
}

// NewResolver creates a Resolver. The ledger is used to execute trades
// that arise from TRADE interactions.
func NewResolver(cfg Config, rng *entropy.Source, ledger *economy.Ledger) *Resolver {
	return &Resolver{
		cfg:       cfg,
		rng:       rng,
		ledger:    ledger,
		cooldowns: make(map[pairKey]uint64),
	}
}

// Resolve runs one tick of interaction resolution over the population and
// returns the records produced (also queued for the persistence flush).
func (r *Resolver) Resolve(tick uint64, villagers []*villager.Villager) []Record {
	var produced []Record
	processed := make(map[pairKey]bool)

	for i, a := range villagers {
		if a.Activity == villager.ActivitySleeping {
			continue
		}
		for _, b := range villagers[i+1:] {
			if len(produced) >= r.cfg.MaxPerTick {
				return produced
			}
			if b.Activity == villager.ActivitySleeping {
				continue
			}
			if a.Pos.ManhattanTo(b.Pos) > r.cfg.Radius {
				continue
			}

			key := keyFor(a.ID, b.ID)
			if processed[key] {
				continue
			}
			processed[key] = true

			if last, ok := r.cooldowns[key]; ok && tick-last < r.cfg.CooldownTicks {
				continue
			}

			p := r.cfg.ForceProbability
			if p <= 0 {
				p = initiationProbability(a, b)
			}
			if !r.rng.Chance(p) {
				continue
			}

			rec := r.resolvePair(tick, a, b)
			r.cooldowns[key] = tick
			produced = append(produced, rec)
		}
	}
	return produced
}

// initiationProbability combines trait modifiers, current activity, and the
// social need deficit, clamped to [0, 0.5].
func initiationProbability(a, b *villager.Villager) float64 {
	p := 0.08

	// Personality of the initiator.
	if a.Scores.Extraversion > 0.7 {
		p += 0.05
	}
	if a.HasTrait(villager.TraitSocial) {
		p += 0.06
	}
	if a.HasTrait(villager.TraitShy) || a.HasTrait(villager.TraitLoner) {
		p -= 0.04
	}
	if a.HasTrait(villager.TraitGrumpy) {
		p -= 0.02
	}

	// Current activities.
	for _, v := range [2]*villager.Villager{a, b} {
		switch v.Activity {
		case villager.ActivitySocializing:
			p += 0.12
		case villager.ActivityShopping, villager.ActivityWandering, villager.ActivityIdle:
			p += 0.04
		case villager.ActivityWorking:
			p -= 0.04
		}
	}

	// Lonely villagers reach out.
	p += (100 - a.Needs.Social) / 100 * 0.1

	if p < 0 {
		return 0
	}
	if p > 0.5 {
		return 0.5
	}
	return p
}

// resolvePair produces one concrete interaction between a (initiator) and b.
func (r *Resolver) resolvePair(tick uint64, a, b *villager.Villager) Record {
	kind := r.chooseKind(a, b)

	// A trade interaction actually moves goods; if nothing tradeable, it
	// settles into ordinary conversation.
	if kind == KindTrade && !r.executeTrade(a, b) {
		kind = KindConversation
	}

	sentiment := r.sentimentFor(kind)
	dialogue := r.dialogueFor(kind, a, b)

	// Both parties drop what they were doing for the exchange.
	a.BeginSocializing()
	b.BeginSocializing()

	// Asymmetric affinity shift: the initiator's view moves by the full
	// personality-weighted delta, the target's by 80% of it.
	delta := sentiment * 4 * (0.75 + 0.5*a.Scores.Agreeableness)
	a.AdjustAffinity(b.ID, delta)
	b.AdjustAffinity(a.ID, delta*0.8)

	rec := Record{
		ID:        uuid.NewString(),
		Initiator: a.ID,
		Target:    b.ID,
		Kind:      kind,
		Dialogue:  dialogue,
		Location:  a.Pos,
		Sentiment: sentiment,
		Tick:      tick,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.pending = append(r.pending, rec)
	cb := r.OnRecord
	r.mu.Unlock()
	if cb != nil {
		cb(rec)
	}
	return rec
}

// chooseKind rolls the interaction kind from the pair's relationship.
// Unmet pairs always greet.
func (r *Resolver) chooseKind(a, b *villager.Villager) Kind {
	if !a.HasMet(b.ID) || !b.HasMet(a.ID) {
		return KindGreeting
	}

	affinity := a.Affinity(b.ID)
	kinds := []Kind{KindGreeting, KindConversation, KindTrade, KindHelp, KindGossip, KindArgument}

	var weights []float64
	switch {
	case affinity < 20:
		weights = []float64{0.20, 0.30, 0.05, 0.00, 0.20, 0.25}
	case affinity < villager.TierFriendThreshold:
		weights = []float64{0.20, 0.45, 0.10, 0.05, 0.15, 0.05}
	case affinity < villager.TierCloseThreshold:
		weights = []float64{0.10, 0.35, 0.20, 0.15, 0.15, 0.05}
	default:
		weights = []float64{0.05, 0.30, 0.20, 0.30, 0.15, 0.00}
	}

	return kinds[r.rng.Pick(weights)]
}

// sentimentFor produces the signed sentiment score for an interaction kind.
func (r *Resolver) sentimentFor(kind Kind) float64 {
	switch kind {
	case KindGreeting:
		return 0.2
	case KindConversation:
		return r.rng.Range(0.1, 0.5)
	case KindTrade:
		return 0.3
	case KindHelp:
		return 0.6
	case KindGossip:
		return r.rng.Range(-0.2, 0.4)
	case KindArgument:
		return r.rng.Range(-0.8, -0.4)
	}
	return 0
}

// executeTrade attempts a catalog purchase between the pair through the
// ledger. Reports whether any goods actually moved.
func (r *Resolver) executeTrade(a, b *villager.Villager) bool {
	// Prefer buying from the counterparty with a catalog; try both sides.
	for _, pair := range [2][2]*villager.Villager{{a, b}, {b, a}} {
		buyer, seller := pair[0], pair[1]
		catalog := seller.Role.Spec().Catalog
		if len(catalog) == 0 {
			continue
		}
		for item := range catalog {
			if seller.ItemCount(item) == 0 {
				continue
			}
			if _, err := r.ledger.Purchase(buyer, seller, item, 1, 0); err == nil {
				return true
			}
		}
	}
	return false
}

// Drain atomically removes and returns all queued interaction records.
func (r *Resolver) Drain() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out
}

// Prune drops cooldown entries older than the configured age. Called on a
// slow cadence by the engine.
func (r *Resolver) Prune(tick uint64) {
	for key, last := range r.cooldowns {
		if tick-last > r.cfg.PruneAge {
			delete(r.cooldowns, key)
		}
	}
}

// LastInteractionTick returns the tick the pair last interacted, if any.
func (r *Resolver) LastInteractionTick(id1, id2 string) (uint64, bool) {
	last, ok := r.cooldowns[keyFor(id1, id2)]
	return last, ok
}

// ClearCooldown removes the pair's cooldown entry.
func (r *Resolver) ClearCooldown(id1, id2 string) {
	delete(r.cooldowns, keyFor(id1, id2))
}
