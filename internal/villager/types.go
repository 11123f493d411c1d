// Package villager provides the villager data model, roles, schedules,
// and the per-tick state machine update.
package villager

import (
	"github.com/emberhollow/villagesim/internal/world"
)

// Activity is the enum state a villager is currently engaged in.
type Activity uint8

const (
	ActivitySleeping Activity = iota
	ActivityWaking
	ActivityWorking
	ActivityEating
	ActivitySocializing
	ActivityWandering
	ActivityTraveling
	ActivityResting
	ActivityPraying
	ActivityShopping
	ActivityIdle
)

var activityNames = [...]string{
	"sleeping", "waking", "working", "eating", "socializing",
	"wandering", "traveling", "resting", "praying", "shopping", "idle",
}

// Name returns the lowercase activity name used on the wire.
func (a Activity) Name() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return "unknown"
}

// Trait is a discrete personality tag.
type Trait uint8

const (
	TraitCheerful Trait = iota
	TraitGrumpy
	TraitCurious
	TraitShy
	TraitGenerous
	TraitGreedy
	TraitHardworking
	TraitLazy
	TraitSocial
	TraitLoner
)

var traitNames = [...]string{
	"cheerful", "grumpy", "curious", "shy", "generous",
	"greedy", "hardworking", "lazy", "social", "loner",
}

// Name returns the lowercase trait name.
func (t Trait) Name() string {
	if int(t) < len(traitNames) {
		return traitNames[t]
	}
	return "unknown"
}

// TraitScores holds the five continuous personality dimensions, each 0–1.
type TraitScores struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// Needs holds the four bounded need meters, each 0–100.
// Hunger counts upward: 0 = sated, 100 = starving.
type Needs struct {
	Mood   float64 `json:"mood"`
	Energy float64 `json:"energy"`
	Hunger float64 `json:"hunger"`
	Social float64 `json:"social"`
}

// Clamp bounds every meter to [0, 100].
func (n *Needs) Clamp() {
	n.Mood = clamp01h(n.Mood)
	n.Energy = clamp01h(n.Energy)
	n.Hunger = clamp01h(n.Hunger)
	n.Social = clamp01h(n.Social)
}

func clamp01h(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Villager is the core simulated entity.
type Villager struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`

	Traits []Trait     `json:"traits"`
	Scores TraitScores `json:"scores"`

	Pos    world.Point `json:"pos"`
	HomeID string      `json:"home_id"`
	WorkID string      `json:"work_id"`

	Activity Activity `json:"activity"`
	Needs    Needs    `json:"needs"`

	Coins     int            `json:"coins"`
	Inventory map[string]int `json:"inventory"`

	// Relationships maps other villager ids to a public 0–100 affinity.
	Relationships map[string]float64 `json:"relationships"`

	Schedule Schedule `json:"schedule"`

	// Transient movement state, rebuilt after restore.
	Path   []world.Point `json:"-"`
	Target *world.Point  `json:"-"`

	// pending is the scheduled activity to adopt on arrival while traveling.
	pending Activity
}

// HasTrait reports whether the villager carries the given trait tag.
func (v *Villager) HasTrait(t Trait) bool {
	for _, tt := range v.Traits {
		if tt == t {
			return true
		}
	}
	return false
}

// Affinity returns the villager's 0–100 affinity toward another villager.
// Unknown villagers read as 0.
func (v *Villager) Affinity(otherID string) float64 {
	return v.Relationships[otherID]
}

// HasMet reports whether the villager has any recorded relationship with the other.
func (v *Villager) HasMet(otherID string) bool {
	_, ok := v.Relationships[otherID]
	return ok
}

// AdjustAffinity moves the affinity toward another villager by delta,
// clamped to [0, 100].
func (v *Villager) AdjustAffinity(otherID string, delta float64) {
	if v.Relationships == nil {
		v.Relationships = make(map[string]float64)
	}
	v.Relationships[otherID] = clamp01h(v.Relationships[otherID] + delta)
}

// ItemCount returns the quantity of an item in the villager's inventory.
func (v *Villager) ItemCount(item string) int {
	return v.Inventory[item]
}

// AddItem adds qty of an item to the inventory.
func (v *Villager) AddItem(item string, qty int) {
	if v.Inventory == nil {
		v.Inventory = make(map[string]int)
	}
	v.Inventory[item] += qty
}

// RemoveItem removes qty of an item. Returns false (and mutates nothing)
// when there is insufficient stock.
func (v *Villager) RemoveItem(item string, qty int) bool {
	if v.Inventory[item] < qty {
		return false
	}
	v.Inventory[item] -= qty
	if v.Inventory[item] == 0 {
		delete(v.Inventory, item)
	}
	return true
}

// HasFood reports whether any edible item is in the inventory.
func (v *Villager) HasFood() bool {
	for _, item := range foodItems {
		if v.Inventory[item] > 0 {
			return true
		}
	}
	return false
}

// EatFood consumes one unit of the first available edible item.
// Returns the item eaten, or "" when the pantry is empty.
func (v *Villager) EatFood() string {
	for _, item := range foodItems {
		if v.Inventory[item] > 0 {
			v.RemoveItem(item, 1)
			return item
		}
	}
	return ""
}

// foodItems lists edible inventory items in preference order.
var foodItems = []string{"bread", "stew", "vegetables", "grain", "ale"}

// Clone returns a deep copy of the villager (movement state excluded).
func (v *Villager) Clone() *Villager {
	cp := *v
	cp.Traits = append([]Trait(nil), v.Traits...)
	cp.Inventory = make(map[string]int, len(v.Inventory))
	for k, q := range v.Inventory {
		cp.Inventory[k] = q
	}
	cp.Relationships = make(map[string]float64, len(v.Relationships))
	for k, a := range v.Relationships {
		cp.Relationships[k] = a
	}
	cp.Path = nil
	cp.Target = nil
	return &cp
}
