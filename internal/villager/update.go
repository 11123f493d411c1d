// Per-tick villager update — schedule lookup, movement, need drift.
package villager

import (
	"github.com/emberhollow/villagesim/internal/entropy"
	"github.com/emberhollow/villagesim/internal/world"
)

// pathMaxIterations caps A* expansion per path request.
const pathMaxIterations = 800

// Need thresholds that override the schedule.
const (
	lowEnergyThreshold  = 20
	highHungerThreshold = 80
)

// TickInput carries the per-tick context a villager update needs.
type TickInput struct {
	Hour int
	Grid *world.Grid
	Rng  *entropy.Source
}

// Update advances the villager by one tick: consult the schedule, move one
// step toward the activity's target, drift need meters, clamp everything.
func (v *Villager) Update(in TickInput) {
	scheduled := v.Schedule.For(in.Hour)

	// Need overrides bias the schedule: exhausted villagers rest, starving
	// villagers eat if they can.
	if v.Needs.Energy < lowEnergyThreshold && scheduled != ActivitySleeping {
		scheduled = ActivityResting
	} else if v.Needs.Hunger > highHungerThreshold && v.HasFood() && scheduled != ActivitySleeping {
		scheduled = ActivityEating
	}

	current := v.Activity
	if current == ActivityTraveling {
		current = v.pending
	}
	if current != scheduled {
		v.beginActivity(scheduled, in)
	}

	v.stepMovement(in.Grid)
	v.driftNeeds()
	v.Needs.Clamp()
}

// BeginSocializing interrupts the current activity for an interaction.
// Movement stops where the villager stands.
func (v *Villager) BeginSocializing() {
	v.Activity = ActivitySocializing
	v.pending = ActivitySocializing
	v.Target = nil
	v.Path = nil
}

// beginActivity switches toward a new scheduled activity, routing through
// TRAVELING when the activity has a destination the villager is not at.
func (v *Villager) beginActivity(next Activity, in TickInput) {
	v.pending = next
	v.Path = nil

	if next == ActivityEating {
		if item := v.EatFood(); item != "" {
			v.Needs.Hunger -= 35
			v.Needs.Mood += 5
		}
	}

	target := v.targetFor(next, in)
	if target == nil || *target == v.Pos {
		v.Activity = next
		v.Target = nil
		return
	}
	v.Target = target
	v.Activity = ActivityTraveling
}

// targetFor resolves the destination cell for an activity, or nil when the
// activity happens in place.
func (v *Villager) targetFor(a Activity, in TickInput) *world.Point {
	buildingEntrance := func(id string) *world.Point {
		if b := in.Grid.Building(id); b != nil {
			e := b.Entrance
			return &e
		}
		return nil
	}

	switch a {
	case ActivityWorking:
		return buildingEntrance(v.WorkID)
	case ActivitySleeping, ActivityResting, ActivityEating, ActivityWaking:
		return buildingEntrance(v.HomeID)
	case ActivityPraying:
		if chapels := in.Grid.BuildingsOfKind(world.BuildingChapel); len(chapels) > 0 {
			e := chapels[0].Entrance
			return &e
		}
	case ActivityShopping:
		if markets := in.Grid.BuildingsOfKind(world.BuildingMarket); len(markets) > 0 {
			e := markets[0].Entrance
			return &e
		}
	case ActivitySocializing:
		if taverns := in.Grid.BuildingsOfKind(world.BuildingTavern); len(taverns) > 0 {
			e := taverns[0].Entrance
			return &e
		}
	case ActivityWandering:
		return v.randomDestination(in)
	}
	return nil
}

// randomDestination picks a walkable cell within wandering range.
func (v *Villager) randomDestination(in TickInput) *world.Point {
	const wanderRange = 10
	for attempt := 0; attempt < 12; attempt++ {
		p := world.Point{
			X: v.Pos.X + in.Rng.Intn(wanderRange*2+1) - wanderRange,
			Y: v.Pos.Y + in.Rng.Intn(wanderRange*2+1) - wanderRange,
		}
		if p != v.Pos && in.Grid.IsWalkable(p.X, p.Y) {
			return &p
		}
	}
	return nil
}

// stepMovement advances one cell along the current path. A failed path
// lookup degrades to staying put and starting the pending activity here.
func (v *Villager) stepMovement(g *world.Grid) {
	if v.Target == nil {
		return
	}
	if v.Pos == *v.Target {
		v.arrive()
		return
	}
	if len(v.Path) == 0 {
		v.Path = g.FindPath(v.Pos, *v.Target, pathMaxIterations)
		if len(v.Path) == 0 {
			// No route — stay put, do the activity where we stand.
			v.arrive()
			return
		}
	}
	v.Pos = v.Path[0]
	v.Path = v.Path[1:]
	if v.Pos == *v.Target {
		v.arrive()
	}
}

func (v *Villager) arrive() {
	v.Activity = v.pending
	v.Target = nil
	v.Path = nil
}

// driftNeeds applies the per-activity need increments for one tick.
func (v *Villager) driftNeeds() {
	switch v.Activity {
	case ActivitySleeping:
		v.Needs.Energy += 1.0
		v.Needs.Hunger += 0.08
	case ActivityWaking:
		v.Needs.Energy += 0.3
		v.Needs.Mood += 0.1
	case ActivityWorking:
		v.Needs.Energy -= 0.3
		v.Needs.Hunger += 0.2
		v.Needs.Social -= 0.1
		v.Needs.Mood -= 0.05
	case ActivityEating:
		v.Needs.Hunger -= 1.0
		v.Needs.Mood += 0.2
	case ActivitySocializing:
		v.Needs.Social += 1.0
		v.Needs.Mood += 0.3
		v.Needs.Energy -= 0.1
		v.Needs.Hunger += 0.1
	case ActivityWandering, ActivityTraveling:
		v.Needs.Energy -= 0.2
		v.Needs.Hunger += 0.15
		v.Needs.Social -= 0.05
	case ActivityResting:
		v.Needs.Energy += 0.5
		v.Needs.Mood += 0.1
		v.Needs.Hunger += 0.08
	case ActivityPraying:
		v.Needs.Mood += 0.3
		v.Needs.Social += 0.2
		v.Needs.Hunger += 0.08
	case ActivityShopping:
		v.Needs.Mood += 0.1
		v.Needs.Energy -= 0.1
		v.Needs.Hunger += 0.1
	default: // Idle
		v.Needs.Social -= 0.1
		v.Needs.Hunger += 0.1
	}
}
